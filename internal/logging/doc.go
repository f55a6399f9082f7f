// Package logging provides structured logging for the task client.
//
// It wraps Go's log/slog to emit JSON lines carrying the server node and,
// where relevant, the remote task id, so that a mission script's log can be
// correlated with the task server's own output after the fact.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/var/log/mission", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithServer("/tasks").WithTask(42).Info("task terminated")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"task terminated","server":"/tasks","task_id":42}
//
// When the log directory is empty, logs are written to stderr. Tests should
// use [NopLogger], or [NewLoggerTo] with a buffer when the output matters.
package logging
