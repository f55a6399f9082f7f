package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Iron-Ham/taskclient/internal/errors"
	"github.com/Iron-Ham/taskclient/internal/logging"
)

// Exit codes of the taskclient binary.
const (
	ExitOK = 0
	// ExitError covers usage mistakes, bad configuration and failed calls
	// to the task server.
	ExitError = 1
	// ExitWaitFailed means a waited task failed or never appeared.
	ExitWaitFailed = 2
	// ExitConditionTerminated means a --until condition ended the wait.
	ExitConditionTerminated = 3
	// ExitInterrupted means the command was cut short by a signal.
	ExitInterrupted = 130
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errors.ErrAbortedByShutdown), errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, errors.ErrConditionTerminated):
		return ExitConditionTerminated
	case errors.IsWaitOutcome(err):
		return ExitWaitFailed
	default:
		return ExitError
	}
}

// ReportError writes err to w for an operator, labelled by its severity.
// Errors whose details are not user-facing print their summary only.
func ReportError(w io.Writer, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	if !errors.IsUserFacing(err) {
		msg = errors.Summary(err)
	}
	fmt.Fprintf(w, "%s: %s\n", severityLabel(errors.GetSeverity(err)), msg)
	if errors.IsRetryable(err) {
		fmt.Fprintln(w, "hint: the task server may accept the call if you retry")
	}
}

func severityLabel(s errors.Severity) string {
	switch s {
	case errors.SeverityDebug, errors.SeverityInfo:
		return "note"
	case errors.SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// logCommandError records a failed command in the session log at the
// error's severity, with full details.
func logCommandError(logger *logging.Logger, command string, err error) {
	args := []any{"command", command, "error", err.Error(), "retryable", errors.IsRetryable(err)}
	switch errors.GetSeverity(err) {
	case errors.SeverityDebug:
		logger.Debug("command failed", args...)
	case errors.SeverityInfo:
		logger.Info("command failed", args...)
	case errors.SeverityWarning:
		logger.Warn("command failed", args...)
	default:
		logger.Error("command failed", args...)
	}
}
