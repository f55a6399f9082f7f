// Package sim is an in-process task server implementing
// [dispatch.Dispatcher].
//
// It runs a small catalog of tasks on goroutines, walks each instance
// through the lifecycle (NEWBORN, CONFIGURED, INITIALISED, RUNNING, then a
// terminal status), and pushes every transition to its status subscribers.
// Finished instances linger as zombies so bulk status queries still report
// them for a while. A keep-alive watchdog stops every task when the client
// stops emitting its liveness signal.
//
// The CLI uses it as its default backend and the client's integration tests
// run against it.
//
// Lifecycle:
//
//	srv := sim.NewServer(sim.WithLogger(logger))
//	srv.Start(ctx)  // spawns the watchdog and the status publisher
//	// ... dispatch calls ...
//	srv.Close()     // interrupts running tasks, waits for all goroutines
package sim
