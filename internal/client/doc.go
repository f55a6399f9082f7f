// Package client tracks tasks running on a remote task server and blocks
// callers until they finish.
//
// A [Client] wraps a [dispatch.Dispatcher]. It keeps a [status.Store] fed
// from the server's pushed status messages, a catalog of task definitions,
// and a [condition.Set] that any wait consults before looking at task
// status. While the client has started a task it emits a periodic liveness
// signal so the server knows someone is still watching.
//
// Basic usage:
//
//	c := client.New(dispatcher, client.WithLogger(logger))
//	if err := c.Start(ctx); err != nil {
//		return err
//	}
//	defer c.Close()
//
//	id, err := c.StartTask(ctx, "Wait", dispatch.Params{"task_duration": 2.0})
//	if err != nil {
//		return err
//	}
//	return c.Wait(ctx, id)
//
// Wait, WaitAny and WaitAll return nil on success and one of the typed
// errors of package errors otherwise: an unknown task, a failed task, a
// condition-triggered termination, or an abort when ctx is done.
package client
