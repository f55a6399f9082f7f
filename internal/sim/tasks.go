package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/Iron-Ham/taskclient/internal/dispatch"
	"github.com/Iron-Ham/taskclient/internal/lifecycle"
)

// Task parameters understood by the built-in tasks.
const (
	ParamDuration = "task_duration"
	ParamTimeout  = "task_timeout"
	// ParamMessage overrides the final message of the Fail task.
	ParamMessage = "message"
)

// Reporter updates the diagnostic message of a running instance.
type Reporter func(message string)

// TaskFunc runs one task instance and returns its final status and
// message. It must return promptly once ctx is done; the server then
// overrides the result with TASK_INTERRUPTED or TASK_TIMEOUT.
type TaskFunc func(ctx context.Context, params dispatch.Params, report Reporter) (lifecycle.Status, string)

// TaskSpec is a task the simulated server can run.
type TaskSpec struct {
	Name        string
	Description string
	Run         TaskFunc
}

// BuiltinTasks returns the default catalog: Idle, Wait and Fail.
func BuiltinTasks() []TaskSpec {
	return []TaskSpec{
		{
			Name:        "Idle",
			Description: "Do nothing until stopped",
			Run:         runIdle,
		},
		{
			Name:        "Wait",
			Description: "Wait for task_duration seconds (default 1)",
			Run:         runWait,
		},
		{
			Name:        "Fail",
			Description: "Fail after task_duration seconds (default 0) with an optional message",
			Run:         runFail,
		},
	}
}

func runIdle(ctx context.Context, _ dispatch.Params, report Reporter) (lifecycle.Status, string) {
	report("idling")
	<-ctx.Done()
	return lifecycle.Terminated, "idle ended"
}

func runWait(ctx context.Context, params dispatch.Params, report Reporter) (lifecycle.Status, string) {
	d := secondsParam(params, ParamDuration, time.Second)
	report(fmt.Sprintf("waiting %v", d))
	if !sleep(ctx, d) {
		return lifecycle.Interrupted, "wait cut short"
	}
	return lifecycle.Terminated, fmt.Sprintf("waited %v", d)
}

func runFail(ctx context.Context, params dispatch.Params, report Reporter) (lifecycle.Status, string) {
	d := secondsParam(params, ParamDuration, 0)
	report("about to fail")
	if !sleep(ctx, d) {
		return lifecycle.Interrupted, "failure cut short"
	}
	if msg, ok := params[ParamMessage].(string); ok && msg != "" {
		return lifecycle.Failed, msg
	}
	return lifecycle.Failed, "requested failure"
}

// sleep waits for d or until ctx is done, reporting whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// secondsParam reads a duration expressed in (fractional) seconds.
func secondsParam(params dispatch.Params, key string, def time.Duration) time.Duration {
	v, ok := params.Float(key)
	if !ok || v < 0 {
		return def
	}
	return time.Duration(v * float64(time.Second))
}
