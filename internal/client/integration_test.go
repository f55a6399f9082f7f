package client

import (
	"context"
	"testing"
	"time"

	"github.com/Iron-Ham/taskclient/internal/condition"
	"github.com/Iron-Ham/taskclient/internal/dispatch"
	"github.com/Iron-Ham/taskclient/internal/errors"
	"github.com/Iron-Ham/taskclient/internal/lifecycle"
	"github.com/Iron-Ham/taskclient/internal/sim"
	"github.com/Iron-Ham/taskclient/internal/testutil"
)

// newSimClient wires a client to a running simulated server.
func newSimClient(t *testing.T, simOpts ...sim.Option) (*Client, *sim.Server) {
	t.Helper()

	srv := sim.NewServer(simOpts...)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("sim Start() error = %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	c := New(srv, WithPollInterval(5*time.Millisecond), WithLivenessInterval(10*time.Millisecond))
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("client Start() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, srv
}

func TestIntegration_RunForeground(t *testing.T) {
	c, _ := newSimClient(t)

	def, err := c.Task("Wait")
	if err != nil {
		t.Fatal(err)
	}
	id, err := def.Run(context.Background(), dispatch.Params{sim.ParamDuration: 0.05})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rec, ok := c.Status(id)
	if !ok || rec.Code != lifecycle.Terminated || !rec.Foreground {
		t.Errorf("final record = %+v", rec)
	}
}

func TestIntegration_TimeoutIsFailure(t *testing.T) {
	c, _ := newSimClient(t)

	_, err := c.StartTaskAndWait(context.Background(), "Wait",
		dispatch.Params{sim.ParamDuration: 5.0, sim.ParamTimeout: 0.05})
	var tf *errors.TaskFailedError
	if !errors.As(err, &tf) || tf.Status != lifecycle.Timeout {
		t.Fatalf("StartTaskAndWait() error = %v, want TASK_TIMEOUT failure", err)
	}
}

func TestIntegration_WaitAnyStopsSlowerTask(t *testing.T) {
	c, srv := newSimClient(t)
	ctx := context.Background()

	fast, err := c.StartTask(ctx, "Wait", dispatch.Params{sim.ParamDuration: 0.05}, WithForeground(false))
	if err != nil {
		t.Fatal(err)
	}
	slow, err := c.StartTask(ctx, "Idle", nil, WithForeground(false))
	if err != nil {
		t.Fatal(err)
	}

	first, err := c.WaitAny(ctx, []int64{slow, fast}, true)
	if err != nil {
		t.Fatalf("WaitAny() error = %v", err)
	}
	if first != fast {
		t.Errorf("first = %d, want %d", first, fast)
	}

	deadline := time.Now().Add(time.Second)
	for srv.Active() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if srv.Active() != 0 {
		t.Error("the slower task should have been stopped")
	}
}

func TestIntegration_WaitAllWithCondition(t *testing.T) {
	c, _ := newSimClient(t)
	ctx := context.Background()

	watch, err := c.StartTask(ctx, "Wait", dispatch.Params{sim.ParamDuration: 0.05}, WithForeground(false))
	if err != nil {
		t.Fatal(err)
	}
	idle, err := c.StartTask(ctx, "Idle", nil, WithForeground(false))
	if err != nil {
		t.Fatal(err)
	}

	c.AddCondition(condition.IsTerminal(c.Store(), watch))
	err = c.WaitAll(ctx, []int64{idle})

	var ct *errors.ConditionTerminatedError
	if !errors.As(err, &ct) {
		t.Fatalf("WaitAll() error = %v, want ConditionTerminatedError", err)
	}
	if c.Conditions().Len() != 0 {
		t.Error("conditions should be cleared")
	}
}

func TestIntegration_IdleSilencesLiveness(t *testing.T) {
	c, srv := newSimClient(t, sim.WithKeepAliveTimeout(80*time.Millisecond))
	ctx := context.Background()

	id, err := c.StartTask(ctx, "Idle", nil)
	if err != nil {
		t.Fatal(err)
	}

	// The liveness signal keeps the task alive past the keep-alive timeout.
	time.Sleep(200 * time.Millisecond)
	if rec, _ := c.Status(id); rec.Code.IsTerminal() {
		t.Fatalf("task stopped while the client was alive: %v", rec.Code)
	}

	if err := c.Idle(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Alive() {
		t.Error("Idle should silence the liveness signal")
	}

	testutil.WaitFor(t, time.Second, "task interrupted after Idle", func() bool {
		rec, _ := c.Status(id)
		return rec.Code == lifecycle.Interrupted
	})
	if srv.Active() != 0 {
		t.Errorf("Active() = %d after Idle, want 0", srv.Active())
	}
}
