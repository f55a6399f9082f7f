// Package dispatch defines the boundary between the task client and the
// remote task server.
//
// The client never talks to a transport directly. It consumes a
// [Dispatcher], which starts and stops tasks, lists task definitions,
// answers bulk status queries, delivers pushed status messages, and carries
// the client's liveness signal. Tests and the bundled simulator provide
// in-process implementations.
package dispatch

import (
	"context"
	"time"
)

// StopAllID is the protocol id meaning "every active task".
const StopAllID int64 = -1

// Definition describes a task the server knows how to run.
type Definition struct {
	Name        string
	Description string
}

// StatusMessage is a status update as published by the server. The status
// word packs the lifecycle code in its low byte and the foreground flag in
// bit 0x100.
type StatusMessage struct {
	ID         int64
	Name       string
	StatusWord uint32
	Message    string
	Time       time.Time
}

// StatusHandler receives pushed status messages. It may be called from any
// goroutine.
type StatusHandler func(StatusMessage)

// Dispatcher is the set of capabilities the client needs from the task
// server. Calls may block on the network; they are bounded by the
// implementation's own timeout policy and by ctx.
type Dispatcher interface {
	// ListTaskDefinitions returns every task definition the server offers.
	ListTaskDefinitions(ctx context.Context) ([]Definition, error)

	// StartTask starts an instance of the named task with an encoded
	// configuration payload and returns its server-assigned id.
	StartTask(ctx context.Context, name string, config []byte) (int64, error)

	// StopTask stops the task with the given id, or every task when id is
	// StopAllID.
	StopTask(ctx context.Context, id int64) error

	// QueryAllStatus returns the status of running tasks and of recently
	// finished ("zombie") tasks.
	QueryAllStatus(ctx context.Context) (running, zombies []StatusMessage, err error)

	// SubscribeStatus registers handler for pushed status messages and
	// returns a function that cancels the subscription.
	SubscribeStatus(handler StatusHandler) (unsubscribe func(), err error)

	// EmitLiveness signals that the client is still alive.
	EmitLiveness(ctx context.Context) error
}
