package event

import (
	"time"

	"github.com/Iron-Ham/taskclient/internal/status"
)

// Event types published by the task client.
const (
	TypeTaskStatus   = "task.status"
	TypeTaskStarted  = "task.started"
	TypeTaskStopped  = "task.stopped"
	TypeTaskEvicted  = "task.evicted"
	TypeWaitResolved = "wait.resolved"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "task.status").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// TaskStatusEvent is emitted for every status record ingested, pushed or
// queried.
type TaskStatusEvent struct {
	baseEvent
	Record status.Record
}

// NewTaskStatusEvent creates a TaskStatusEvent.
func NewTaskStatusEvent(rec status.Record) TaskStatusEvent {
	return TaskStatusEvent{
		baseEvent: newBaseEvent(TypeTaskStatus),
		Record:    rec,
	}
}

// TaskStartedEvent is emitted after the server accepted a start request.
type TaskStartedEvent struct {
	baseEvent
	TaskID     int64
	Name       string
	Foreground bool
}

// NewTaskStartedEvent creates a TaskStartedEvent.
func NewTaskStartedEvent(id int64, name string, foreground bool) TaskStartedEvent {
	return TaskStartedEvent{
		baseEvent:  newBaseEvent(TypeTaskStarted),
		TaskID:     id,
		Name:       name,
		Foreground: foreground,
	}
}

// TaskStoppedEvent is emitted after the server accepted a stop request.
// TaskID is -1 for stop-all.
type TaskStoppedEvent struct {
	baseEvent
	TaskID int64
}

// NewTaskStoppedEvent creates a TaskStoppedEvent.
func NewTaskStoppedEvent(id int64) TaskStoppedEvent {
	return TaskStoppedEvent{
		baseEvent: newBaseEvent(TypeTaskStopped),
		TaskID:    id,
	}
}

// TaskEvictedEvent is emitted when stale records leave the status store.
type TaskEvictedEvent struct {
	baseEvent
	TaskIDs []int64
}

// NewTaskEvictedEvent creates a TaskEvictedEvent.
func NewTaskEvictedEvent(ids []int64) TaskEvictedEvent {
	return TaskEvictedEvent{
		baseEvent: newBaseEvent(TypeTaskEvicted),
		TaskIDs:   ids,
	}
}

// WaitResolvedEvent is emitted when a wait call returns. Err is nil on
// success.
type WaitResolvedEvent struct {
	baseEvent
	Mode    string // "one", "any" or "all"
	TaskIDs []int64
	Err     error
}

// NewWaitResolvedEvent creates a WaitResolvedEvent.
func NewWaitResolvedEvent(mode string, ids []int64, err error) WaitResolvedEvent {
	return WaitResolvedEvent{
		baseEvent: newBaseEvent(TypeWaitResolved),
		Mode:      mode,
		TaskIDs:   ids,
		Err:       err,
	}
}
