package tui

import (
	"context"

	"github.com/Iron-Ham/taskclient/internal/status"
)

// Controller is the part of the task client the watch view drives.
// *client.Client satisfies it.
type Controller interface {
	Store() *status.Store
	StopTask(ctx context.Context, id int64) error
	StopAll(ctx context.Context) error
	Idle(ctx context.Context) error
}
