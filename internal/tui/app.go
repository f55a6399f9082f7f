package tui

import (
	"context"
	"errors"

	"github.com/Iron-Ham/taskclient/internal/event"
	tea "github.com/charmbracelet/bubbletea"
)

// App wraps the Bubbletea program for the watch view.
type App struct {
	ctrl    Controller
	bus     *event.Bus
	opts    []Option
	program *tea.Program
}

// New creates the watch application. Every event published on bus is
// forwarded to the view.
func New(ctrl Controller, bus *event.Bus, opts ...Option) *App {
	return &App{ctrl: ctrl, bus: bus, opts: opts}
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	model := NewModel(a.ctrl, a.opts...)
	model.ctx = ctx

	a.program = tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	subID := a.bus.SubscribeAll(func(ev event.Event) {
		a.program.Send(busMsg{ev: ev})
	})
	defer a.bus.Unsubscribe(subID)

	_, err := a.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		// Cancellation is a normal way to leave the view.
		return nil
	}
	return err
}
