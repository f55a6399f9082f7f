package tui

import (
	"time"

	"github.com/Iron-Ham/taskclient/internal/event"
	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg drives periodic redraws between bus events.
type tickMsg time.Time

// busMsg carries an event from the client's bus into the program.
type busMsg struct {
	ev event.Event
}

// actionResultMsg reports the outcome of a stop/idle request.
type actionResultMsg struct {
	action string
	err    error
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
