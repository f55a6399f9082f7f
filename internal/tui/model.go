package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/Iron-Ham/taskclient/internal/event"
	"github.com/Iron-Ham/taskclient/internal/status"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultRefreshInterval is how often the view redraws without new events.
const DefaultRefreshInterval = 250 * time.Millisecond

// Option configures the watch view.
type Option func(*Model)

// WithRefreshInterval sets the redraw period. Non-positive values are ignored.
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.refresh = d
		}
	}
}

// WithShowEvicted keeps a muted line for tasks that left the status store.
func WithShowEvicted(show bool) Option {
	return func(m *Model) {
		m.showEvicted = show
	}
}

// Model is the bubbletea model for the live status view.
type Model struct {
	ctx  context.Context
	ctrl Controller

	refresh     time.Duration
	showEvicted bool

	rows     []status.Record
	evicted  map[int64]status.Record
	selected int

	width  int
	height int

	lastEvent string
	err       error
	quitting  bool
}

// NewModel creates the watch view over ctrl.
func NewModel(ctrl Controller, opts ...Option) Model {
	m := Model{
		ctx:     context.Background(),
		ctrl:    ctrl,
		refresh: DefaultRefreshInterval,
		evicted: make(map[int64]status.Record),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick(m.refresh)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeypress(msg)

	case tickMsg:
		m.reload()
		return m, tick(m.refresh)

	case busMsg:
		m.lastEvent = describeEvent(msg.ev)
		m.reload()
		return m, nil

	case actionResultMsg:
		m.err = msg.err
		if msg.err == nil {
			m.lastEvent = msg.action + " sent"
		}
		m.reload()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down", "j":
		if m.selected < len(m.rows)-1 {
			m.selected++
		}
		return m, nil

	case "s":
		rec, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, m.action(fmt.Sprintf("stop %d", rec.ID), func(ctx context.Context) error {
			return m.ctrl.StopTask(ctx, rec.ID)
		})

	case "x":
		return m, m.action("stop all", m.ctrl.StopAll)

	case "i":
		return m, m.action("idle", m.ctrl.Idle)
	}

	return m, nil
}

// action runs fn off the update loop and reports back with an actionResultMsg.
func (m Model) action(name string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionResultMsg{action: name, err: fn(ctx)}
	}
}

// reload refreshes the rows from the status store and keeps the selection
// in range.
func (m *Model) reload() {
	rows := m.ctrl.Store().Snapshot()

	if m.showEvicted {
		current := make(map[int64]bool, len(rows))
		for _, rec := range rows {
			current[rec.ID] = true
			delete(m.evicted, rec.ID)
		}
		for _, rec := range m.rows {
			if !current[rec.ID] {
				m.evicted[rec.ID] = rec
			}
		}
	}

	m.rows = rows
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// Selected returns the record under the cursor.
func (m Model) Selected() (status.Record, bool) {
	if len(m.rows) == 0 {
		return status.Record{}, false
	}
	return m.rows[m.selected], true
}

// Rows returns the records currently displayed.
func (m Model) Rows() []status.Record {
	return m.rows
}

func describeEvent(ev event.Event) string {
	switch e := ev.(type) {
	case event.TaskStartedEvent:
		return fmt.Sprintf("started %s (%d)", e.Name, e.TaskID)
	case event.TaskStoppedEvent:
		if e.TaskID < 0 {
			return "stopped all tasks"
		}
		return fmt.Sprintf("stopped %d", e.TaskID)
	case event.TaskStatusEvent:
		return fmt.Sprintf("%d %s", e.Record.ID, e.Record.Code)
	case event.TaskEvictedEvent:
		return fmt.Sprintf("evicted %v", e.TaskIDs)
	case event.WaitResolvedEvent:
		if e.Err != nil {
			return fmt.Sprintf("wait %s %v: %v", e.Mode, e.TaskIDs, e.Err)
		}
		return fmt.Sprintf("wait %s %v done", e.Mode, e.TaskIDs)
	default:
		return ev.EventType()
	}
}
