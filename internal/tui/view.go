package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/taskclient/internal/status"
	"github.com/Iron-Ham/taskclient/internal/tui/styles"
)

const (
	colID     = 6
	colName   = 16
	colMode   = 4
	colStatus = 28
	colTime   = 12
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	running := 0
	for _, rec := range m.rows {
		if !rec.Code.IsTerminal() {
			running++
		}
	}
	title := fmt.Sprintf("taskclient  %d tasks, %d running", len(m.rows), running)
	if m.width > 0 {
		return styles.Header.Width(m.width).Render(title)
	}
	return styles.Header.Render(title)
}

func (m Model) renderTable() string {
	var b strings.Builder

	heading := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %s",
		colID, "ID", colName, "NAME", colMode, "MODE", colStatus, "STATUS", colTime, "UPDATED", "MESSAGE")
	b.WriteString(styles.ColumnHeader.Render(heading))
	b.WriteString("\n")

	if len(m.rows) == 0 && len(m.evicted) == 0 {
		b.WriteString(styles.Muted.Render("no tasks"))
		b.WriteString("\n")
		return b.String()
	}

	for i, rec := range m.rows {
		line := formatRow(rec)
		if i == m.selected {
			b.WriteString(styles.RowSelected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.showEvicted && len(m.evicted) > 0 {
		ids := make([]int64, 0, len(m.evicted))
		for id := range m.evicted {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			b.WriteString(styles.Muted.Render("  " + formatPlainRow(m.evicted[id]) + " (evicted)"))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func formatRow(rec status.Record) string {
	code := fmt.Sprintf("%s %s", styles.StatusIcon(rec.Code), rec.Code)
	return fmt.Sprintf("%-*d %-*s %-*s %s %-*s %s",
		colID, rec.ID,
		colName, truncate(rec.Name, colName),
		colMode, mode(rec),
		styles.StatusStyle(rec.Code).Render(fmt.Sprintf("%-*s", colStatus, code)),
		colTime, rec.Updated.Format("15:04:05.000"),
		rec.Message)
}

func formatPlainRow(rec status.Record) string {
	return fmt.Sprintf("%-*d %-*s %-*s %-*s %-*s %s",
		colID, rec.ID,
		colName, truncate(rec.Name, colName),
		colMode, mode(rec),
		colStatus, rec.Code.String(),
		colTime, rec.Updated.Format("15:04:05.000"),
		rec.Message)
}

func (m Model) renderFooter() string {
	var b strings.Builder

	switch {
	case m.err != nil:
		b.WriteString(styles.ErrorMsg.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	case m.lastEvent != "":
		b.WriteString(styles.StatusBar.Render(m.lastEvent))
		b.WriteString("\n")
	}

	keys := []struct{ key, desc string }{
		{"↑/↓", "select"},
		{"s", "stop"},
		{"x", "stop all"},
		{"i", "idle"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, styles.HelpKey.Render(k.key)+" "+k.desc)
	}
	b.WriteString(styles.HelpBar.Render(strings.Join(parts, "  ")))
	return b.String()
}

func mode(rec status.Record) string {
	if rec.Foreground {
		return "F"
	}
	return "B"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
