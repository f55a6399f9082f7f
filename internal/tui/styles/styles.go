// Package styles holds the lipgloss palette shared by the CLI status output
// and the watch view.
package styles

import (
	"github.com/Iron-Ham/taskclient/internal/lifecycle"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray

	// Status colors
	StatusStarting    = lipgloss.Color("#9CA3AF") // Gray - newborn, configured, initialised
	StatusRunning     = lipgloss.Color("#10B981") // Green
	StatusDone        = lipgloss.Color("#A78BFA") // Purple - completed, terminated
	StatusInterrupted = lipgloss.Color("#FBBF24") // Yellow
	StatusTimeout     = lipgloss.Color("#FB923C") // Orange
	StatusFailed      = lipgloss.Color("#F87171") // Red

	// Convenience styles for colors
	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Error   = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted   = lipgloss.NewStyle().Foreground(MutedColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	// Header
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor).
		MarginBottom(1)

	// Column headings of the task table
	ColumnHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(MutedColor)

	// Selected table row
	RowSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(SurfaceColor)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	// Footer / status bar
	StatusBar = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor).
			Padding(0, 1)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)
)

// StatusColor returns the color for a task status
func StatusColor(code lifecycle.Status) lipgloss.Color {
	switch code {
	case lifecycle.Newborn, lifecycle.Configured, lifecycle.Initialised:
		return StatusStarting
	case lifecycle.Running:
		return StatusRunning
	case lifecycle.Completed, lifecycle.Terminated:
		return StatusDone
	case lifecycle.Interrupted:
		return StatusInterrupted
	case lifecycle.Timeout:
		return StatusTimeout
	default:
		return StatusFailed
	}
}

// StatusIcon returns an icon for a task status. Codes the server added
// after this client was built get a question mark.
func StatusIcon(code lifecycle.Status) string {
	switch code {
	case lifecycle.Newborn, lifecycle.Configured, lifecycle.Initialised:
		return "○"
	case lifecycle.Running:
		return "●"
	case lifecycle.Completed, lifecycle.Terminated:
		return "✓"
	case lifecycle.Interrupted:
		return "⏸"
	case lifecycle.Timeout:
		return "⏰"
	}
	if !code.Known() {
		return "?"
	}
	return "✗"
}

// StatusStyle returns the foreground style for a task status
func StatusStyle(code lifecycle.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(StatusColor(code))
}
