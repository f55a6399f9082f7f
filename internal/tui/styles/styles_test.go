package styles

import (
	"testing"

	"github.com/Iron-Ham/taskclient/internal/lifecycle"
)

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status   lifecycle.Status
		expected string // Expected color hex value
	}{
		{lifecycle.Newborn, "#9CA3AF"},
		{lifecycle.Initialised, "#9CA3AF"},
		{lifecycle.Running, "#10B981"},
		{lifecycle.Completed, "#A78BFA"},
		{lifecycle.Terminated, "#A78BFA"},
		{lifecycle.Interrupted, "#FBBF24"},
		{lifecycle.Timeout, "#FB923C"},
		{lifecycle.Failed, "#F87171"},
		{lifecycle.ConfigurationFailed, "#F87171"},
		{lifecycle.Status(42), "#F87171"}, // Unknown codes count as failures
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			got := StatusColor(tt.status)
			if string(got) != tt.expected {
				t.Errorf("StatusColor(%v) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestStatusIcon(t *testing.T) {
	tests := []struct {
		status   lifecycle.Status
		expected string
	}{
		{lifecycle.Configured, "○"},
		{lifecycle.Running, "●"},
		{lifecycle.Terminated, "✓"},
		{lifecycle.Interrupted, "⏸"},
		{lifecycle.Timeout, "⏰"},
		{lifecycle.InitialisationFailed, "✗"},
		{lifecycle.Status(42), "?"},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := StatusIcon(tt.status); got != tt.expected {
				t.Errorf("StatusIcon(%v) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestStatusStyle(t *testing.T) {
	for _, code := range lifecycle.All() {
		got := StatusStyle(code).GetForeground()
		if got != StatusColor(code) {
			t.Errorf("StatusStyle(%v) foreground = %v, want %v", code, got, StatusColor(code))
		}
	}
}
