package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got errors: %v", ValidationErrors(errs))
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:      "empty node",
			modify:    func(c *Config) { c.Server.Node = "  " },
			wantField: "server.node",
		},
		{
			name:      "unknown backend",
			modify:    func(c *Config) { c.Server.Backend = "grpc" },
			wantField: "server.backend",
		},
		{
			name:      "zero poll interval",
			modify:    func(c *Config) { c.Client.PollIntervalMs = 0 },
			wantField: "client.poll_interval_ms",
		},
		{
			name: "poll slower than grace",
			modify: func(c *Config) {
				c.Client.PollIntervalMs = 2000
				c.Client.GracePeriodMs = 1000
			},
			wantField: "client.poll_interval_ms",
		},
		{
			name:      "negative grace period",
			modify:    func(c *Config) { c.Client.GracePeriodMs = -1 },
			wantField: "client.grace_period_ms",
		},
		{
			name:      "zero horizon",
			modify:    func(c *Config) { c.Client.HorizonMs = 0 },
			wantField: "client.horizon_ms",
		},
		{
			name:      "zero liveness interval",
			modify:    func(c *Config) { c.Client.LivenessIntervalMs = 0 },
			wantField: "client.liveness_interval_ms",
		},
		{
			name:      "negative default period",
			modify:    func(c *Config) { c.Client.DefaultPeriodMs = -5 },
			wantField: "client.default_period_ms",
		},
		{
			name:      "keep-alive shorter than two liveness ticks",
			modify:    func(c *Config) { c.Sim.KeepAliveTimeoutMs = 150 },
			wantField: "sim.keep_alive_timeout_ms",
		},
		{
			name:      "zero status interval",
			modify:    func(c *Config) { c.Sim.StatusIntervalMs = 0 },
			wantField: "sim.status_interval_ms",
		},
		{
			name:      "zero zombie ttl",
			modify:    func(c *Config) { c.Sim.ZombieTTLMs = 0 },
			wantField: "sim.zombie_ttl_ms",
		},
		{
			name:      "negative max concurrent",
			modify:    func(c *Config) { c.Sim.MaxConcurrent = -1 },
			wantField: "sim.max_concurrent",
		},
		{
			name:      "bad log level",
			modify:    func(c *Config) { c.Logging.Level = "verbose" },
			wantField: "logging.level",
		},
		{
			name:      "refresh too fast",
			modify:    func(c *Config) { c.TUI.RefreshIntervalMs = 1 },
			wantField: "tui.refresh_interval_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if len(errs) == 0 {
				t.Fatal("Validate() returned no errors")
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.wantField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Validate() errors = %v, want one on %q", ValidationErrors(errs), tt.wantField)
			}
		})
	}
}

func TestConfig_Validate_AcceptsEdgeValues(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"uppercase log level", func(c *Config) { c.Logging.Level = "DEBUG" }},
		{"empty log level", func(c *Config) { c.Logging.Level = "" }},
		{"unlimited concurrency", func(c *Config) { c.Sim.MaxConcurrent = 0 }},
		{"poll equals grace", func(c *Config) { c.Client.PollIntervalMs = c.Client.GracePeriodMs }},
		{"keep-alive exactly two ticks", func(c *Config) { c.Sim.KeepAliveTimeoutMs = 200 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if errs := cfg.Validate(); len(errs) != 0 {
				t.Errorf("Validate() = %v, want no errors", ValidationErrors(errs))
			}
		})
	}
}

func TestValidLogLevels(t *testing.T) {
	want := []string{"debug", "info", "warn", "error"}
	got := ValidLogLevels()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ValidLogLevels() = %v, want %v", got, want)
	}
}
