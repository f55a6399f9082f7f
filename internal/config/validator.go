package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/taskclient/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "client.poll_interval_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	for i, l := range levels {
		levels[i] = strings.ToLower(l)
	}
	return levels
}

// ValidBackends returns the list of dispatcher backends the CLI can build
func ValidBackends() []string {
	return []string{"sim"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateClient()...)
	errors = append(errors, c.validateSim()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateTUI()...)

	return errors
}

// validateServer validates the ServerConfig
func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Server.Node) == "" {
		errors = append(errors, ValidationError{
			Field:   "server.node",
			Value:   c.Server.Node,
			Message: "must not be empty",
		})
	}

	if !slices.Contains(ValidBackends(), c.Server.Backend) {
		errors = append(errors, ValidationError{
			Field:   "server.backend",
			Value:   c.Server.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}

	return errors
}

// validateClient validates the ClientConfig
func (c *Config) validateClient() []ValidationError {
	var errors []ValidationError

	positive := []struct {
		field string
		value int
	}{
		{"client.poll_interval_ms", c.Client.PollIntervalMs},
		{"client.grace_period_ms", c.Client.GracePeriodMs},
		{"client.horizon_ms", c.Client.HorizonMs},
		{"client.liveness_interval_ms", c.Client.LivenessIntervalMs},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errors = append(errors, ValidationError{
				Field:   p.field,
				Value:   p.value,
				Message: "must be positive",
			})
		}
	}

	// Polling slower than the grace period means an unknown id is judged on a single sample
	if c.Client.PollIntervalMs > 0 && c.Client.GracePeriodMs > 0 &&
		c.Client.PollIntervalMs > c.Client.GracePeriodMs {
		errors = append(errors, ValidationError{
			Field:   "client.poll_interval_ms",
			Value:   c.Client.PollIntervalMs,
			Message: fmt.Sprintf("must not exceed client.grace_period_ms (%d)", c.Client.GracePeriodMs),
		})
	}

	if c.Client.DefaultPeriodMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "client.default_period_ms",
			Value:   c.Client.DefaultPeriodMs,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateSim validates the SimConfig
func (c *Config) validateSim() []ValidationError {
	var errors []ValidationError

	if c.Sim.KeepAliveTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sim.keep_alive_timeout_ms",
			Value:   c.Sim.KeepAliveTimeoutMs,
			Message: "must be positive",
		})
	}

	// The watchdog must tolerate at least one missed liveness tick
	if c.Sim.KeepAliveTimeoutMs > 0 && c.Client.LivenessIntervalMs > 0 &&
		c.Sim.KeepAliveTimeoutMs < 2*c.Client.LivenessIntervalMs {
		errors = append(errors, ValidationError{
			Field:   "sim.keep_alive_timeout_ms",
			Value:   c.Sim.KeepAliveTimeoutMs,
			Message: fmt.Sprintf("must be at least twice client.liveness_interval_ms (%d)", c.Client.LivenessIntervalMs),
		})
	}

	if c.Sim.StatusIntervalMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sim.status_interval_ms",
			Value:   c.Sim.StatusIntervalMs,
			Message: "must be positive",
		})
	}

	if c.Sim.ZombieTTLMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sim.zombie_ttl_ms",
			Value:   c.Sim.ZombieTTLMs,
			Message: "must be positive",
		})
	}

	if c.Sim.MaxConcurrent < 0 {
		errors = append(errors, ValidationError{
			Field:   "sim.max_concurrent",
			Value:   c.Sim.MaxConcurrent,
			Message: "must be non-negative (0 = unlimited)",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	const minRefreshMs = 16
	if c.TUI.RefreshIntervalMs < minRefreshMs {
		errors = append(errors, ValidationError{
			Field:   "tui.refresh_interval_ms",
			Value:   c.TUI.RefreshIntervalMs,
			Message: fmt.Sprintf("must be at least %d", minRefreshMs),
		})
	}

	return errors
}
