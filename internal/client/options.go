package client

import (
	"time"

	"github.com/Iron-Ham/taskclient/internal/event"
	"github.com/Iron-Ham/taskclient/internal/logging"
	"github.com/Iron-Ham/taskclient/internal/status"
)

// Defaults for the wait engine and the liveness emitter.
const (
	DefaultPollInterval     = 20 * time.Millisecond
	DefaultGracePeriod      = time.Second
	DefaultLivenessInterval = 100 * time.Millisecond
)

// Option configures a Client.
type Option func(*config)

type config struct {
	pollInterval     time.Duration
	grace            time.Duration
	livenessInterval time.Duration
	horizon          time.Duration
	defaultPeriod    time.Duration
	clock            status.Clock
	bus              *event.Bus
	logger           *logging.Logger
}

func defaultConfig() config {
	return config{
		pollInterval:     DefaultPollInterval,
		grace:            DefaultGracePeriod,
		livenessInterval: DefaultLivenessInterval,
		horizon:          status.DefaultHorizon,
		clock:            time.Now,
		logger:           logging.NopLogger(),
	}
}

// WithPollInterval sets how often a wait re-examines task status.
// A zero or negative value is replaced with the default (20ms).
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithGracePeriod sets how long a wait tolerates a task id missing from
// the status store before failing with an unknown-task error.
func WithGracePeriod(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.grace = d
		}
	}
}

// WithLivenessInterval sets the period of the liveness signal.
func WithLivenessInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.livenessInterval = d
		}
	}
}

// WithHorizon sets the status store's freshness horizon.
func WithHorizon(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.horizon = d
		}
	}
}

// WithDefaultPeriod sets the task period used when StartTask is not given
// one. Zero means no period is sent.
func WithDefaultPeriod(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.defaultPeriod = d
		}
	}
}

// WithClock replaces time.Now for eviction and grace-period accounting.
func WithClock(clock status.Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithEventBus publishes client events on bus instead of a private one.
func WithEventBus(bus *event.Bus) Option {
	return func(c *config) {
		c.bus = bus
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// StartOption configures a single StartTask call.
type StartOption func(*startConfig)

type startConfig struct {
	foreground bool
	period     time.Duration
}

// WithForeground marks the task as the main task (true, the default) or as
// a background task.
func WithForeground(foreground bool) StartOption {
	return func(c *startConfig) {
		c.foreground = foreground
	}
}

// WithPeriod sets the task period. Non-positive values fall back to the
// client's default period.
func WithPeriod(d time.Duration) StartOption {
	return func(c *startConfig) {
		c.period = d
	}
}
