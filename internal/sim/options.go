package sim

import (
	"time"

	"github.com/Iron-Ham/taskclient/internal/logging"
)

// Defaults for the simulated server.
const (
	DefaultKeepAliveTimeout = 2 * time.Second
	DefaultStatusInterval   = 500 * time.Millisecond
	DefaultZombieTTL        = 10 * time.Second
)

// Option configures a Server.
type Option func(*config)

type config struct {
	tasks            []TaskSpec
	keepAliveTimeout time.Duration
	statusInterval   time.Duration
	zombieTTL        time.Duration
	maxConcurrent    int
	logger           *logging.Logger
}

// WithTasks adds task specs to the catalog. A spec with the same name as a
// built-in replaces it.
func WithTasks(specs ...TaskSpec) Option {
	return func(c *config) {
		c.tasks = append(c.tasks, specs...)
	}
}

// WithKeepAliveTimeout sets how long the server tolerates silence from the
// client while tasks are active. Zero disables the watchdog.
func WithKeepAliveTimeout(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.keepAliveTimeout = d
		}
	}
}

// WithStatusInterval sets how often active tasks re-publish their status.
// A zero or negative value is replaced with the default (500ms).
func WithStatusInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.statusInterval = d
		}
	}
}

// WithZombieTTL sets how long finished instances stay visible to status
// queries.
func WithZombieTTL(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.zombieTTL = d
		}
	}
}

// WithMaxConcurrent caps the number of simultaneously active instances.
// StartTask blocks for a free slot. Zero means unlimited.
func WithMaxConcurrent(n int) Option {
	return func(c *config) {
		c.maxConcurrent = n
	}
}

// WithLogger sets the logger for the server.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
