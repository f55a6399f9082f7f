package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete taskclient configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
	Sim     SimConfig     `mapstructure:"sim" yaml:"sim"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	TUI     TUIConfig     `mapstructure:"tui" yaml:"tui"`
}

// ServerConfig selects the task server the CLI talks to
type ServerConfig struct {
	// Node is the name of the server node, attached to every log line
	Node string `mapstructure:"node" yaml:"node"`
	// Backend is the dispatcher implementation. Options: "sim"
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// ClientConfig controls the wait engine and the liveness emitter
type ClientConfig struct {
	// PollIntervalMs is how often a wait re-examines task status (default: 20)
	PollIntervalMs int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	// GracePeriodMs is how long a wait tolerates an id with no status (default: 1000)
	GracePeriodMs int `mapstructure:"grace_period_ms" yaml:"grace_period_ms"`
	// HorizonMs is how long a terminal status is kept before eviction (default: 10000)
	HorizonMs int `mapstructure:"horizon_ms" yaml:"horizon_ms"`
	// LivenessIntervalMs is the keep-alive period while tasks run (default: 100)
	LivenessIntervalMs int `mapstructure:"liveness_interval_ms" yaml:"liveness_interval_ms"`
	// DefaultPeriodMs is the status publication period requested for new tasks.
	// 0 leaves the task's own default in place.
	DefaultPeriodMs int `mapstructure:"default_period_ms" yaml:"default_period_ms"`
}

// SimConfig controls the in-process simulated task server
type SimConfig struct {
	// KeepAliveTimeoutMs stops every task when no liveness signal arrives in time (default: 2000)
	KeepAliveTimeoutMs int `mapstructure:"keep_alive_timeout_ms" yaml:"keep_alive_timeout_ms"`
	// StatusIntervalMs is how often running tasks republish their status (default: 500)
	StatusIntervalMs int `mapstructure:"status_interval_ms" yaml:"status_interval_ms"`
	// ZombieTTLMs is how long finished tasks stay queryable (default: 10000)
	ZombieTTLMs int `mapstructure:"zombie_ttl_ms" yaml:"zombie_ttl_ms"`
	// MaxConcurrent caps background tasks running at once. 0 means unlimited.
	MaxConcurrent int `mapstructure:"max_concurrent" yaml:"max_concurrent"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is enabled (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory holding taskclient.log. Empty logs to stderr.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// TUIConfig controls the watch view
type TUIConfig struct {
	// RefreshIntervalMs is how often the view redraws without new events (default: 250)
	RefreshIntervalMs int `mapstructure:"refresh_interval_ms" yaml:"refresh_interval_ms"`
	// ShowEvicted keeps a line for evicted tasks until the view is closed (default: false)
	ShowEvicted bool `mapstructure:"show_evicted" yaml:"show_evicted"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Node:    "local",
			Backend: "sim",
		},
		Client: ClientConfig{
			PollIntervalMs:     20,
			GracePeriodMs:      1000,
			HorizonMs:          10000,
			LivenessIntervalMs: 100,
		},
		Sim: SimConfig{
			KeepAliveTimeoutMs: 2000,
			StatusIntervalMs:   500,
			ZombieTTLMs:        10000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		TUI: TUIConfig{
			RefreshIntervalMs: 250,
		},
	}
}

// PollInterval returns the poll interval as a time.Duration
func (c *ClientConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// GracePeriod returns the grace period as a time.Duration
func (c *ClientConfig) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodMs) * time.Millisecond
}

// Horizon returns the eviction horizon as a time.Duration
func (c *ClientConfig) Horizon() time.Duration {
	return time.Duration(c.HorizonMs) * time.Millisecond
}

// LivenessInterval returns the keep-alive period as a time.Duration
func (c *ClientConfig) LivenessInterval() time.Duration {
	return time.Duration(c.LivenessIntervalMs) * time.Millisecond
}

// DefaultPeriod returns the default publication period (0 means unset)
func (c *ClientConfig) DefaultPeriod() time.Duration {
	return time.Duration(c.DefaultPeriodMs) * time.Millisecond
}

// KeepAliveTimeout returns the watchdog timeout as a time.Duration
func (c *SimConfig) KeepAliveTimeout() time.Duration {
	return time.Duration(c.KeepAliveTimeoutMs) * time.Millisecond
}

// StatusInterval returns the republish period as a time.Duration
func (c *SimConfig) StatusInterval() time.Duration {
	return time.Duration(c.StatusIntervalMs) * time.Millisecond
}

// ZombieTTL returns the zombie lifetime as a time.Duration
func (c *SimConfig) ZombieTTL() time.Duration {
	return time.Duration(c.ZombieTTLMs) * time.Millisecond
}

// RefreshInterval returns the redraw period as a time.Duration
func (c *TUIConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Server defaults
	viper.SetDefault("server.node", defaults.Server.Node)
	viper.SetDefault("server.backend", defaults.Server.Backend)

	// Client defaults
	viper.SetDefault("client.poll_interval_ms", defaults.Client.PollIntervalMs)
	viper.SetDefault("client.grace_period_ms", defaults.Client.GracePeriodMs)
	viper.SetDefault("client.horizon_ms", defaults.Client.HorizonMs)
	viper.SetDefault("client.liveness_interval_ms", defaults.Client.LivenessIntervalMs)
	viper.SetDefault("client.default_period_ms", defaults.Client.DefaultPeriodMs)

	// Sim defaults
	viper.SetDefault("sim.keep_alive_timeout_ms", defaults.Sim.KeepAliveTimeoutMs)
	viper.SetDefault("sim.status_interval_ms", defaults.Sim.StatusIntervalMs)
	viper.SetDefault("sim.zombie_ttl_ms", defaults.Sim.ZombieTTLMs)
	viper.SetDefault("sim.max_concurrent", defaults.Sim.MaxConcurrent)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	// TUI defaults
	viper.SetDefault("tui.refresh_interval_ms", defaults.TUI.RefreshIntervalMs)
	viper.SetDefault("tui.show_evicted", defaults.TUI.ShowEvicted)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load against an explicit viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskclient")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskclient"
	}
	return filepath.Join(home, ".config", "taskclient")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// WriteDefault writes the default configuration as YAML to path, creating
// parent directories. An existing file is left untouched unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Watcher re-reads the configuration whenever the config file changes and
// hands each valid result to the registered callbacks. Invalid edits are
// reported through the error callback and otherwise ignored.
type Watcher struct {
	v       *viper.Viper
	mu      sync.Mutex
	onLoad  []func(*Config)
	onError func(error)
}

// NewWatcher creates a Watcher over v. The instance must already know its
// config file.
func NewWatcher(v *viper.Viper) *Watcher {
	return &Watcher{v: v}
}

// OnChange registers fn to receive each reloaded configuration.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onLoad = append(w.onLoad, fn)
}

// OnError registers fn to receive reload failures.
func (w *Watcher) OnError(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Start begins watching the config file.
func (w *Watcher) Start() {
	w.v.OnConfigChange(w.handle)
	w.v.WatchConfig()
}

func (w *Watcher) handle(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}

	cfg, err := LoadFrom(w.v)

	w.mu.Lock()
	callbacks := make([]func(*Config), len(w.onLoad))
	copy(callbacks, w.onLoad)
	onError := w.onError
	w.mu.Unlock()

	if err != nil {
		if onError != nil {
			onError(fmt.Errorf("reload %s: %w", e.Name, err))
		}
		return
	}
	for _, fn := range callbacks {
		fn(cfg)
	}
}
