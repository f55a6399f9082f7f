package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/Iron-Ham/taskclient/internal/client"
	"github.com/Iron-Ham/taskclient/internal/config"
	"github.com/Iron-Ham/taskclient/internal/errors"
	"github.com/Iron-Ham/taskclient/internal/logging"
	"github.com/Iron-Ham/taskclient/internal/sim"
	"github.com/spf13/cobra"
)

// session is one connected client plus the server it talks to. A plain
// command opens its own session and closes it on return; the shell keeps a
// single session for all the lines it runs.
type session struct {
	mu  sync.RWMutex
	cfg *config.Config

	logger *logging.Logger
	server *sim.Server
	client *client.Client
	shell  bool
}

type sessionKey struct{}

func openSession(ctx context.Context, cfg *config.Config) (*session, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	logger = logger.WithServer(cfg.Server.Node)

	var server *sim.Server
	switch cfg.Server.Backend {
	case "sim":
		server = sim.NewServer(
			sim.WithKeepAliveTimeout(cfg.Sim.KeepAliveTimeout()),
			sim.WithStatusInterval(cfg.Sim.StatusInterval()),
			sim.WithZombieTTL(cfg.Sim.ZombieTTL()),
			sim.WithMaxConcurrent(cfg.Sim.MaxConcurrent),
			sim.WithLogger(logger.WithComponent("sim")),
		)
	default:
		_ = logger.Close()
		return nil, fmt.Errorf("unsupported server backend %q", cfg.Server.Backend)
	}
	if err := server.Start(ctx); err != nil {
		_ = logger.Close()
		return nil, errors.Wrapf(err, "failed to start %s server", cfg.Server.Backend)
	}

	c := client.New(server,
		client.WithPollInterval(cfg.Client.PollInterval()),
		client.WithGracePeriod(cfg.Client.GracePeriod()),
		client.WithHorizon(cfg.Client.Horizon()),
		client.WithLivenessInterval(cfg.Client.LivenessInterval()),
		client.WithDefaultPeriod(cfg.Client.DefaultPeriod()),
		client.WithLogger(logger.WithComponent("client")),
	)
	if err := c.Start(ctx); err != nil {
		_ = server.Close()
		_ = logger.Close()
		return nil, errors.Wrapf(err, "failed to connect to %s", cfg.Server.Node)
	}

	return &session{cfg: cfg, logger: logger, server: server, client: c}, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLogger(cfg.Logging.Dir, logging.ParseLevel(cfg.Logging.Level))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}
	return logger, nil
}

// Close disconnects the client, then shuts the server down.
func (s *session) Close() error {
	return errors.Join(s.client.Close(), s.server.Close(), s.logger.Close())
}

func (s *session) config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *session) setConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withSession runs fn against the shell's session when cmd runs inside the
// shell, or against a fresh session closed once fn returns.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := commandContext(cmd)
	if s, ok := ctx.Value(sessionKey{}).(*session); ok {
		return s.run(ctx, cmd, fn)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", cerr)
		}
	}()
	return s.run(ctx, cmd, fn)
}

// run calls fn and logs its failure at the error's severity.
func (s *session) run(ctx context.Context, cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	err := fn(ctx, s)
	if err != nil {
		logCommandError(s.logger, cmd.CommandPath(), err)
	}
	return err
}
