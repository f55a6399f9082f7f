package sim

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Iron-Ham/taskclient/internal/dispatch"
	"github.com/Iron-Ham/taskclient/internal/errors"
	"github.com/Iron-Ham/taskclient/internal/lifecycle"
	"github.com/Iron-Ham/taskclient/internal/logging"
)

// instance is one started task.
type instance struct {
	id         int64
	name       string
	foreground bool
	status     lifecycle.Status
	message    string
	updated    time.Time
	cancel     context.CancelFunc
	stopped    bool // stop requested by a client or the watchdog
}

func (i *instance) statusMessage() dispatch.StatusMessage {
	return dispatch.StatusMessage{
		ID:         i.id,
		Name:       i.name,
		StatusWord: lifecycle.EncodeWord(i.status, i.foreground),
		Message:    i.message,
		Time:       i.updated,
	}
}

// Server is a simulated task server. It is safe for concurrent use.
type Server struct {
	catalog          []TaskSpec
	keepAliveTimeout time.Duration
	statusInterval   time.Duration
	zombieTTL        time.Duration
	slots            *slots
	logger           *logging.Logger

	// pubMu orders status delivery: state changes and their publication
	// happen under it, so subscribers never see a stale status after a
	// newer one.
	pubMu sync.Mutex

	mu           sync.Mutex
	nextID       int64
	active       map[int64]*instance
	zombies      map[int64]*instance
	foreground   int64 // id of the current main task, 0 if none
	lastLiveness time.Time
	subs         map[int]dispatch.StatusHandler
	nextSub      int

	runMu   sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	group   *errgroup.Group
}

var _ dispatch.Dispatcher = (*Server)(nil)

// NewServer creates a simulated server with the built-in tasks plus any
// supplied through WithTasks.
func NewServer(opts ...Option) *Server {
	cfg := &config{
		keepAliveTimeout: DefaultKeepAliveTimeout,
		statusInterval:   DefaultStatusInterval,
		zombieTTL:        DefaultZombieTTL,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NopLogger()
	}

	catalog := BuiltinTasks()
	for _, spec := range cfg.tasks {
		if i := slices.IndexFunc(catalog, func(t TaskSpec) bool { return t.Name == spec.Name }); i >= 0 {
			catalog[i] = spec
			continue
		}
		catalog = append(catalog, spec)
	}

	return &Server{
		catalog:          catalog,
		keepAliveTimeout: cfg.keepAliveTimeout,
		statusInterval:   cfg.statusInterval,
		zombieTTL:        cfg.zombieTTL,
		slots:            newSlots(cfg.maxConcurrent),
		logger:           cfg.logger.WithComponent("sim"),
		nextID:           1,
		active:           make(map[int64]*instance),
		zombies:          make(map[int64]*instance),
		subs:             make(map[int]dispatch.StatusHandler),
	}
}

// Start launches the keep-alive watchdog and the status publisher.
func (s *Server) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.started {
		return fmt.Errorf("sim: already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)
	s.ctx = groupCtx
	s.cancel = cancel
	s.group = group
	s.started = true

	group.Go(func() error {
		s.publishLoop(groupCtx)
		return nil
	})
	if s.keepAliveTimeout > 0 {
		group.Go(func() error {
			s.watchdogLoop(groupCtx)
			return nil
		})
	}

	s.logger.Info("simulated task server started", "tasks", len(s.catalog))
	return nil
}

// Close interrupts every active task and waits for all goroutines. It is
// safe to call multiple times.
func (s *Server) Close() error {
	s.runMu.Lock()
	if !s.started {
		s.runMu.Unlock()
		return nil
	}
	s.started = false
	s.cancel()
	group := s.group
	s.runMu.Unlock()

	return group.Wait()
}

// ListTaskDefinitions returns the catalog in registration order.
func (s *Server) ListTaskDefinitions(_ context.Context) ([]dispatch.Definition, error) {
	defs := make([]dispatch.Definition, len(s.catalog))
	for i, spec := range s.catalog {
		defs[i] = dispatch.Definition{Name: spec.Name, Description: spec.Description}
	}
	return defs, nil
}

func (s *Server) lookup(name string) (TaskSpec, bool) {
	i := slices.IndexFunc(s.catalog, func(t TaskSpec) bool { return t.Name == name })
	if i < 0 {
		return TaskSpec{}, false
	}
	return s.catalog[i], true
}

// StartTask starts an instance of the named task. A foreground instance
// interrupts the previous foreground instance. A payload that cannot be
// decoded yields an instance that ends in TASK_CONFIGURATION_FAILED.
func (s *Server) StartTask(ctx context.Context, name string, config []byte) (int64, error) {
	spec, ok := s.lookup(name)
	if !ok {
		return 0, errors.NewNotFoundError("task definition", name)
	}

	if err := s.slots.acquire(ctx); err != nil {
		return 0, fmt.Errorf("waiting for a task slot: %w", err)
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()
	if !s.started {
		s.slots.release()
		return 0, fmt.Errorf("sim: server not started")
	}

	params, decodeErr := dispatch.DecodeConfig(config)
	foreground, _ := params.Bool(dispatch.ParamMainTask)

	runCtx, cancel := context.WithCancel(s.ctx)
	if timeout := secondsParam(params, ParamTimeout, 0); timeout > 0 {
		cancel()
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	}

	s.pubMu.Lock()
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	inst := &instance{
		id:         id,
		name:       name,
		foreground: foreground,
		status:     lifecycle.Newborn,
		updated:    time.Now(),
		cancel:     cancel,
	}
	if foreground {
		if prev, ok := s.active[s.foreground]; ok {
			prev.stopped = true
			prev.cancel()
			s.logger.Info("foreground task replaced", "task_id", prev.id, "by", id)
		}
		s.foreground = id
	}
	s.active[id] = inst
	s.lastLiveness = time.Now()
	first := inst.statusMessage()
	s.mu.Unlock()
	s.deliver(first)
	s.pubMu.Unlock()

	s.logger.WithTask(id).Info("task started", "task", name, "foreground", foreground)

	if decodeErr != nil {
		cancel()
		s.finish(inst, lifecycle.ConfigurationFailed, decodeErr.Error())
		s.slots.release()
		return id, nil
	}

	s.group.Go(func() error {
		defer s.slots.release()
		defer cancel()
		s.run(runCtx, inst, spec, params)
		return nil
	})
	return id, nil
}

// run drives inst through its lifecycle.
func (s *Server) run(ctx context.Context, inst *instance, spec TaskSpec, params dispatch.Params) {
	s.transition(inst, lifecycle.Configured, "configured")
	s.transition(inst, lifecycle.Initialised, "initialised")
	s.transition(inst, lifecycle.Running, "running")

	st, msg := spec.Run(ctx, params, func(m string) {
		s.transition(inst, lifecycle.Running, m)
	})

	if err := ctx.Err(); err != nil {
		s.mu.Lock()
		stopped := inst.stopped
		s.mu.Unlock()

		switch {
		case stopped:
			st, msg = lifecycle.Interrupted, "stopped"
		case errors.Is(err, context.DeadlineExceeded):
			st, msg = lifecycle.Timeout, "task_timeout expired"
		default:
			st, msg = lifecycle.Interrupted, "server shutting down"
		}
	}
	s.finish(inst, st, msg)
}

func (s *Server) transition(inst *instance, st lifecycle.Status, message string) {
	s.publish(func() []dispatch.StatusMessage {
		inst.status = st
		inst.message = message
		inst.updated = time.Now()
		return []dispatch.StatusMessage{inst.statusMessage()}
	})
}

// finish records the final status and moves inst to the zombie list.
func (s *Server) finish(inst *instance, st lifecycle.Status, message string) {
	s.publish(func() []dispatch.StatusMessage {
		inst.status = st
		inst.message = message
		inst.updated = time.Now()
		delete(s.active, inst.id)
		s.zombies[inst.id] = inst
		if s.foreground == inst.id {
			s.foreground = 0
		}
		return []dispatch.StatusMessage{inst.statusMessage()}
	})
	s.logger.WithTask(inst.id).Info("task finished", "task", inst.name, "status", st.String(), "message", message)
}

// StopTask interrupts task id, or every active task for StopAllID.
// Stopping a task that already finished is a no-op.
func (s *Server) StopTask(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == dispatch.StopAllID {
		for _, inst := range s.active {
			inst.stopped = true
			inst.cancel()
		}
		s.logger.Info("stopping all tasks", "count", len(s.active))
		return nil
	}

	if inst, ok := s.active[id]; ok {
		inst.stopped = true
		inst.cancel()
		s.logger.WithTask(id).Info("stopping task")
		return nil
	}
	if _, ok := s.zombies[id]; ok {
		return nil
	}
	return errors.NewNotFoundError("task", fmt.Sprint(id))
}

// QueryAllStatus returns active and recently finished instances, each
// sorted by id. Zombies older than the zombie TTL are dropped.
func (s *Server) QueryAllStatus(_ context.Context) ([]dispatch.StatusMessage, []dispatch.StatusMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	running := make([]dispatch.StatusMessage, 0, len(s.active))
	for _, inst := range s.active {
		running = append(running, inst.statusMessage())
	}
	zombies := make([]dispatch.StatusMessage, 0, len(s.zombies))
	for id, inst := range s.zombies {
		if now.Sub(inst.updated) > s.zombieTTL {
			delete(s.zombies, id)
			continue
		}
		zombies = append(zombies, inst.statusMessage())
	}

	byID := func(a, b dispatch.StatusMessage) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	}
	slices.SortFunc(running, byID)
	slices.SortFunc(zombies, byID)
	return running, zombies, nil
}

// SubscribeStatus registers handler for every status transition and for
// the periodic re-publication of active tasks.
func (s *Server) SubscribeStatus(handler dispatch.StatusHandler) (func(), error) {
	if handler == nil {
		return nil, errors.NewValidationError("status handler must not be nil")
	}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = handler
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}, nil
}

// EmitLiveness records a keep-alive from the client.
func (s *Server) EmitLiveness(_ context.Context) error {
	s.mu.Lock()
	s.lastLiveness = time.Now()
	s.mu.Unlock()
	return nil
}

// Active returns the number of running instances.
func (s *Server) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// publish applies change under the state lock and delivers the messages it
// returns to every subscriber.
func (s *Server) publish(change func() []dispatch.StatusMessage) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	msgs := change()
	s.mu.Unlock()

	s.deliver(msgs...)
}

// deliver hands msgs to the subscribers. The caller holds pubMu.
func (s *Server) deliver(msgs ...dispatch.StatusMessage) {
	s.mu.Lock()
	handlers := make([]dispatch.StatusHandler, 0, len(s.subs))
	for _, h := range s.subs {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, msg := range msgs {
		for _, h := range handlers {
			h(msg)
		}
	}
}

// publishLoop re-publishes the status of every active instance so that
// subscribers keep them fresh.
func (s *Server) publishLoop(ctx context.Context) {
	ticker := time.NewTicker(s.statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.publish(func() []dispatch.StatusMessage {
			now := time.Now()
			msgs := make([]dispatch.StatusMessage, 0, len(s.active))
			for _, inst := range s.active {
				inst.updated = now
				msgs = append(msgs, inst.statusMessage())
			}
			return msgs
		})
	}
}

// watchdogLoop stops every active task when no liveness signal arrived
// within the keep-alive timeout.
func (s *Server) watchdogLoop(ctx context.Context) {
	interval := max(s.keepAliveTimeout/4, 10*time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		silent := time.Since(s.lastLiveness)
		if len(s.active) == 0 || silent <= s.keepAliveTimeout {
			s.mu.Unlock()
			continue
		}
		for _, inst := range s.active {
			inst.stopped = true
			inst.cancel()
		}
		count := len(s.active)
		s.lastLiveness = time.Now()
		s.mu.Unlock()

		s.logger.Warn("keep-alive lost, stopping all tasks", "silent_for", silent, "count", count)
	}
}
