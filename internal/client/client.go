package client

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Iron-Ham/taskclient/internal/condition"
	"github.com/Iron-Ham/taskclient/internal/dispatch"
	"github.com/Iron-Ham/taskclient/internal/errors"
	"github.com/Iron-Ham/taskclient/internal/event"
	"github.com/Iron-Ham/taskclient/internal/lifecycle"
	"github.com/Iron-Ham/taskclient/internal/logging"
	"github.com/Iron-Ham/taskclient/internal/status"
)

// Client is the caller-side view of a remote task server.
type Client struct {
	dispatcher dispatch.Dispatcher
	store      *status.Store
	conds      *condition.Set
	bus        *event.Bus
	logger     *logging.Logger
	now        status.Clock

	pollInterval     time.Duration
	grace            time.Duration
	livenessInterval time.Duration
	defaultPeriod    time.Duration

	// live is set by StartTask and reset only by Idle.
	live atomic.Bool

	catalogMu sync.RWMutex
	catalog   map[string]*TaskDefinition

	runMu       sync.Mutex
	started     bool
	cancel      context.CancelFunc
	group       *errgroup.Group
	unsubscribe func()
}

// New creates a Client for the given dispatcher. The dispatcher must be
// non-nil. Call Start before using the client.
func New(d dispatch.Dispatcher, opts ...Option) *Client {
	if d == nil {
		panic("client: Dispatcher must not be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.bus == nil {
		cfg.bus = event.NewBus(event.WithLogger(cfg.logger))
	}

	return &Client{
		dispatcher: d,
		store:      status.NewStore(status.WithHorizon(cfg.horizon), status.WithClock(cfg.clock)),
		conds:      condition.NewSet(),
		bus:        cfg.bus,
		logger:     cfg.logger.WithComponent("client"),
		now:        cfg.clock,

		pollInterval:     cfg.pollInterval,
		grace:            cfg.grace,
		livenessInterval: cfg.livenessInterval,
		defaultPeriod:    cfg.defaultPeriod,

		catalog: make(map[string]*TaskDefinition),
	}
}

// Start subscribes to pushed status, starts the liveness emitter and seeds
// the task catalog and status store from the server. The emitter runs until
// Close is called or ctx is cancelled.
func (c *Client) Start(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.started {
		return fmt.Errorf("client: already started")
	}

	unsubscribe, err := c.dispatcher.SubscribeStatus(c.handleStatus)
	if err != nil {
		return errors.NewDispatchError("subscribe", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		c.livenessLoop(groupCtx)
		return nil
	})

	c.cancel = cancel
	c.group = group
	c.unsubscribe = unsubscribe
	c.started = true

	if err := c.RefreshTaskList(ctx); err != nil {
		c.stopLocked()
		return err
	}
	if err := c.RefreshAllStatus(ctx); err != nil {
		c.stopLocked()
		return err
	}

	c.logger.Info("client started", "tasks", len(c.Tasks()), "known_status", c.store.Len())
	return nil
}

// Close stops the liveness emitter and the status subscription. It does not
// stop remote tasks; call Idle first for that. It is safe to call multiple
// times.
func (c *Client) Close() error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if !c.started {
		return nil
	}
	return c.stopLocked()
}

func (c *Client) stopLocked() error {
	c.cancel()
	err := c.group.Wait()
	c.unsubscribe()
	c.started = false
	return err
}

// Store returns the client's status store.
func (c *Client) Store() *status.Store {
	return c.store
}

// Bus returns the bus the client publishes its events on.
func (c *Client) Bus() *event.Bus {
	return c.bus
}

// Status returns the last known status of task id.
func (c *Client) Status(id int64) (status.Record, bool) {
	return c.store.Get(id)
}

// IsKnown reports whether the store currently holds a record for id.
func (c *Client) IsKnown(id int64) bool {
	return c.store.Knows(id)
}

// IsCompleted reports whether task id is known and finished.
func (c *Client) IsCompleted(id int64) bool {
	rec, ok := c.store.Get(id)
	return ok && rec.Code.IsTerminal()
}

// Alive reports whether the liveness signal is currently being emitted.
func (c *Client) Alive() bool {
	return c.live.Load()
}

// StartTask starts an instance of the named task and returns its id.
//
// The reserved parameters are merged into a copy of params: main_task
// carries the foreground flag unless params already sets it, and
// task_period carries the period in seconds when one applies and params
// does not set it. A task_name parameter overrides name. The call is not
// retried on failure.
func (c *Client) StartTask(ctx context.Context, name string, params dispatch.Params, opts ...StartOption) (int64, error) {
	sc := startConfig{foreground: true}
	for _, opt := range opts {
		opt(&sc)
	}

	p := params.Clone()
	if v, ok := p[dispatch.ParamTaskName]; ok {
		name = fmt.Sprint(v)
		delete(p, dispatch.ParamTaskName)
	}
	if name == "" {
		return 0, errors.NewValidationError("task name is required").WithField("name")
	}

	if v, ok := p[dispatch.ParamMainTask]; ok {
		p[dispatch.ParamMainTask] = truthy(v)
	} else {
		p[dispatch.ParamMainTask] = sc.foreground
	}

	period := sc.period
	if period <= 0 {
		period = c.defaultPeriod
	}
	if _, ok := p[dispatch.ParamTaskPeriod]; period > 0 && !ok {
		p[dispatch.ParamTaskPeriod] = period.Seconds()
	}

	payload, err := dispatch.EncodeConfig(p)
	if err != nil {
		return 0, errors.NewDispatchError("start", err).WithTaskName(name).WithRetryable(false)
	}

	id, err := c.dispatcher.StartTask(ctx, name, payload)
	if err != nil {
		c.logger.Error("start task failed", "task", name, "error", err)
		return 0, errors.NewDispatchError("start", err).WithTaskName(name)
	}

	c.live.Store(true)
	foreground, _ := p.Bool(dispatch.ParamMainTask)
	c.logger.WithTask(id).Info("task started", "task", name, "foreground", foreground)
	c.bus.Publish(event.NewTaskStartedEvent(id, name, foreground))
	return id, nil
}

// truthy coerces a user-supplied main_task value to a bool. Strings are
// read as booleans ("false", "No", "off", "0" are false); any other
// non-empty string is true. Other values are true unless they are the zero
// value of their type or an empty collection.
func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		s := strings.ToLower(strings.TrimSpace(b))
		switch s {
		case "", "no", "n", "off":
			return false
		case "yes", "y", "on":
			return true
		}
		if parsed, err := strconv.ParseBool(s); err == nil {
			return parsed
		}
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	}
	return !rv.IsZero()
}

// StartTaskAndWait starts the named task and waits for it to finish.
func (c *Client) StartTaskAndWait(ctx context.Context, name string, params dispatch.Params, opts ...StartOption) (int64, error) {
	id, err := c.StartTask(ctx, name, params, opts...)
	if err != nil {
		return 0, err
	}
	c.logger.WithTask(id).Debug("waiting for task")
	return id, c.Wait(ctx, id)
}

// StopTask asks the server to stop task id. The call is not retried on
// failure.
func (c *Client) StopTask(ctx context.Context, id int64) error {
	if err := c.dispatcher.StopTask(ctx, id); err != nil {
		c.logger.Error("stop task failed", "task_id", id, "error", err)
		return errors.NewDispatchError("stop", err).WithTaskID(id)
	}
	c.logger.WithTask(id).Debug("task stop requested")
	c.bus.Publish(event.NewTaskStoppedEvent(id))
	return nil
}

// StopAll asks the server to stop every active task and silences the
// liveness signal until the next StartTask. The signal is silenced even
// when the stop call fails.
func (c *Client) StopAll(ctx context.Context) error {
	err := c.StopTask(ctx, dispatch.StopAllID)
	c.live.Store(false)
	return err
}

// Idle puts the server back to its idle state. It is StopAll.
func (c *Client) Idle(ctx context.Context) error {
	return c.StopAll(ctx)
}

// RefreshAllStatus merges the server's running and recently finished tasks
// into the status store.
func (c *Client) RefreshAllStatus(ctx context.Context) error {
	running, zombies, err := c.dispatcher.QueryAllStatus(ctx)
	if err != nil {
		c.logger.Error("status query failed", "error", err)
		return errors.NewDispatchError("status", err)
	}

	recs := make([]status.Record, 0, len(running)+len(zombies))
	for _, msg := range running {
		recs = append(recs, c.toRecord(msg))
	}
	for _, msg := range zombies {
		recs = append(recs, c.toRecord(msg))
	}

	evicted := c.store.UpsertAll(recs)
	for _, rec := range recs {
		c.bus.Publish(event.NewTaskStatusEvent(rec))
	}
	c.publishEvicted(evicted)
	return nil
}

// handleStatus ingests one pushed status message.
func (c *Client) handleStatus(msg dispatch.StatusMessage) {
	rec := c.toRecord(msg)
	evicted := c.store.Upsert(rec)

	c.logger.WithTask(rec.ID).Debug("status received",
		"task", rec.Name, "status", rec.Code.String(), "message", rec.Message)
	c.bus.Publish(event.NewTaskStatusEvent(rec))
	c.publishEvicted(evicted)
}

func (c *Client) publishEvicted(ids []int64) {
	if len(ids) == 0 {
		return
	}
	c.logger.Debug("evicted stale task status", "task_ids", ids)
	c.bus.Publish(event.NewTaskEvictedEvent(ids))
}

func (c *Client) toRecord(msg dispatch.StatusMessage) status.Record {
	code, foreground := lifecycle.DecodeWord(msg.StatusWord)
	updated := msg.Time
	if updated.IsZero() {
		updated = c.now()
	}
	return status.Record{
		ID:         msg.ID,
		Name:       msg.Name,
		Code:       code,
		Foreground: foreground,
		Message:    msg.Message,
		Updated:    updated,
	}
}

// livenessLoop emits the liveness signal every interval while the live flag
// is set. Emission failures are logged and otherwise ignored.
func (c *Client) livenessLoop(ctx context.Context) {
	ticker := time.NewTicker(c.livenessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !c.live.Load() {
			continue
		}
		if err := c.dispatcher.EmitLiveness(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn("liveness emission failed", "error", err)
		}
	}
}
