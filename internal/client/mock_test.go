package client

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Iron-Ham/taskclient/internal/dispatch"
	"github.com/Iron-Ham/taskclient/internal/lifecycle"
)

type startCall struct {
	name   string
	config []byte
}

// fakeDispatcher is a scripted in-memory Dispatcher.
type fakeDispatcher struct {
	mu      sync.Mutex
	defs    []dispatch.Definition
	nextID  int64
	running []dispatch.StatusMessage
	zombies []dispatch.StatusMessage
	handler dispatch.StatusHandler

	listErr  error
	startErr error
	stopErr  error
	queryErr error
	subErr   error

	// onStart runs after a successful start, outside the lock.
	onStart func(id int64, name string)

	started      []startCall
	stopped      []int64
	unsubscribed bool
	liveness     atomic.Int64
}

func newFakeDispatcher(defs ...dispatch.Definition) *fakeDispatcher {
	return &fakeDispatcher{defs: defs, nextID: 1}
}

func (f *fakeDispatcher) ListTaskDefinitions(_ context.Context) ([]dispatch.Definition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]dispatch.Definition(nil), f.defs...), nil
}

func (f *fakeDispatcher) StartTask(_ context.Context, name string, config []byte) (int64, error) {
	f.mu.Lock()
	if f.startErr != nil {
		f.mu.Unlock()
		return 0, f.startErr
	}
	id := f.nextID
	f.nextID++
	f.started = append(f.started, startCall{name: name, config: config})
	hook := f.onStart
	f.mu.Unlock()

	if hook != nil {
		hook(id, name)
	}
	return id, nil
}

func (f *fakeDispatcher) StopTask(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopErr != nil {
		return f.stopErr
	}
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeDispatcher) QueryAllStatus(_ context.Context) ([]dispatch.StatusMessage, []dispatch.StatusMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, nil, f.queryErr
	}
	return f.running, f.zombies, nil
}

func (f *fakeDispatcher) SubscribeStatus(handler dispatch.StatusHandler) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.handler = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.handler = nil
		f.unsubscribed = true
	}, nil
}

func (f *fakeDispatcher) EmitLiveness(_ context.Context) error {
	f.liveness.Add(1)
	return nil
}

// push delivers a status message through the subscription. A zero time
// lets the client stamp the record with its own clock.
func (f *fakeDispatcher) push(id int64, name string, st lifecycle.Status, at time.Time) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h == nil {
		return
	}
	h(dispatch.StatusMessage{
		ID:         id,
		Name:       name,
		StatusWord: lifecycle.EncodeWord(st, true),
		Message:    st.String(),
		Time:       at,
	})
}

func (f *fakeDispatcher) stops() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.stopped...)
}

func (f *fakeDispatcher) starts() []startCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]startCall(nil), f.started...)
}

func (f *fakeDispatcher) isSubscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler != nil
}

// newTestClient starts a client with fast polling and closes it when the
// test ends.
func newTestClient(t *testing.T, f *fakeDispatcher, opts ...Option) *Client {
	t.Helper()

	base := []Option{
		WithPollInterval(2 * time.Millisecond),
		WithGracePeriod(200 * time.Millisecond),
		WithLivenessInterval(5 * time.Millisecond),
	}
	c := New(f, append(base, opts...)...)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}
