package sim

import (
	"context"
	"sync"
)

// slots limits how many task instances may be active at once.
//
// A limit of 0 means unlimited and acquire always succeeds immediately.
// Waiters are woken through a sync.Cond when a slot frees up or their
// context is cancelled.
type slots struct {
	mu     sync.Mutex
	cond   *sync.Cond
	limit  int // 0 = unlimited
	active int
}

// newSlots creates a limiter. Negative limits are clamped to 0.
func newSlots(limit int) *slots {
	if limit < 0 {
		limit = 0
	}
	s := &slots{limit: limit}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// acquire blocks until a slot is available or ctx is cancelled.
func (s *slots) acquire(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limit == 0 {
		s.active++
		return nil
	}

	// Broadcast on cancellation so a blocked waiter can observe ctx.Err.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.cond.Broadcast()
			s.mu.Unlock()
		case <-done:
		}
	}()

	for s.active >= s.limit {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.cond.Wait()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.active++
	return nil
}

// release frees a slot and wakes one waiter.
func (s *slots) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active > 0 {
		s.active--
	}
	s.cond.Signal()
}

// inUse returns the number of occupied slots.
func (s *slots) inUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
