// Package status holds the client's view of remote task status.
//
// The [Store] maps task ids to the most recently observed [Record]. It is
// fed by pushed status updates and by bulk status queries, and it bounds its
// own memory: every [Store.Upsert] evicts every record older than the
// freshness horizon. There is no background sweep.
package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Iron-Ham/taskclient/internal/lifecycle"
)

// DefaultHorizon is how long a record survives without an update.
const DefaultHorizon = 10 * time.Second

// Record is the last known status of one remote task instance.
type Record struct {
	ID         int64
	Name       string
	Code       lifecycle.Status
	Foreground bool
	Message    string
	Updated    time.Time
}

// String renders the record as "<unix time> <name> F|B <STATUS>:<message>".
func (r Record) String() string {
	mode := "B"
	if r.Foreground {
		mode = "F"
	}
	secs := float64(r.Updated.UnixNano()) / float64(time.Second)
	return fmt.Sprintf("%f %-12s %s %s:%s", secs, r.Name, mode, r.Code, r.Message)
}

// Clock returns the current time. Tests substitute a controllable clock.
type Clock func() time.Time

// Option configures a Store.
type Option func(*Store)

// WithHorizon sets the freshness horizon. Non-positive values are ignored.
func WithHorizon(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.horizon = d
		}
	}
}

// WithClock sets the clock used for eviction.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.now = c
		}
	}
}

// Store is a concurrency-safe map from task id to its latest Record.
type Store struct {
	mu      sync.RWMutex
	records map[int64]Record
	horizon time.Duration
	now     Clock
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		records: make(map[int64]Record),
		horizon: DefaultHorizon,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert stores rec under rec.ID, replacing any previous record wholesale,
// then evicts every stale record in the store. It returns the ids evicted,
// sorted ascending. The upserted record itself is evicted too if its own
// timestamp is already past the horizon.
func (s *Store) Upsert(rec Record) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = rec
	return s.evictLocked()
}

// UpsertAll stores every record and evicts once afterwards.
func (s *Store) UpsertAll(recs []Record) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		s.records[rec.ID] = rec
	}
	return s.evictLocked()
}

func (s *Store) evictLocked() []int64 {
	now := s.now()
	var evicted []int64
	for id, rec := range s.records {
		if now.Sub(rec.Updated) > s.horizon {
			delete(s.records, id)
			evicted = append(evicted, id)
		}
	}
	slices.Sort(evicted)
	return evicted
}

// Get returns the current record for id.
func (s *Store) Get(id int64) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	return rec, ok
}

// Knows reports whether a record for id is present.
func (s *Store) Knows(id int64) bool {
	_, ok := s.Get(id)
	return ok
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Snapshot returns a copy of every record, sorted by id.
func (s *Store) Snapshot() []Record {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Record) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Horizon returns the configured freshness horizon.
func (s *Store) Horizon() time.Duration {
	return s.horizon
}
