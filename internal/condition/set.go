package condition

import "sync"

// Set is an ordered collection of conditions consulted by every wait.
//
// The set is owned by the caller: add conditions before a wait and let the
// wait clear them. It is guarded by a mutex so concurrent misuse cannot
// corrupt it, but mutating it during an in-flight wait changes what that
// wait observes.
type Set struct {
	mu    sync.Mutex
	conds []Condition
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{}
}

// Add appends c to the set.
func (s *Set) Add(c Condition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conds = append(s.conds, c)
}

// Clear removes every condition.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conds = nil
}

// Len returns the number of conditions in the set.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conds)
}

func (s *Set) snapshot() []Condition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Condition, len(s.conds))
	copy(out, s.conds)
	return out
}

// AnyVerified reports whether at least one condition holds. An empty set
// yields false.
func (s *Set) AnyVerified() bool {
	for _, c := range s.snapshot() {
		if c.Verify() {
			return true
		}
	}
	return false
}

// AllVerified reports whether every condition holds. An empty set yields
// false, not the vacuous true.
func (s *Set) AllVerified() bool {
	conds := s.snapshot()
	if len(conds) == 0 {
		return false
	}
	for _, c := range conds {
		if !c.Verify() {
			return false
		}
	}
	return true
}

// Verified returns the conditions that currently hold, in insertion order.
func (s *Set) Verified() []Condition {
	var out []Condition
	for _, c := range s.snapshot() {
		if c.Verify() {
			out = append(out, c)
		}
	}
	return out
}

// Names returns the names of conds, for logging and error messages.
func Names(conds []Condition) []string {
	names := make([]string, len(conds))
	for i, c := range conds {
		names[i] = c.Name()
	}
	return names
}
