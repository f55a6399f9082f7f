package condition

import (
	"reflect"
	"testing"
)

func constant(name string, v bool) Condition {
	return Func(name, func() bool { return v })
}

func TestSet_Empty(t *testing.T) {
	s := NewSet()

	if s.AnyVerified() {
		t.Error("AnyVerified() on empty set should be false")
	}
	if s.AllVerified() {
		t.Error("AllVerified() on empty set should be false")
	}
	if got := s.Verified(); len(got) != 0 {
		t.Errorf("Verified() = %v, want empty", got)
	}
}

func TestSet_Evaluation(t *testing.T) {
	tests := []struct {
		name     string
		conds    []Condition
		wantAny  bool
		wantAll  bool
		verified []string
	}{
		{
			name:     "all true",
			conds:    []Condition{constant("a", true), constant("b", true)},
			wantAny:  true,
			wantAll:  true,
			verified: []string{"a", "b"},
		},
		{
			name:     "mixed keeps insertion order",
			conds:    []Condition{constant("a", false), constant("b", true), constant("c", true)},
			wantAny:  true,
			wantAll:  false,
			verified: []string{"b", "c"},
		},
		{
			name:     "all false",
			conds:    []Condition{constant("a", false)},
			wantAny:  false,
			wantAll:  false,
			verified: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSet()
			for _, c := range tt.conds {
				s.Add(c)
			}
			if got := s.AnyVerified(); got != tt.wantAny {
				t.Errorf("AnyVerified() = %v, want %v", got, tt.wantAny)
			}
			if got := s.AllVerified(); got != tt.wantAll {
				t.Errorf("AllVerified() = %v, want %v", got, tt.wantAll)
			}
			if got := Names(s.Verified()); !reflect.DeepEqual(got, tt.verified) {
				t.Errorf("Verified() = %v, want %v", got, tt.verified)
			}
		})
	}
}

func TestSet_Clear(t *testing.T) {
	s := NewSet()
	s.Add(constant("a", true))
	s.Add(constant("b", true))

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d", s.Len())
	}
	if s.AnyVerified() {
		t.Error("AnyVerified() after Clear should be false")
	}
}
