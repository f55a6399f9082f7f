package condition

import (
	"testing"
	"time"

	"github.com/Iron-Ham/taskclient/internal/lifecycle"
	"github.com/Iron-Ham/taskclient/internal/status"
)

func storeWith(recs ...status.Record) *status.Store {
	s := status.NewStore()
	for _, r := range recs {
		r.Updated = time.Now()
		s.Upsert(r)
	}
	return s
}

func TestTaskConditions(t *testing.T) {
	tests := []struct {
		name         string
		recs         []status.Record
		wantTerminal bool
		wantRunning  bool
	}{
		{"unknown task", nil, false, false},
		{"newborn", []status.Record{{ID: 1, Code: lifecycle.Newborn}}, false, true},
		{"running", []status.Record{{ID: 1, Code: lifecycle.Running}}, false, true},
		{"completed is not terminal", []status.Record{{ID: 1, Code: lifecycle.Completed}}, false, true},
		{"terminated", []status.Record{{ID: 1, Code: lifecycle.Terminated}}, true, false},
		{"failed", []status.Record{{ID: 1, Code: lifecycle.Failed}}, true, false},
		{"other task only", []status.Record{{ID: 2, Code: lifecycle.Running}}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storeWith(tt.recs...)
			if got := IsTerminal(s, 1).Verify(); got != tt.wantTerminal {
				t.Errorf("IsTerminal.Verify() = %v, want %v", got, tt.wantTerminal)
			}
			if got := IsRunning(s, 1).Verify(); got != tt.wantRunning {
				t.Errorf("IsRunning.Verify() = %v, want %v", got, tt.wantRunning)
			}
		})
	}
}

func TestConditionsAreReevaluated(t *testing.T) {
	s := storeWith(status.Record{ID: 4, Code: lifecycle.Running})
	c := IsTerminal(s, 4)

	if c.Verify() {
		t.Fatal("running task should not be terminal")
	}
	s.Upsert(status.Record{ID: 4, Code: lifecycle.Terminated, Updated: time.Now()})
	if !c.Verify() {
		t.Error("condition should observe the new status without being rebuilt")
	}
}

func TestNegated(t *testing.T) {
	s := storeWith()
	c := Negated(IsRunning(s, 9))

	if c.Name() != "not task 9 running" {
		t.Errorf("Name() = %q", c.Name())
	}
	// Unknown task is not running, so the negation holds.
	if !c.Verify() {
		t.Error("negation of a false condition should be verified")
	}

	if !Negated(Negated(Func("x", func() bool { return true }))).Verify() {
		t.Error("double negation should restore the original value")
	}
}

func TestFuncAndNamed(t *testing.T) {
	flag := false
	c := Func("battery low", func() bool { return flag })
	if c.Verify() {
		t.Error("Func condition should follow its predicate")
	}
	flag = true
	if !c.Verify() {
		t.Error("Func condition should re-evaluate its predicate")
	}

	n := Named("obstacle", c)
	if n.Name() != "obstacle" || !n.Verify() {
		t.Errorf("Named() = (%q, %v)", n.Name(), n.Verify())
	}
}
