// Package condition provides caller-defined predicates that can cut a wait
// short independently of the waited task's own status.
//
// Conditions are stateless: every call to Verify re-evaluates against the
// current status source. They hold the source for lookup only and never
// mutate it.
package condition

import (
	"fmt"

	"github.com/Iron-Ham/taskclient/internal/status"
)

// Condition is a named boolean predicate.
type Condition interface {
	Name() string
	Verify() bool
}

// Source is the read-only status lookup conditions evaluate against.
// *status.Store satisfies it.
type Source interface {
	Get(id int64) (status.Record, bool)
}

type negated struct {
	inner Condition
}

// Negated returns a condition verified exactly when inner is not.
func Negated(inner Condition) Condition {
	return negated{inner: inner}
}

func (n negated) Name() string { return "not " + n.inner.Name() }
func (n negated) Verify() bool { return !n.inner.Verify() }
func (n negated) String() string {
	return n.Name()
}

type taskCondition struct {
	name    string
	source  Source
	taskID  int64
	checkFn func(rec status.Record) bool
}

func (c taskCondition) Name() string   { return c.name }
func (c taskCondition) String() string { return c.name }

func (c taskCondition) Verify() bool {
	rec, ok := c.source.Get(c.taskID)
	if !ok {
		return false
	}
	return c.checkFn(rec)
}

// IsTerminal is verified once the task is known and has reached or passed
// the terminated status. An unknown task is never terminal.
func IsTerminal(source Source, taskID int64) Condition {
	return taskCondition{
		name:    fmt.Sprintf("task %d terminal", taskID),
		source:  source,
		taskID:  taskID,
		checkFn: func(rec status.Record) bool { return rec.Code.IsTerminal() },
	}
}

// IsRunning is verified while the task is known and not yet terminal. An
// unknown task is not running.
func IsRunning(source Source, taskID int64) Condition {
	return taskCondition{
		name:    fmt.Sprintf("task %d running", taskID),
		source:  source,
		taskID:  taskID,
		checkFn: func(rec status.Record) bool { return !rec.Code.IsTerminal() },
	}
}

// Named overrides the name reported by c.
func Named(name string, c Condition) Condition {
	return renamed{name: name, Condition: c}
}

type renamed struct {
	Condition
	name string
}

func (r renamed) Name() string   { return r.name }
func (r renamed) String() string { return r.name }

// Func adapts an arbitrary predicate, for conditions on state outside the
// task server (sensor thresholds, operator input, ...).
func Func(name string, fn func() bool) Condition {
	return funcCondition{name: name, fn: fn}
}

type funcCondition struct {
	name string
	fn   func() bool
}

func (f funcCondition) Name() string   { return f.name }
func (f funcCondition) Verify() bool   { return f.fn() }
func (f funcCondition) String() string { return f.name }
