package client

import (
	"context"
	"time"

	"github.com/Iron-Ham/taskclient/internal/condition"
	"github.com/Iron-Ham/taskclient/internal/errors"
	"github.com/Iron-Ham/taskclient/internal/event"
	"github.com/Iron-Ham/taskclient/internal/lifecycle"
	"github.com/Iron-Ham/taskclient/internal/logging"
)

// waitMode selects the termination predicate of a wait.
type waitMode int

const (
	waitOne waitMode = iota
	waitAny
	waitAll
)

func (m waitMode) String() string {
	switch m {
	case waitOne:
		return "one"
	case waitAny:
		return "any"
	case waitAll:
		return "all"
	}
	return "unknown"
}

// AddCondition registers a condition consulted by every subsequent wait
// until it is cleared. A wait cut short by a condition clears the set.
func (c *Client) AddCondition(cond condition.Condition) {
	c.conds.Add(cond)
}

// ClearConditions removes every registered condition.
func (c *Client) ClearConditions() {
	c.conds.Clear()
}

// Conditions returns the client's condition set.
func (c *Client) Conditions() *condition.Set {
	return c.conds
}

// Wait blocks until task id terminates successfully.
func (c *Client) Wait(ctx context.Context, id int64) error {
	_, err := c.wait(ctx, waitOne, []int64{id}, false)
	return err
}

// WaitAny blocks until at least one of ids terminates successfully and
// returns the first one that did. When several complete in the same poll,
// the one listed first wins. With stopOthers set, every id not yet
// completed is stopped before returning.
func (c *Client) WaitAny(ctx context.Context, ids []int64, stopOthers bool) (int64, error) {
	return c.wait(ctx, waitAny, ids, stopOthers)
}

// WaitAll blocks until every one of ids terminates successfully. The first
// failure ends the wait; the remaining tasks are left running.
func (c *Client) WaitAll(ctx context.Context, ids []int64) error {
	_, err := c.wait(ctx, waitAll, ids, false)
	return err
}

// wait is the polling loop shared by Wait, WaitAny and WaitAll. On every
// tick it checks the condition set first, then the status of each id not
// yet completed, then the mode's predicate.
func (c *Client) wait(ctx context.Context, mode waitMode, ids []int64, stopOthers bool) (first int64, err error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, errors.NewValidationError("no task ids to wait for").WithField("ids")
	}

	log := c.logger.WithComponent("wait").With("mode", mode.String(), "task_ids", ids)
	defer func() {
		c.bus.Publish(event.NewWaitResolvedEvent(mode.String(), ids, err))
	}()

	t0 := c.now()
	seen := make(map[int64]bool, len(ids))
	completed := make(map[int64]bool, len(ids))

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Warn("wait aborted", "cause", ctx.Err())
			return 0, errors.NewAbortedError(ctx.Err())
		case <-ticker.C:
		}

		if c.conds.AnyVerified() {
			return 0, c.terminateOnCondition(ctx, ids, log)
		}

		elapsed := c.now().Sub(t0)
		for _, id := range ids {
			if completed[id] {
				continue
			}
			rec, ok := c.store.Get(id)
			if !ok {
				if !seen[id] && elapsed > c.grace {
					log.Error("task did not appear in task status", "task_id", id, "grace", c.grace)
					return 0, errors.NewUnknownTaskError(id, c.grace)
				}
				continue
			}
			seen[id] = true

			switch {
			case rec.Code == lifecycle.Terminated:
				log.Debug("task terminated", "task_id", id)
				completed[id] = true
			case rec.Code.IsFailure():
				log.Warn("task failed", "task_id", id, "status", rec.Code.String(), "message", rec.Message)
				return 0, errors.NewTaskFailedError(id, rec.Code, rec.Message)
			}
		}

		switch mode {
		case waitOne, waitAll:
			if len(completed) == len(ids) {
				log.Info("wait complete")
				return ids[0], nil
			}
		case waitAny:
			if len(completed) == 0 {
				continue
			}
			if stopOthers {
				for _, id := range ids {
					if completed[id] {
						continue
					}
					if err := c.StopTask(ctx, id); err != nil {
						return 0, err
					}
				}
			}
			first = firstIn(ids, completed)
			log.Info("wait complete", "first", first)
			return first, nil
		}
	}
}

// terminateOnCondition stops the waited tasks, snapshots the verified
// conditions and clears the set. Stop failures are logged; the outcome is
// always a ConditionTerminatedError.
func (c *Client) terminateOnCondition(ctx context.Context, ids []int64, log *logging.Logger) error {
	for _, id := range ids {
		if err := c.StopTask(ctx, id); err != nil {
			log.Warn("failed to stop task after condition", "task_id", id, "error", err)
		}
	}
	verified := c.conds.Verified()
	c.conds.Clear()

	log.Info("tasks terminated on condition", "conditions", condition.Names(verified))
	return errors.NewConditionTerminatedError(ids, verified)
}

// firstIn returns the first id of ids marked in done.
func firstIn(ids []int64, done map[int64]bool) int64 {
	for _, id := range ids {
		if done[id] {
			return id
		}
	}
	return 0
}

// uniqueIDs removes duplicates from ids, keeping first occurrences in order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
