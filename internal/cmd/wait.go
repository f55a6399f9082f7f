package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Iron-Ham/taskclient/internal/client"
	"github.com/Iron-Ham/taskclient/internal/condition"
	"github.com/Iron-Ham/taskclient/internal/dispatch"
	"github.com/Iron-Ham/taskclient/internal/errors"
	"github.com/spf13/cobra"
)

func newWaitCmd() *cobra.Command {
	var (
		waitAny    bool
		stopOthers bool
		until      []string
	)

	cmd := &cobra.Command{
		Use:   "wait <target>...",
		Short: "Wait for tasks to finish",
		Long: `Block until every target (or, with --any, the first target) reaches a
terminal status.

A target is either a task id or a task to start in the background, written
as name[:key=value,...], e.g. "Wait:task_duration=2".

--until adds a condition: once the given target has finished, every waited
task is stopped and the wait ends early. The flag may be repeated.`,
		Example: `  taskclient wait Wait:task_duration=1 Wait:task_duration=2
  taskclient wait --any --stop-others Idle Wait:task_duration=0.5
  taskclient wait --until Wait:task_duration=1 Idle`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stopOthers && !waitAny {
				return fmt.Errorf("--stop-others requires --any")
			}

			return withSession(cmd, func(ctx context.Context, s *session) error {
				ids, err := resolveTargets(ctx, s, args)
				if err != nil {
					return err
				}
				watched, err := resolveTargets(ctx, s, until)
				if err != nil {
					return err
				}
				if len(watched) > 0 {
					// Conditions outlive a failed wait; don't leak them into the next shell line.
					defer s.client.ClearConditions()
				}
				for _, id := range watched {
					s.client.AddCondition(condition.IsTerminal(s.client.Store(), id))
				}

				out := cmd.OutOrStdout()
				styled := isTerminal(out)

				if waitAny {
					first, err := s.client.WaitAny(ctx, ids, stopOthers)
					if err == nil {
						fmt.Fprintf(out, "task %d finished first\n", first)
					}
					reportWait(cmd, s, ids, err, styled)
					return err
				}

				err = s.client.WaitAll(ctx, ids)
				reportWait(cmd, s, ids, err, styled)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&waitAny, "any", false, "Return as soon as one task has finished")
	cmd.Flags().BoolVar(&stopOthers, "stop-others", false, "With --any, stop the tasks still running")
	cmd.Flags().StringSliceVar(&until, "until", nil, "End the wait once this target has finished")
	return cmd
}

// reportWait prints the status of the waited tasks and explains a
// condition-triggered termination.
func reportWait(cmd *cobra.Command, s *session, ids []int64, err error, styled bool) {
	out := cmd.OutOrStdout()
	for _, id := range ids {
		if rec, ok := s.client.Status(id); ok {
			printRecord(out, rec, styled)
		}
	}

	var ct *errors.ConditionTerminatedError
	if errors.As(err, &ct) {
		fmt.Fprintf(out, "wait ended by: %s\n", strings.Join(ct.ConditionNames(), ", "))
	}
}

// resolveTargets turns each target into a task id, starting named tasks in
// the background.
func resolveTargets(ctx context.Context, s *session, targets []string) ([]int64, error) {
	ids := make([]int64, 0, len(targets))
	for _, target := range targets {
		if id, err := strconv.ParseInt(target, 10, 64); err == nil {
			ids = append(ids, id)
			continue
		}

		name, params, err := parseTarget(target)
		if err != nil {
			return nil, err
		}
		if _, err := s.client.Task(name); err != nil {
			return nil, err
		}
		opts := []client.StartOption{client.WithForeground(false)}
		if period := s.config().Client.DefaultPeriod(); period > 0 {
			opts = append(opts, client.WithPeriod(period))
		}
		id, err := s.client.StartTask(ctx, name, params, opts...)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseTarget splits "name:key=value,key=value" into a task name and its
// parameters.
func parseTarget(target string) (string, dispatch.Params, error) {
	name, rest, _ := strings.Cut(target, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("invalid target %q: missing task name", target)
	}
	if strings.TrimSpace(rest) == "" {
		return name, dispatch.Params{}, nil
	}
	params, err := dispatch.ParseAssignments(strings.Split(rest, ","))
	if err != nil {
		return "", nil, errors.Wrapf(err, "invalid target %q", target)
	}
	return name, params, nil
}
