package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <id>... | all",
		Short: "Stop tasks",
		Long: `Ask the server to stop the given task instances, or every task with "all".
Stopping a task that already finished is not an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all := len(args) == 1 && args[0] == "all"
			var ids []int64
			if !all {
				var err error
				if ids, err = parseIDs(args); err != nil {
					return err
				}
			}

			return withSession(cmd, func(ctx context.Context, s *session) error {
				if all {
					if err := s.client.StopAll(ctx); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "stopped all tasks")
					return nil
				}
				for _, id := range ids {
					if err := s.client.StopTask(ctx, id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "stopped task %d\n", id)
				}
				return nil
			})
		},
	}
}

func newIdleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "idle",
		Short: "Stop every task and silence the liveness signal",
		Long: `Stop every task on the server and stop emitting the liveness signal until
the next task is started.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				if err := s.client.Idle(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "idle")
				return nil
			})
		},
	}
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid task id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
