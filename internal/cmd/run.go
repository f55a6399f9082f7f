package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Iron-Ham/taskclient/internal/client"
	"github.com/Iron-Ham/taskclient/internal/dispatch"
	"github.com/Iron-Ham/taskclient/internal/event"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		background bool
		detach     bool
		follow     bool
		period     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <task> [key=value...]",
		Short: "Run a task and wait for it to finish",
		Long: `Start an instance of a task and wait until it reaches a terminal status.

Parameters are key=value pairs; values are typed like YAML scalars, so
task_duration=0.5 is a number and main_task=false a boolean. The task to
run is always the first argument; a task_name parameter is ignored.

A task runs in the foreground unless --background is given. Inside the
shell, --detach returns as soon as the server accepted the task.`,
		Example: `  taskclient run Wait task_duration=2
  taskclient run Wait task_duration=10 task_timeout=1
  taskclient run --background --period 500ms Idle`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := dispatch.ParseAssignments(args[1:])
			if err != nil {
				return err
			}
			delete(params, dispatch.ParamTaskName)

			return withSession(cmd, func(ctx context.Context, s *session) error {
				if detach && !s.shell {
					return fmt.Errorf("--detach only works inside the shell")
				}

				def, err := s.client.Task(args[0])
				if err != nil {
					return err
				}

				opts := []client.StartOption{client.WithForeground(!background)}
				if period <= 0 {
					period = s.config().Client.DefaultPeriod()
				}
				if period > 0 {
					opts = append(opts, client.WithPeriod(period))
				}

				out := cmd.OutOrStdout()
				styled := isTerminal(out)
				if follow {
					subID := s.client.Bus().Subscribe(event.TypeTaskStatus, func(ev event.Event) {
						if e, ok := ev.(event.TaskStatusEvent); ok && e.Record.Name == def.Name {
							printRecord(out, e.Record, styled)
						}
					})
					defer s.client.Bus().Unsubscribe(subID)
				}

				if detach {
					id, err := s.client.StartTask(ctx, def.Name, params, opts...)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "started %s as task %d\n", def.Name, id)
					return nil
				}

				id, err := def.Run(ctx, params, opts...)
				if err == nil && !s.client.IsCompleted(id) {
					err = s.client.Wait(ctx, id)
				}
				if rec, ok := s.client.Status(id); ok && !follow {
					printRecord(out, rec, styled)
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&background, "background", "b", false, "Start the task as a background task")
	cmd.Flags().BoolVarP(&detach, "detach", "d", false, "Return once the task started (shell only)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Print every status update while waiting")
	cmd.Flags().DurationVar(&period, "period", 0, "Status publication period requested from the task")
	return cmd
}
