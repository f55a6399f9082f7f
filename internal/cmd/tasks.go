package cmd

import (
	"context"

	"github.com/Iron-Ham/taskclient/internal/client"
	"github.com/spf13/cobra"
)

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks [pattern]",
		Short: "List the tasks the server can run",
		Long: `List the task definitions offered by the server, with their help text.

An optional glob pattern (e.g. "Wait*" or "{Idle,Fail}") narrows the list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			match, err := nameFilter(pattern)
			if err != nil {
				return err
			}

			return withSession(cmd, func(ctx context.Context, s *session) error {
				if err := s.client.RefreshTaskList(ctx); err != nil {
					return err
				}
				var defs []*client.TaskDefinition
				for _, d := range s.client.Tasks() {
					if match(d.Name) {
						defs = append(defs, d)
					}
				}
				printDefinitions(cmd.OutOrStdout(), defs, isTerminal(cmd.OutOrStdout()))
				return nil
			})
		},
	}
}
