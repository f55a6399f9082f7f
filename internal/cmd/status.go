package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/taskclient/internal/lifecycle"
	"github.com/Iron-Ham/taskclient/internal/status"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var (
		cached   bool
		statuses []string
	)

	cmd := &cobra.Command{
		Use:   "status [pattern]",
		Short: "Show the last known status of every task",
		Long: `Query the server for the status of every task it knows about, running or
recently finished, and print one line per task.

An optional glob pattern filters by task name. --status keeps only tasks
in the given states and may be repeated ("--status running --status timeout").`,
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
			inState, err := statusFilter(statuses)
			if err != nil {
				return err
			}

			return withSession(cmd, func(ctx context.Context, s *session) error {
				if !cached {
					if err := s.client.RefreshAllStatus(ctx); err != nil {
						return err
					}
				}
				var recs []status.Record
				for _, rec := range s.client.Store().Snapshot() {
					if match(rec.Name) && inState(rec.Code) {
						recs = append(recs, rec)
					}
				}
				printRecords(cmd.OutOrStdout(), recs, isTerminal(cmd.OutOrStdout()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "Print the client's cached status without querying the server")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only show tasks in this state (e.g. RUNNING, TASK_FAILED)")
	_ = cmd.RegisterFlagCompletionFunc("status", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return statusNames(), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// statusFilter builds a predicate over the named states. No names matches
// every state.
func statusFilter(names []string) (func(lifecycle.Status) bool, error) {
	if len(names) == 0 {
		return func(lifecycle.Status) bool { return true }, nil
	}
	want := make(map[lifecycle.Status]bool, len(names))
	for _, name := range names {
		st, err := lifecycle.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("%w (valid: %s)", err, strings.Join(statusNames(), ", "))
		}
		want[st] = true
	}
	return func(st lifecycle.Status) bool { return want[st] }, nil
}

func statusNames() []string {
	all := lifecycle.All()
	names := make([]string, len(all))
	for i, st := range all {
		names[i] = st.String()
	}
	return names
}
