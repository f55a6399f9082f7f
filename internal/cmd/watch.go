package cmd

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/taskclient/internal/tui"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [target...]",
		Short: "Open a live view of task status",
		Long: `Open a full-screen view of every task the client knows about, updated as
status arrives. Targets are started in the background first, using the
same name[:key=value,...] form as "wait".

Keys: up/down select, s stops the selected task, x stops every task,
i idles the client, q quits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(cmd.OutOrStdout()) {
				return fmt.Errorf("watch needs an interactive terminal")
			}

			return withSession(cmd, func(ctx context.Context, s *session) error {
				if _, err := resolveTargets(ctx, s, args); err != nil {
					return err
				}
				if err := s.client.RefreshAllStatus(ctx); err != nil {
					return err
				}

				cfg := s.config()
				app := tui.New(s.client, s.client.Bus(),
					tui.WithRefreshInterval(cfg.TUI.RefreshInterval()),
					tui.WithShowEvicted(cfg.TUI.ShowEvicted),
				)
				return app.Run(ctx)
			})
		},
	}
}
