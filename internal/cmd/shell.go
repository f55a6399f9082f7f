package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/taskclient/internal/config"
	"github.com/Iron-Ham/taskclient/internal/errors"
	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shellPrompt = "taskclient> "

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands against one long-lived client session",
		Long: `Read commands from standard input, one per line, and run them against a
single client session. Tasks started by one line stay visible to the next,
so "run --detach", "status", "stop" and "wait" can be combined.

Lines use the same syntax as the command line without the leading
"taskclient", including single and double quotes for values with spaces.
Blank lines and lines starting with # are ignored; "exit" or
"quit" ends the shell. When a config file is in use, edits to it apply to
tasks started afterwards.`,
		Args: cobra.NoArgs,
		RunE: runShell,
	}
}

func runShell(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	s, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	s.shell = true

	if path := viper.ConfigFileUsed(); path != "" {
		w := config.NewWatcher(viper.GetViper())
		w.OnChange(func(cfg *config.Config) {
			s.setConfig(cfg)
			s.logger.Info("configuration reloaded", "file", path)
		})
		w.OnError(func(err error) {
			s.logger.Warn("configuration reload rejected", "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		})
		w.Start()
	}

	lineCtx := context.WithValue(ctx, sessionKey{}, s)
	interactive := isTerminal(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if interactive {
			fmt.Fprint(out, shellPrompt)
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		if err := runShellLine(lineCtx, line, cmd); err != nil {
			ReportError(errOut, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return scanner.Err()
}

// splitShellLine splits a shell line into arguments with POSIX quoting, so
// "run Fail 'message=disk full'" passes the message as one argument.
// Environment variables and backticks are not expanded, and pipes,
// redirections or command separators are rejected.
func splitShellLine(line string) ([]string, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(line)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse line")
	}
	if parser.Position >= 0 {
		return nil, fmt.Errorf("unsupported shell operator at column %d", parser.Position+1)
	}
	return args, nil
}

// runShellLine executes one line on a fresh command tree so that flag
// values never carry over between lines.
func runShellLine(ctx context.Context, line string, parent *cobra.Command) error {
	root := &cobra.Command{
		Use:           "taskclient",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	args, err := splitShellLine(line)
	if err != nil {
		return err
	}
	root.AddCommand(sessionCommands()...)
	root.SetArgs(args)
	root.SetIn(parent.InOrStdin())
	root.SetOut(parent.OutOrStdout())
	root.SetErr(parent.ErrOrStderr())
	return root.ExecuteContext(ctx)
}
