package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Iron-Ham/taskclient/internal/client"
	"github.com/Iron-Ham/taskclient/internal/status"
	"github.com/Iron-Ham/taskclient/internal/tui/styles"
	"github.com/gobwas/glob"
	"golang.org/x/term"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// nameFilter compiles a shell-style name pattern. An empty pattern matches
// every name.
func nameFilter(pattern string) (func(string) bool, error) {
	if pattern == "" {
		return func(string) bool { return true }, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern %q: %w", pattern, err)
	}
	return g.Match, nil
}

// printRecord writes one status line. Plain output keeps the
// "<time> <name> F|B <STATUS>:<message>" form so it can be parsed.
func printRecord(w io.Writer, rec status.Record, styled bool) {
	if !styled {
		fmt.Fprintf(w, "%d %s\n", rec.ID, rec.String())
		return
	}

	mode := "B"
	if rec.Foreground {
		mode = "F"
	}
	code := styles.StatusStyle(rec.Code).Render(styles.StatusIcon(rec.Code) + " " + rec.Code.String())
	fmt.Fprintf(w, "%s %s %-12s %s %s %s\n",
		styles.Muted.Render(fmt.Sprintf("%5d", rec.ID)),
		styles.Muted.Render(rec.Updated.Format("15:04:05.000")),
		rec.Name, mode, code,
		styles.Muted.Render(rec.Message))
}

func printRecords(w io.Writer, recs []status.Record, styled bool) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	for _, rec := range recs {
		printRecord(w, rec, styled)
	}
}

func printDefinitions(w io.Writer, defs []*client.TaskDefinition, styled bool) {
	if len(defs) == 0 {
		fmt.Fprintln(w, "no task definitions")
		return
	}
	if !styled {
		for _, d := range defs {
			fmt.Fprintln(w, d.String())
		}
		return
	}

	width := 0
	for _, d := range defs {
		width = max(width, len(d.Name))
	}
	for _, d := range defs {
		name := styles.Title.Render(d.Name + strings.Repeat(" ", width-len(d.Name)))
		fmt.Fprintf(w, "%s  %s\n", name, d.Help)
	}
}
