package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/phlp/studeval/internal/cmd"
	"github.com/phlp/studeval/internal/format"
	"github.com/phlp/studeval/internal/log"
	"github.com/phlp/studeval/internal/output"
	"github.com/phlp/studeval/internal/prepare"
	"github.com/phlp/studeval/internal/ui/static"
	"github.com/phlp/studeval/internal/workflow"
)

func newRunCmd() *cobra.Command {
	var (
		repos  []int
		all    bool
		silent bool
	)

	c := &cobra.Command{
		Use:     "run <sheet> <category>",
		Short:   "Run the commands of a category",
		GroupID: GroupGrading,
		Args:    cobra.ExactArgs(2),
		Long: `Run the commands of a leaf category inside prepared repositories.

Commands run one after another and stop at the first failure. A
successful run awards the category's full points, anything else zero.
Output is streamed and stored as a log next to the evaluation.

The category may be given as qualified name ("Tests/Unit"), plain name or
fuzzy abbreviation. Press Ctrl-C to cancel the running command.`,
		Example: `  studeval run sheet.toml Build             # current repository
  studeval run sheet.toml Tests/Unit -r 3 -r 4
  studeval run sheet.toml unit --all --silent`,
		ValidArgsFunction: completeTask(true),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			ws, err := openWorkspace(ctx, args[0], noOverrides)
			if err != nil {
				return err
			}
			task, err := resolveTask(ws, args[1])
			if err != nil {
				return err
			}
			contexts, err := targets(ws, all, repos)
			if err != nil {
				return err
			}

			var listen func(prepare.Context) cmd.Listener
			if !silent {
				listen = func(pc prepare.Context) cmd.Listener {
					return streamListener(out.Writer(), pc.Label(), len(contexts) > 1)
				}
			}
			l.Debug("run", "task", task, "repos", len(contexts))
			results := ws.RunBatch(ctx, contexts, task, listen)

			out.Println()
			out.Print(static.RenderTable([]string{"REPO", "OUTCOME", "POINTS", "LOG"}, resultRows(results)))

			var errs []error
			for _, r := range results {
				if r.Err != nil {
					errs = append(errs, fmt.Errorf("[%s] %w", prepare.Label(r.Index), r.Err))
				}
			}
			if ctx.Err() != nil {
				errs = append(errs, fmt.Errorf("cancelled after %d of %d repositories", len(results), len(contexts)))
			}
			return errors.Join(errs...)
		},
	}

	c.Flags().IntSliceVarP(&repos, "repo", "r", nil, "Repository number (repeatable)")
	c.Flags().BoolVarP(&all, "all", "a", false, "Run in all prepared repositories")
	c.Flags().BoolVarP(&silent, "silent", "s", false, "Do not stream command output")
	c.MarkFlagsMutuallyExclusive("repo", "all")

	return c
}

// streamListener prints batch events to w. Lines are prefixed with the
// repository label when prefix is set.
func streamListener(w io.Writer, label string, prefix bool) cmd.Listener {
	tag := ""
	if prefix {
		tag = color.New(color.FgCyan).Sprintf("[%s] ", label)
	}
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	return func(ev cmd.Event) {
		switch ev.Kind {
		case cmd.EventStarted:
			fmt.Fprintf(w, "%s%s\n", tag, bold.Sprint("$ "+ev.Command))
		case cmd.EventStdout:
			fmt.Fprintf(w, "%s%s\n", tag, ev.Line)
		case cmd.EventStderr:
			fmt.Fprintf(w, "%s%s\n", tag, red.Sprint(ev.Line))
		case cmd.EventFinished:
			if ev.ExitCode != 0 {
				fmt.Fprintf(w, "%s%s\n", tag, red.Sprintf("exit status %d", ev.ExitCode))
			}
		case cmd.EventFailed:
			fmt.Fprintf(w, "%s%s\n", tag, red.Sprintf("%s: %v", ev.Command, ev.Err))
		case cmd.EventAllFinished:
			if ev.Cancelled {
				fmt.Fprintf(w, "%s%s\n", tag, yellow.Sprint("cancelled"))
			}
		}
	}
}

func resultRows(results []workflow.BatchResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		outcome := outcomeCell(r.Outcome)
		points := format.Score(r.Points, r.Max)
		if r.Err != nil && r.Max == 0 {
			outcome = color.RedString("error")
			points = "-"
		}
		logFile := r.LogFile
		if logFile == "" {
			logFile = "-"
		}
		rows = append(rows, []string{prepare.Label(r.Index), outcome, points, logFile})
	}
	return rows
}

func outcomeCell(o cmd.Outcome) string {
	switch o {
	case cmd.OutcomeSuccess:
		return color.GreenString(o.String())
	case cmd.OutcomeCancelled:
		return color.YellowString(o.String())
	}
	return color.RedString(o.String())
}
