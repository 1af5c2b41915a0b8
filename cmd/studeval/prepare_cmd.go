package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/phlp/studeval/internal/git"
	"github.com/phlp/studeval/internal/log"
	"github.com/phlp/studeval/internal/output"
	"github.com/phlp/studeval/internal/prepare"
	"github.com/phlp/studeval/internal/ui/progress"
	"github.com/phlp/studeval/internal/ui/static"
)

func newPrepareCmd() *cobra.Command {
	var (
		from, to int
		flags    sheetFlags
	)

	cmd := &cobra.Command{
		Use:     "prepare <sheet>",
		Short:   "Clone and check out a range of repositories",
		GroupID: GroupGrading,
		Args:    cobra.ExactArgs(1),
		Long: `Clone or update the repositories numbered --from to --to.

Each repository is checked out at the sheet's tag, at the last commit on
the default branch before the deadline, or left at HEAD. Failures are
reported per repository and do not stop the batch.`,
		Example: `  studeval prepare sheet.toml --from 1 --to 40
  studeval prepare sheet.toml --from 7 --deadline 2026-01-31
  studeval prepare sheet.toml --from 1 --to 3 --tag "" --no-deadline`,
		ValidArgsFunction: completeSheet,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			o, err := flags.overrides(cmd)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(ctx, args[0], o)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("to") {
				to = from
			}
			rng, err := prepare.NewRange(from, to)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			rep := progress.New(os.Stderr, "Preparing", cancel)
			if quiet {
				rep = progress.NewLines(io.Discard, "")
			}
			rep.Start()
			result, err := ws.Prepare(ctx, prepare.NewPreparer(git.New()), rng, func(done, total int) {
				rep.Update(done, total, "")
			})
			rep.Stop()
			if err != nil {
				return err
			}

			for _, line := range result.ErrorLines() {
				l.Error(line)
			}
			if len(result.Contexts) > 0 {
				out.Print(static.RenderTable([]string{"REPO", "CHECKOUT", "PATH"}, preparedRows(result.Contexts)))
			}
			l.Printf("Prepared %d of %d repositories\n", len(result.Contexts), rng.Len())

			if ctx.Err() != nil {
				return fmt.Errorf("preparation cancelled")
			}
			if len(result.Contexts) == 0 {
				return fmt.Errorf("no repository could be prepared")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "First repository number")
	cmd.Flags().IntVar(&to, "to", 0, "Last repository number (default: --from)")
	cmd.MarkFlagRequired("from")
	flags.register(cmd)

	return cmd
}

func preparedRows(contexts []prepare.Context) [][]string {
	rows := make([][]string, 0, len(contexts))
	for _, pc := range contexts {
		rows = append(rows, []string{pc.Label(), pc.CheckoutInfo.Label(), pc.RepositoryPath})
	}
	return rows
}
