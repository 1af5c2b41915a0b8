package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/phlp/studeval/internal/format"
	"github.com/phlp/studeval/internal/log"
	"github.com/phlp/studeval/internal/output"
	"github.com/phlp/studeval/internal/prepare"
	"github.com/phlp/studeval/internal/resolve"
	"github.com/phlp/studeval/internal/ui/static"
	"github.com/phlp/studeval/internal/workflow"
)

func newStatusCmd() *cobra.Command {
	var repo int

	cmd := &cobra.Command{
		Use:     "status <sheet>",
		Short:   "Show grading progress",
		Aliases: []string{"st"},
		GroupID: GroupGrading,
		Args:    cobra.ExactArgs(1),
		Long: `Show grading progress.

Without --repo, lists all prepared repositories with their score. With
--repo, shows the category tree of one repository.`,
		Example: `  studeval status sheet.toml
  studeval status sheet.toml --repo 7`,
		ValidArgsFunction: completeSheet,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			ws, err := openWorkspace(ctx, args[0], noOverrides)
			if err != nil {
				return err
			}
			s, err := ws.Session()
			if err != nil {
				return err
			}

			if repo == 0 {
				contexts := s.Contexts()
				if len(contexts) == 0 {
					log.FromContext(ctx).Printf("No repositories prepared for %q\n", ws.Sheet.Title)
					return nil
				}
				rows, err := overviewRows(ws, contexts, s.Current)
				if err != nil {
					return err
				}
				out.Print(static.RenderTable([]string{"", "REPO", "CHECKOUT", "SCORE", "SAVED"}, rows))
				return nil
			}

			pc, err := resolve.Repository(s, repo)
			if err != nil {
				return err
			}
			rec, err := ws.Open(pc)
			if err != nil {
				return err
			}
			achieved, maxPoints := rec.Tree.Totals()
			out.Printf("Repository %s  %s\n\n", pc.Label(), pc.CheckoutInfo.Label())
			out.Print(static.RenderTable([]string{"CATEGORY", "SCORE", "STATUS"}, static.TreeRows(rec.Tree)))
			out.Printf("\nTotal: %s\n", format.Score(achieved, maxPoints))
			return nil
		},
	}

	cmd.Flags().IntVarP(&repo, "repo", "r", 0, "Repository number")

	return cmd
}

func overviewRows(ws *workflow.Workspace, contexts []prepare.Context, current int) ([][]string, error) {
	rows := make([][]string, 0, len(contexts))
	for _, pc := range contexts {
		rec, err := ws.Open(pc)
		if err != nil {
			return nil, err
		}
		achieved, maxPoints := rec.Tree.Totals()
		marker := ""
		if pc.PlaceholderValue == current {
			marker = "*"
		}
		saved := "-"
		if t := rec.SavedAt(); !t.IsZero() {
			saved = t.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			marker,
			pc.Label(),
			pc.CheckoutInfo.Label(),
			format.Score(achieved, maxPoints),
			saved,
		})
	}
	return rows, nil
}

func newSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "select <sheet> <repo>",
		Short:   "Set the repository used when --repo is omitted",
		GroupID: GroupGrading,
		Args:    cobra.ExactArgs(2),
		Example: `  studeval select sheet.toml 7
  studeval run sheet.toml Tests   # runs in repository 007`,
		ValidArgsFunction: completeSheet,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			index, err := strconv.Atoi(args[1])
			if err != nil || index <= 0 {
				return fmt.Errorf("invalid repository number %q", args[1])
			}
			ws, err := openWorkspace(ctx, args[0], noOverrides)
			if err != nil {
				return err
			}
			if err := ws.Select(index); err != nil {
				return err
			}
			log.FromContext(ctx).Printf("Selected repository %s\n", prepare.Label(index))
			return nil
		},
	}

	return cmd
}
