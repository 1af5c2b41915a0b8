package main

import (
	"github.com/spf13/cobra"

	"github.com/phlp/studeval/internal/format"
	"github.com/phlp/studeval/internal/log"
	"github.com/phlp/studeval/internal/output"
	"github.com/phlp/studeval/internal/ui/static"
	"github.com/phlp/studeval/internal/workflow"
)

func newAwardCmd() *cobra.Command {
	var (
		repo        int
		points      float64
		full        bool
		clearPoints bool
		comment     string
	)

	cmd := &cobra.Command{
		Use:     "award <sheet> <category>",
		Short:   "Set points or a comment by hand",
		GroupID: GroupGrading,
		Args:    cobra.ExactArgs(2),
		Long: `Set points or a comment on a category by hand.

--points applies to leaf categories and is clamped to the category's
maximum. --full and --clear apply to every leaf below the category.`,
		Example: `  studeval award sheet.toml Tests/Unit --points 2.5
  studeval award sheet.toml Tests --full -r 7
  studeval award sheet.toml Style --clear --comment "see review"`,
		ValidArgsFunction: completeTask(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			ws, err := openWorkspace(ctx, args[0], noOverrides)
			if err != nil {
				return err
			}
			task, err := resolveTask(ws, args[1])
			if err != nil {
				return err
			}
			contexts, err := targets(ws, false, repoList(repo))
			if err != nil {
				return err
			}
			pc := contexts[0]

			a := workflow.Award{Full: full, Clear: clearPoints}
			if cmd.Flags().Changed("points") {
				a.Points = &points
			}
			if cmd.Flags().Changed("comment") {
				a.Comment = &comment
			}

			rec, n, err := ws.Award(pc, task, a)
			if err != nil {
				return err
			}
			log.FromContext(ctx).Debug("awarded", "repo", pc.Label(), "task", task, "points", n.Points())

			achieved, maxPoints := rec.Tree.Totals()
			out.Printf("[%s] %s: %s\n", pc.Label(), task, static.ScoreCell(n))
			out.Printf("[%s] total: %s\n", pc.Label(), format.Score(achieved, maxPoints))
			return nil
		},
	}

	cmd.Flags().IntVarP(&repo, "repo", "r", 0, "Repository number (default: current)")
	cmd.Flags().Float64VarP(&points, "points", "p", 0, "Points for a leaf category")
	cmd.Flags().BoolVar(&full, "full", false, "Award full points")
	cmd.Flags().BoolVar(&clearPoints, "clear", false, "Remove awarded points")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Feedback comment (empty removes it)")
	cmd.MarkFlagsMutuallyExclusive("points", "full", "clear")
	cmd.MarkFlagsOneRequired("points", "full", "clear", "comment")

	return cmd
}

func repoList(repo int) []int {
	if repo <= 0 {
		return nil
	}
	return []int{repo}
}
