package main

import (
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/phlp/studeval/internal/log"
	"github.com/phlp/studeval/internal/output"
)

func newReportCmd() *cobra.Command {
	var (
		repo            int
		export          bool
		copyToClipboard bool
	)

	cmd := &cobra.Command{
		Use:     "report <sheet>",
		Short:   "Render the feedback report",
		GroupID: GroupGrading,
		Args:    cobra.ExactArgs(1),
		Long: `Render the markdown feedback report of a repository.

By default the report is printed. --export writes it into the
repository as feedback-<sheet>.md, --copy puts it on the clipboard.`,
		Example: `  studeval report sheet.toml -r 7
  studeval report sheet.toml --export
  studeval report sheet.toml --copy > /dev/null`,
		ValidArgsFunction: completeSheet,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			ws, err := openWorkspace(ctx, args[0], noOverrides)
			if err != nil {
				return err
			}
			contexts, err := targets(ws, false, repoList(repo))
			if err != nil {
				return err
			}
			pc := contexts[0]

			if export {
				path, err := ws.Export(pc)
				if err != nil {
					return err
				}
				out.Println(path)
				return nil
			}

			md, err := ws.Render(pc)
			if err != nil {
				return err
			}
			if copyToClipboard {
				if err := clipboard.WriteAll(md); err != nil {
					l.Warn("failed to copy to clipboard", "err", err)
				} else {
					l.Printf("Copied report of repository %s to clipboard\n", pc.Label())
				}
			}
			out.Print(md)
			return nil
		},
	}

	cmd.Flags().IntVarP(&repo, "repo", "r", 0, "Repository number (default: current)")
	cmd.Flags().BoolVarP(&export, "export", "e", false, "Write the report into the repository")
	cmd.Flags().BoolVarP(&copyToClipboard, "copy", "c", false, "Copy the report to the clipboard")

	return cmd
}
