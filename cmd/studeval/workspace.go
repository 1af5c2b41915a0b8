package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phlp/studeval/internal/checkout"
	"github.com/phlp/studeval/internal/config"
	"github.com/phlp/studeval/internal/evaluation"
	"github.com/phlp/studeval/internal/log"
	"github.com/phlp/studeval/internal/prepare"
	"github.com/phlp/studeval/internal/resolve"
	"github.com/phlp/studeval/internal/workflow"
)

// sheetFlags are command-line overrides for sheet fields.
type sheetFlags struct {
	template    string
	placeholder string
	tag         string
	deadline    string
	noDeadline  bool
}

func (f *sheetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.template, "template", "", "Repository URL template (overrides the sheet)")
	cmd.Flags().StringVar(&f.placeholder, "placeholder", "", "Token in the template replaced by the repository number")
	cmd.Flags().StringVar(&f.tag, "tag", "", "Tag to check out (overrides the sheet, empty disables)")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "Deadline as YYYY-MM-DD (overrides the sheet)")
	cmd.Flags().BoolVar(&f.noDeadline, "no-deadline", false, "Ignore the sheet's deadline")
	cmd.MarkFlagsMutuallyExclusive("deadline", "no-deadline")
}

// overrides converts the flags that were set on cmd.
func (f *sheetFlags) overrides(cmd *cobra.Command) (config.SheetOverrides, error) {
	var o config.SheetOverrides
	if cmd.Flags().Changed("template") {
		o.Template = &f.template
	}
	if cmd.Flags().Changed("placeholder") {
		o.Placeholder = &f.placeholder
	}
	if cmd.Flags().Changed("tag") {
		o.Tag = &f.tag
	}
	if f.deadline != "" {
		d, err := checkout.ParseDate(f.deadline)
		if err != nil {
			return o, fmt.Errorf("--deadline: %w", err)
		}
		o.Deadline = &d
	}
	o.NoDeadline = f.noDeadline
	return o, nil
}

// noOverrides keeps the sheet as written.
var noOverrides config.SheetOverrides

// openWorkspace loads the sheet at path and applies o.
func openWorkspace(ctx context.Context, path string, o config.SheetOverrides) (*workflow.Workspace, error) {
	sheet, err := config.LoadSheet(path)
	if err != nil {
		return nil, err
	}
	sheet = o.Apply(sheet)
	ws, err := workflow.NewWorkspace(config.FromContext(ctx), sheet, path)
	if err != nil {
		return nil, err
	}
	log.FromContext(ctx).Debug("workspace", "sheet", sheet.Title, "base", ws.Layout.BaseDir)
	return ws, nil
}

// resolveTask resolves query against the sheet's categories and returns
// the qualified name.
func resolveTask(ws *workflow.Workspace, query string) (string, error) {
	tree := evaluation.Build(ws.Sheet.Categories)
	n, err := resolve.Task(tree, query)
	if err != nil {
		return "", err
	}
	return tree.QualifiedName(n), nil
}

// targets returns the repositories a command acts on: all prepared ones,
// the given indices, or the current one.
func targets(ws *workflow.Workspace, all bool, indices []int) ([]prepare.Context, error) {
	s, err := ws.Session()
	if err != nil {
		return nil, err
	}
	if all {
		contexts := s.Contexts()
		if len(contexts) == 0 {
			return nil, fmt.Errorf("%w: no repositories prepared (run 'studeval prepare' first)", resolve.ErrNotPrepared)
		}
		return contexts, nil
	}
	if len(indices) == 0 {
		pc, err := resolve.Repository(s, 0)
		if err != nil {
			return nil, err
		}
		return []prepare.Context{pc}, nil
	}
	out := make([]prepare.Context, 0, len(indices))
	for _, idx := range indices {
		pc, err := resolve.Repository(s, idx)
		if err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, nil
}

// completeSheet completes sheet file names.
func completeSheet(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"toml", "json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeTask completes category names of the sheet given as first arg.
// runnableOnly restricts the candidates to leaves with commands.
func completeTask(runnableOnly bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return completeSheet(cmd, args, toComplete)
		}
		if len(args) > 1 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		sheet, err := config.LoadSheet(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return taskNames(evaluation.Build(sheet.Categories), toComplete, runnableOnly), cobra.ShellCompDirectiveNoFileComp
	}
}

func taskNames(tree *evaluation.Tree, prefix string, runnableOnly bool) []string {
	var names []string
	tree.Walk(func(n *evaluation.Node, _ int) {
		if runnableOnly && (!n.IsLeaf() || len(n.Commands) == 0) {
			return
		}
		if name := tree.QualifiedName(n); strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	})
	return names
}
