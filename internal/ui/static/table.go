// Package static provides non-interactive terminal output components.
//
// This package contains components for rendering formatted output
// that does not require user interaction, such as tables and
// status cells.
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/phlp/studeval/internal/evaluation"
	"github.com/phlp/studeval/internal/format"
	"github.com/phlp/studeval/internal/ui/styles"
)

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// StatusCell renders a status in its theme color.
func StatusCell(s evaluation.Status) string {
	switch s {
	case evaluation.StatusSuccess:
		return styles.SuccessStyle.Render(string(s))
	case evaluation.StatusFailed:
		return styles.ErrorStyle.Render(string(s))
	case evaluation.StatusRunning, evaluation.StatusCancelled:
		return styles.WarningStyle.Render(string(s))
	}
	return styles.MutedStyle.Render(string(s))
}

// ScoreCell renders "achieved / max (percent)"; undefined points render
// as "- / max".
func ScoreCell(n *evaluation.Node) string {
	if !n.PointsDefined() {
		return "- / " + format.Points(n.Max())
	}
	return format.Score(n.Points(), n.Max()) + " (" + format.Percent(n.Ratio()) + ")"
}

// TreeRows flattens tree into rows of name (indented by depth), score and
// status. Pseudo categories are marked with a trailing "*".
func TreeRows(tree *evaluation.Tree) [][]string {
	var rows [][]string
	tree.Walk(func(n *evaluation.Node, depth int) {
		name := strings.Repeat("  ", depth) + n.Name
		if n.Pseudo {
			name += "*"
		}
		rows = append(rows, []string{name, ScoreCell(n), StatusCell(n.Status())})
	})
	return rows
}
