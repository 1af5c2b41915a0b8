package workflow

import (
	"errors"
	"fmt"

	"github.com/phlp/studeval/internal/evaluation"
	"github.com/phlp/studeval/internal/prepare"
	"github.com/phlp/studeval/internal/report"
)

// Award is a manual grading change. At most one of Points, Full and Clear
// should be set; Comment may accompany any of them.
type Award struct {
	Points  *float64
	Full    bool
	Clear   bool
	Comment *string
}

// ErrInnerPoints is returned when explicit points target an inner category.
var ErrInnerPoints = errors.New("points can only be set on leaf categories")

// Award applies a to category name of pc and saves the evaluation.
// Returns the updated record.
func (w *Workspace) Award(pc prepare.Context, name string, a Award) (*Record, *evaluation.Node, error) {
	rec, err := w.Open(pc)
	if err != nil {
		return nil, nil, err
	}
	n, ok := rec.Tree.Find(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}

	switch {
	case a.Clear:
		rec.Tree.ClearPoints(n)
	case a.Full:
		rec.Tree.MarkFull(n)
	case a.Points != nil:
		if !n.IsLeaf() {
			return nil, nil, fmt.Errorf("%w: %q", ErrInnerPoints, name)
		}
		rec.Tree.SetPoints(n, *a.Points)
	}
	if a.Comment != nil {
		rec.Tree.SetComment(n, *a.Comment)
	}

	if err := rec.Save(); err != nil {
		return nil, nil, err
	}
	return rec, n, nil
}

// Render returns the markdown report of pc.
func (w *Workspace) Render(pc prepare.Context) (string, error) {
	rec, err := w.Open(pc)
	if err != nil {
		return "", err
	}
	return report.Render(rec.Tree, w.reportMeta(pc)), nil
}

// Export writes the markdown report of pc into its repository and
// returns the file path.
func (w *Workspace) Export(pc prepare.Context) (string, error) {
	rec, err := w.Open(pc)
	if err != nil {
		return "", err
	}
	return report.Export(pc.RepositoryPath, w.Layout.FeedbackFileName(), rec.Tree, w.reportMeta(pc))
}

func (w *Workspace) reportMeta(pc prepare.Context) report.Meta {
	return report.Meta{
		Context: "Repository " + pc.Label(),
		Comment: w.Sheet.Comment,
		Created: w.now(),
	}
}
