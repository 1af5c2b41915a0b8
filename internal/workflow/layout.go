package workflow

import (
	"path/filepath"

	"github.com/phlp/studeval/internal/format"
)

// Layout resolves the directories and file names of one sheet.
type Layout struct {
	BaseDir string
	Title   string
}

// Slug returns the file system name of the sheet.
func (l Layout) Slug() string {
	return format.Slug(l.Title)
}

// ReposDir is where repositories are cloned.
func (l Layout) ReposDir() string {
	return filepath.Join(l.BaseDir, "repos")
}

// EvaluationsDir holds the session and one directory per repository.
func (l Layout) EvaluationsDir() string {
	return filepath.Join(l.BaseDir, "evaluations", l.Slug())
}

// StateFileName is the name of the per-repository evaluation file.
func (l Layout) StateFileName() string {
	return format.StateFileName(l.Title)
}

// FeedbackFileName is the name of the exported report.
func (l Layout) FeedbackFileName() string {
	return format.FeedbackFileName(l.Title)
}
