package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phlp/studeval/internal/cmd"
	"github.com/phlp/studeval/internal/cmdlog"
	"github.com/phlp/studeval/internal/config"
	"github.com/phlp/studeval/internal/evaluation"
	"github.com/phlp/studeval/internal/log"
	"github.com/phlp/studeval/internal/prepare"
	"github.com/phlp/studeval/internal/session"
	"github.com/phlp/studeval/internal/state"
)

// Workspace is one evaluation sheet together with its on-disk layout.
type Workspace struct {
	Sheet       *config.Sheet
	Layout      Layout
	Placeholder string
	Runner      *cmd.Runner
	Logs        cmdlog.Writer
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewWorkspace creates a workspace for sheet. The base directory comes
// from cfg, or the sheet's directory when cfg has none.
func NewWorkspace(cfg *config.Config, sheet *config.Sheet, sheetPath string) (*Workspace, error) {
	base, err := cfg.BaseDirFor(sheetPath)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}
	return &Workspace{
		Sheet:       sheet,
		Layout:      Layout{BaseDir: base, Title: sheet.Title},
		Placeholder: cfg.PlaceholderFor(sheet),
		Runner: cmd.NewRunner(
			cmd.WithShell(cfg.Shell...),
			cmd.WithDrainTimeout(cfg.DrainTimeout),
			cmd.WithKillGrace(cfg.KillGrace),
		),
	}, nil
}

func (w *Workspace) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Request builds the preparation request for rng from the sheet.
func (w *Workspace) Request(rng prepare.Range) (prepare.Request, error) {
	opts := []prepare.Option{
		prepare.WithRepositoriesRoot(w.Layout.ReposDir()),
		prepare.WithEvaluationsRoot(w.Layout.EvaluationsDir()),
		prepare.WithEvaluationFileName(w.Layout.StateFileName()),
		prepare.WithEvaluationTitle(w.Sheet.Title),
		prepare.WithPlaceholder(w.Placeholder),
		prepare.WithTag(w.Sheet.Tag),
	}
	if d := w.Sheet.DeadlineDate(); d != nil {
		opts = append(opts, prepare.WithDeadline(*d))
	}
	return prepare.NewRequest(w.Sheet.RepositoryURLTemplate, rng, opts...)
}

// Prepare prepares rng and replaces the session with the successful
// contexts of this run; entries of earlier runs are dropped. The returned error only covers request and session problems;
// per-repository failures are in the result.
func (w *Workspace) Prepare(ctx context.Context, p *prepare.Preparer, rng prepare.Range, progress prepare.ProgressFunc) (prepare.Result, error) {
	req, err := w.Request(rng)
	if err != nil {
		return prepare.Result{}, err
	}

	l := log.FromContext(ctx)
	l.Debug("preparing", "range", rng, "repos", req.RepositoriesRoot, "evaluations", req.EvaluationsRoot)

	ch := p.PrepareAsync(ctx, req, progress)
	var result prepare.Result
	select {
	case result = <-ch:
	case <-ctx.Done():
		l.Warn("preparation interrupted, finishing current repository")
		result = <-ch
	}

	err = session.Update(w.Layout.EvaluationsDir(), func(s *session.Session) error {
		s.Reset()
		s.Title = w.Sheet.Title
		s.Template = req.Template
		now := w.now()
		for _, pc := range result.Contexts {
			s.Record(pc, now)
		}
		if len(result.Contexts) > 0 {
			s.Current = result.Contexts[0].PlaceholderValue
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("save session: %w", err)
	}
	return result, nil
}

// Session loads the prepared repositories, dropping those whose directory
// vanished.
func (w *Workspace) Session() (*session.Session, error) {
	s, err := session.Load(w.Layout.EvaluationsDir())
	if err != nil {
		return nil, err
	}
	s.Sync(w.now())
	return s, nil
}

// Select makes index the current repository for later commands.
func (w *Workspace) Select(index int) error {
	return session.Update(w.Layout.EvaluationsDir(), func(s *session.Session) error {
		if _, ok := s.Get(index); !ok {
			return fmt.Errorf("repository %s is not prepared", prepare.Label(index))
		}
		s.Current = index
		return nil
	})
}

// Record is the evaluation of one prepared repository: the grading tree
// restored from its state file.
type Record struct {
	Context prepare.Context
	Tree    *evaluation.Tree
	// LogRefs maps qualified category names to their last command log.
	LogRefs map[string]string

	data *state.SaveData
}

// Open loads the evaluation of pc. A missing state file yields a fresh
// tree.
func (w *Workspace) Open(pc prepare.Context) (*Record, error) {
	data, err := state.LoadOrEmpty(pc.EvaluationFile)
	if err != nil {
		return nil, fmt.Errorf("load evaluation %s: %w", pc.Label(), err)
	}
	r := &Record{
		Context: pc,
		Tree:    evaluation.Build(w.Sheet.Categories),
		LogRefs: make(map[string]string),
		data:    data,
	}
	r.Tree.Apply(data.Nodes, r.LogRefs)
	return r, nil
}

// Save writes the tree back to the state file, filling in repository
// metadata that is not yet recorded.
func (r *Record) Save() error {
	d := r.data
	pc := r.Context
	if d.RepositoryURL == "" {
		d.RepositoryURL = pc.RepositoryURL
	}
	if d.PlaceholderValue == nil {
		idx := pc.PlaceholderValue
		d.PlaceholderValue = &idx
	}
	if ref, ok := pc.CheckoutInfo.Ref(); ok && d.CheckedOutReference == "" {
		d.CheckedOutReference = ref
	}
	if enc, ok := pc.CheckoutInfo.Strategy.Encode(); ok && d.CheckoutStrategy == "" {
		d.CheckoutStrategy = enc
	}
	d.Nodes = r.Tree.Capture(r.LogRefs)
	if err := state.Write(pc.EvaluationFile, d); err != nil {
		return fmt.Errorf("save evaluation %s: %w", pc.Label(), err)
	}
	return nil
}

// Title returns the evaluation title stored in the state file.
func (r *Record) Title() string {
	return strings.TrimSpace(r.data.EvaluationTitle)
}

// SavedAt returns when the state file was last written.
func (r *Record) SavedAt() time.Time {
	return r.data.SavedAt
}
