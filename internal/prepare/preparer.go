package prepare

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phlp/studeval/internal/checkout"
	"github.com/phlp/studeval/internal/log"
	"github.com/phlp/studeval/internal/state"
	"github.com/phlp/studeval/internal/storage"
)

// ProgressFunc is called after every index with the number of indices
// processed so far, successful or not.
type ProgressFunc func(done, total int)

// Preparer runs preparation batches.
type Preparer struct {
	Git      checkout.Git
	Resolver *checkout.Resolver
}

// NewPreparer creates a preparer whose resolver shares git.
func NewPreparer(git checkout.Git) *Preparer {
	return &Preparer{Git: git, Resolver: checkout.NewResolver(git)}
}

// Prepare processes every index of req in ascending order. It never fails as
// a whole: per-index failures are collected in [Result.Errors], so
// len(Contexts) + Failed() always equals the range length.
func (p *Preparer) Prepare(ctx context.Context, req Request, progress ProgressFunc) Result {
	l := log.FromContext(ctx)
	values := req.Range.Values()
	total := len(values)

	var (
		result Result
		errs   strings.Builder
	)
	for i, index := range values {
		pc, err := p.prepareOne(ctx, req, index)
		if err != nil {
			l.Debug("preparation failed", "index", Label(index), "err", err)
			errs.WriteString(errorLine(index, err))
		} else {
			result.Contexts = append(result.Contexts, pc)
		}
		if progress != nil {
			progress(i+1, total)
		}
	}
	result.Errors = errs.String()
	return result
}

// PrepareAsync runs Prepare on its own goroutine. The returned channel
// delivers exactly one Result and is then closed.
func (p *Preparer) PrepareAsync(ctx context.Context, req Request, progress ProgressFunc) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		ch <- p.Prepare(ctx, req, progress)
	}()
	return ch
}

func (p *Preparer) prepareOne(ctx context.Context, req Request, index int) (Context, error) {
	l := log.FromContext(ctx)
	label := Label(index)
	url := req.URL(index)
	repoPath := filepath.Join(req.RepositoriesRoot, label)

	if err := os.MkdirAll(req.RepositoriesRoot, 0o755); err != nil {
		return Context{}, stepErr("could not create repositories directory", err)
	}
	l.Debug("clone or update", "index", label, "url", url)
	if err := p.Git.CloneOrUpdate(ctx, url, repoPath); err != nil {
		return Context{}, stepErr("could not clone or update repository", err)
	}

	info, err := p.Resolver.Resolve(ctx, repoPath, req.Tag, req.Deadline)
	if err != nil {
		return Context{}, stepErr("could not check out repository", err)
	}
	l.Debug("checked out", "index", label, "strategy", info.Strategy.Label(), "ref", info.ShortRef())

	evalDir := filepath.Join(req.EvaluationsRoot, label)
	if err := os.MkdirAll(evalDir, 0o755); err != nil {
		return Context{}, stepErr("could not create evaluation directory", err)
	}
	evalFile := filepath.Join(evalDir, req.EvaluationFileName)
	if err := migrateLegacyState(ctx, evalFile, label, req.EvaluationsRoot); err != nil {
		return Context{}, stepErr("could not migrate evaluation file", err)
	}

	if !storage.Exists(evalFile) {
		if err := seedState(evalFile, req, index, url, info); err != nil {
			return Context{}, stepErr("could not write evaluation file", err)
		}
	}

	logsDir := filepath.Join(evalDir, "logs")
	migrateLegacyLogs(ctx, repoPath, logsDir)
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return Context{}, stepErr("could not create logs directory", err)
	}

	return Context{
		PlaceholderValue:    index,
		RepositoryURL:       url,
		RepositoryPath:      repoPath,
		EvaluationDirectory: evalDir,
		EvaluationFile:      evalFile,
		LogsDirectory:       logsDir,
		CheckoutInfo:        info,
	}, nil
}

func seedState(path string, req Request, index int, url string, info checkout.Info) error {
	data := &state.SaveData{
		RepositoryURL:    url,
		PlaceholderValue: &index,
		EvaluationTitle:  req.EvaluationTitle,
	}
	if ref, ok := info.Ref(); ok {
		data.CheckedOutReference = ref
	}
	if enc, ok := info.Strategy.Encode(); ok {
		data.CheckoutStrategy = enc
	}
	if err := state.Write(path, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
