package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/phlp/studeval/internal/cmd"
	"github.com/phlp/studeval/internal/evaluation"
	"github.com/phlp/studeval/internal/log"
	"github.com/phlp/studeval/internal/prepare"
)

var (
	// ErrUnknownTask is returned for a category name not in the sheet.
	ErrUnknownTask = errors.New("unknown category")
	// ErrNoCommands is returned for categories that cannot be run.
	ErrNoCommands = errors.New("category has no commands")
)

// TaskResult is the outcome of running one task in one repository.
type TaskResult struct {
	Index   int
	Task    string
	Outcome cmd.Outcome
	// LogFile is relative to the evaluation directory; empty when writing
	// the log failed.
	LogFile string
	Points  float64
	Max     float64
}

// Transcript collects batch events as the text stored in command logs:
// commands prefixed with "$ ", stdout verbatim, stderr prefixed with
// "[ERR] ".
type Transcript struct {
	mu sync.Mutex
	b  strings.Builder
}

// Listen appends ev to the transcript.
func (t *Transcript) Listen(ev cmd.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch ev.Kind {
	case cmd.EventStarted:
		t.line("$ " + ev.Command)
	case cmd.EventStdout:
		t.line(ev.Line)
	case cmd.EventStderr:
		t.line("[ERR] " + ev.Line)
	case cmd.EventFinished:
		t.line(fmt.Sprintf("[exit %d]", ev.ExitCode))
	case cmd.EventFailed:
		t.line(fmt.Sprintf("[ERR] %s: %v", ev.Command, ev.Err))
	case cmd.EventAllFinished:
		if ev.Cancelled {
			t.line("[cancelled]")
		}
	}
}

func (t *Transcript) line(s string) {
	t.b.WriteString(s)
	t.b.WriteByte('\n')
}

// String returns the collected text.
func (t *Transcript) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.b.String()
}

// task looks up a runnable leaf by qualified name.
func task(tree *evaluation.Tree, name string) (*evaluation.Node, error) {
	n, ok := tree.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}
	if !n.IsLeaf() || len(n.Commands) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoCommands, name)
	}
	return n, nil
}

// RunTask runs the commands of the leaf category name in the repository
// of pc and grades it. listener, if non-nil, receives all batch events.
// Cancelling ctx cancels the running command.
func (w *Workspace) RunTask(ctx context.Context, pc prepare.Context, name string, listener cmd.Listener) (TaskResult, error) {
	l := log.FromContext(ctx)

	rec, err := w.Open(pc)
	if err != nil {
		return TaskResult{}, err
	}
	node, err := task(rec.Tree, name)
	if err != nil {
		return TaskResult{}, err
	}
	qname := rec.Tree.QualifiedName(node)

	rec.Tree.SetStatus(node, evaluation.StatusRunning)
	if err := rec.Save(); err != nil {
		return TaskResult{}, err
	}

	transcript := &Transcript{}
	recorder := cmd.NewRecorder(func(ev cmd.Event) {
		transcript.Listen(ev)
		if listener != nil {
			listener(ev)
		}
	})
	l.Debug("running task", "repo", pc.Label(), "task", qname, "commands", len(node.Commands), "shell", strings.Join(w.Runner.Shell(), " "))
	w.Runner.Run(ctx, node.Commands, pc.RepositoryPath, recorder.Listen).Wait()
	outcome := recorder.Outcome()

	result := TaskResult{Index: pc.PlaceholderValue, Task: qname, Outcome: outcome, Max: node.Max()}

	var errs []error
	ref, logErr := w.Logs.Write(pc.EvaluationDirectory, qname, node.Commands, transcript.String())
	if logErr != nil {
		l.Warn("could not write command log", "task", qname, "err", logErr)
		errs = append(errs, logErr)
	} else {
		rec.LogRefs[qname] = ref
		result.LogFile = ref
	}

	grade(rec.Tree, node, outcome)
	result.Points = node.Points()
	if err := rec.Save(); err != nil {
		errs = append(errs, err)
	}
	return result, errors.Join(errs...)
}

// grade awards full points on success and zero otherwise.
func grade(tree *evaluation.Tree, n *evaluation.Node, outcome cmd.Outcome) {
	switch outcome {
	case cmd.OutcomeSuccess:
		tree.SetPoints(n, n.Max())
		tree.SetStatus(n, evaluation.StatusSuccess)
	case cmd.OutcomeCancelled:
		tree.SetPoints(n, 0)
		tree.SetStatus(n, evaluation.StatusCancelled)
	default:
		tree.SetPoints(n, 0)
		tree.SetStatus(n, evaluation.StatusFailed)
	}
}

// BatchResult is the outcome of one repository in RunBatch.
type BatchResult struct {
	TaskResult
	Err error
}

// RunBatch runs task name in every repository of contexts, one after
// another. listen, if non-nil, returns the event listener for a repository.
// Repositories not yet started when ctx is cancelled are skipped.
func (w *Workspace) RunBatch(ctx context.Context, contexts []prepare.Context, name string, listen func(prepare.Context) cmd.Listener) []BatchResult {
	results := make([]BatchResult, 0, len(contexts))
	for _, pc := range contexts {
		if ctx.Err() != nil {
			break
		}
		var listener cmd.Listener
		if listen != nil {
			listener = listen(pc)
		}
		res, err := w.RunTask(ctx, pc, name, listener)
		if res.Index == 0 {
			res.Index = pc.PlaceholderValue
			res.Task = name
		}
		results = append(results, BatchResult{TaskResult: res, Err: err})
	}
	return results
}
