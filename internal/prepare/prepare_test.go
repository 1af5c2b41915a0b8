package prepare

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phlp/studeval/internal/checkout"
	"github.com/phlp/studeval/internal/state"
	"github.com/phlp/studeval/internal/storage"
)

// fakeGit "clones" by creating the directory. URLs containing an entry of
// unreachable fail.
type fakeGit struct {
	mu          sync.Mutex
	unreachable []string
	// cloneErr replaces the default error for unreachable URLs.
	cloneErr error
	cloned   []string
}

func (f *fakeGit) CloneOrUpdate(_ context.Context, url, dir string) error {
	for _, u := range f.unreachable {
		if strings.Contains(url, u) {
			if f.cloneErr != nil {
				return f.cloneErr
			}
			return errors.New("repository not found")
		}
	}
	f.mu.Lock()
	f.cloned = append(f.cloned, url)
	f.mu.Unlock()
	return os.MkdirAll(dir, 0o755)
}

func (f *fakeGit) TagCommit(context.Context, string, string) (checkout.Commit, error) {
	return checkout.Commit{}, checkout.ErrTagNotFound
}

func (f *fakeGit) CheckoutCommit(context.Context, string, string) error { return nil }

func (f *fakeGit) Head(context.Context, string) (string, error) {
	return "0123456789abcdef0123456789abcdef01234567", nil
}

func (f *fakeGit) DefaultBranchHead(context.Context, string) (string, error) {
	return "0123456789abcdef0123456789abcdef01234567", nil
}

func (f *fakeGit) WalkCommits(_ context.Context, _, from string, fn func(checkout.Commit) bool) error {
	fn(checkout.Commit{ID: from, Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	return nil
}

func newTestRequest(t *testing.T, base string, start, end int, opts ...Option) Request {
	t.Helper()
	rng, err := NewRange(start, end)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	opts = append([]Option{
		WithRepositoriesRoot(filepath.Join(base, "repos")),
		WithEvaluationsRoot(filepath.Join(base, "evaluations", "exam")),
		WithEvaluationFileName("exam.json"),
		WithEvaluationTitle("Exam"),
	}, opts...)
	req, err := NewRequest("https://git.example.com/student-{{number}}.git", rng, opts...)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return req
}

func TestNewRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		start, end int
		want       []int
		wantErr    bool
	}{
		{1, 1, []int{1}, false},
		{1, 3, []int{1, 2, 3}, false},
		{7, 9, []int{7, 8, 9}, false},
		{0, 3, nil, true},
		{-1, 3, nil, true},
		{5, 4, nil, true},
	}

	for _, tt := range tests {
		rng, err := NewRange(tt.start, tt.end)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("NewRange(%d, %d) error = %v, want ErrInvalidRange", tt.start, tt.end, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NewRange(%d, %d): %v", tt.start, tt.end, err)
		}
		if got := rng.Values(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Values() = %v, want %v", got, tt.want)
		}
		if rng.Len() != tt.end-tt.start+1 {
			t.Errorf("Len() = %d", rng.Len())
		}
	}
}

func TestRequest_URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		template    string
		placeholder string
		want        string
	}{
		{"default token", "https://h/s-{{number}}.git", "", "https://h/s-007.git"},
		{"custom token", "https://h/s-<NR>.git", "<NR>", "https://h/s-007.git"},
		{"custom token is trimmed", "https://h/s-<NR>.git", "  <NR> ", "https://h/s-007.git"},
		{"custom token missing falls back", "https://h/s-{{number}}.git", "<NR>", "https://h/s-007.git"},
		{"repeated token", "git@h:{{number}}/{{number}}.git", "", "git@h:007/007.git"},
		{"no token is verbatim", "https://h/shared.git", "", "https://h/shared.git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := Request{Template: tt.template, Placeholder: tt.placeholder}
			if got := r.URL(7); got != tt.want {
				t.Errorf("URL(7) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRequest_Validation(t *testing.T) {
	t.Parallel()

	rng := Range{Start: 1, End: 2}
	roots := []Option{WithRepositoriesRoot("/r"), WithEvaluationsRoot("/e"), WithEvaluationFileName("x.json")}

	if _, err := NewRequest("   ", rng, roots...); !errors.Is(err, ErrBlankTemplate) {
		t.Errorf("blank template error = %v", err)
	}
	if _, err := NewRequest("t", Range{Start: 3, End: 1}, roots...); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("bad range error = %v", err)
	}
	if _, err := NewRequest("t", rng, WithEvaluationsRoot("/e"), WithEvaluationFileName("x")); err == nil {
		t.Error("missing repositories root accepted")
	}
	if _, err := NewRequest("t", rng, WithRepositoriesRoot("/r"), WithEvaluationsRoot("/e")); err == nil {
		t.Error("missing evaluation file name accepted")
	}
	if _, err := NewRequest("t", rng, roots...); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

func TestPrepare_SkipsFailedIndex(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	git := &fakeGit{unreachable: []string{"student-002"}}
	p := NewPreparer(git)
	req := newTestRequest(t, base, 1, 3)

	var calls [][2]int
	result := p.Prepare(context.Background(), req, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})

	if len(result.Contexts) != 2 {
		t.Fatalf("got %d contexts, want 2", len(result.Contexts))
	}
	if result.Contexts[0].PlaceholderValue != 1 || result.Contexts[1].PlaceholderValue != 3 {
		t.Errorf("contexts = %d, %d; want 1, 3", result.Contexts[0].PlaceholderValue, result.Contexts[1].PlaceholderValue)
	}
	if !strings.Contains(result.Errors, "[002]") {
		t.Errorf("errors %q do not mention [002]", result.Errors)
	}
	if !strings.Contains(result.Errors, "(repository not found)") {
		t.Errorf("errors %q do not carry the cause", result.Errors)
	}
	if result.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", result.Failed())
	}
	if len(result.Contexts)+result.Failed() != req.Range.Len() {
		t.Error("contexts + failures != range length")
	}
	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("progress calls = %v, want %v", calls, want)
	}

	first := result.Contexts[0]
	if first.RepositoryPath != filepath.Join(base, "repos", "001") {
		t.Errorf("RepositoryPath = %q", first.RepositoryPath)
	}
	if first.EvaluationFile != filepath.Join(base, "evaluations", "exam", "001", "exam.json") {
		t.Errorf("EvaluationFile = %q", first.EvaluationFile)
	}
	if !storage.Exists(first.LogsDirectory) {
		t.Error("logs directory not created")
	}

	data, err := state.Load(first.EvaluationFile)
	if err != nil {
		t.Fatalf("state.Load: %v", err)
	}
	if data.RepositoryURL != "https://git.example.com/student-001.git" {
		t.Errorf("seeded url = %q", data.RepositoryURL)
	}
	if data.CheckoutStrategy != "HEAD" || data.EvaluationTitle != "Exam" || *data.PlaceholderValue != 1 {
		t.Errorf("seeded state = %+v", data)
	}
}

func TestPrepare_DeadlineStrategy(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	p := NewPreparer(&fakeGit{})
	req := newTestRequest(t, base, 4, 4, WithTag("final"), WithDeadline(checkout.Date{Year: 2024, Month: time.May, Day: 1}))

	result := p.Prepare(context.Background(), req, nil)
	if result.Failed() != 0 {
		t.Fatalf("unexpected errors: %s", result.Errors)
	}
	got, _ := result.Contexts[0].CheckoutInfo.Strategy.Encode()
	if got != "DEADLINE:2024-05-01" {
		t.Errorf("strategy = %q, want DEADLINE:2024-05-01", got)
	}
}

func TestPrepare_KeepsExistingState(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	req := newTestRequest(t, base, 1, 1)
	evalFile := filepath.Join(req.EvaluationsRoot, "001", "exam.json")
	if err := state.Write(evalFile, &state.SaveData{
		Nodes: map[string]state.NodeState{"Build": {AchievedPoints: 3}},
	}); err != nil {
		t.Fatal(err)
	}

	result := NewPreparer(&fakeGit{}).Prepare(context.Background(), req, nil)
	if result.Failed() != 0 {
		t.Fatalf("unexpected errors: %s", result.Errors)
	}

	data, err := state.Load(evalFile)
	if err != nil {
		t.Fatal(err)
	}
	if data.Nodes["Build"].AchievedPoints != 3 {
		t.Errorf("existing state overwritten: %+v", data)
	}
}

func TestPrepare_MigratesLegacyData(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	req := newTestRequest(t, base, 1, 2)

	// 001: flat file in the evaluations root; 002: flat file one level up.
	writeFile(t, filepath.Join(req.EvaluationsRoot, "001.json"), `{"repositoryUrl":"legacy-1","nodes":{}}`)
	writeFile(t, filepath.Join(filepath.Dir(req.EvaluationsRoot), "002.json"), `{"repositoryUrl":"legacy-2","nodes":{}}`)
	writeFile(t, filepath.Join(req.RepositoriesRoot, "001", ".eval", "logs", "old.log"), "output")

	result := NewPreparer(&fakeGit{}).Prepare(context.Background(), req, nil)
	if result.Failed() != 0 {
		t.Fatalf("unexpected errors: %s", result.Errors)
	}

	for i, want := range []string{"legacy-1", "legacy-2"} {
		data, err := state.Load(result.Contexts[i].EvaluationFile)
		if err != nil {
			t.Fatalf("state.Load: %v", err)
		}
		if data.RepositoryURL != want {
			t.Errorf("context %d url = %q, want %q", i, data.RepositoryURL, want)
		}
	}
	if storage.Exists(filepath.Join(req.EvaluationsRoot, "001.json")) {
		t.Error("legacy flat file not removed")
	}

	if !storage.Exists(filepath.Join(result.Contexts[0].LogsDirectory, "old.log")) {
		t.Error("legacy log not migrated")
	}
	if storage.Exists(filepath.Join(req.RepositoriesRoot, "001", ".eval")) {
		t.Error("empty .eval directory not removed")
	}
}

func TestPrepareAsync(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	req := newTestRequest(t, base, 1, 2)

	ch := NewPreparer(&fakeGit{}).PrepareAsync(context.Background(), req, nil)
	select {
	case result, ok := <-ch:
		if !ok {
			t.Fatal("channel closed without result")
		}
		if len(result.Contexts) != 2 {
			t.Errorf("got %d contexts, want 2", len(result.Contexts))
		}
	case <-time.After(10 * time.Second):
		t.Fatal("PrepareAsync did not deliver a result")
	}
	if _, ok := <-ch; ok {
		t.Error("channel delivered a second result")
	}
}

func TestErrorLine(t *testing.T) {
	t.Parallel()

	got := errorLine(12, stepErr("could not clone or update repository", errors.New("auth failed")))
	if got != "[012] could not clone or update repository (auth failed)\n" {
		t.Errorf("errorLine = %q", got)
	}

	got = errorLine(3, errors.New("plain"))
	if got != "[003] plain\n" {
		t.Errorf("errorLine = %q", got)
	}

	got = errorLine(4, stepErr("could not check out repository", errors.New("first\n  second\r\nthird")))
	if got != "[004] could not check out repository (first second third)\n" {
		t.Errorf("errorLine = %q", got)
	}
}

func TestPrepare_MultiLineCauseCountsOnce(t *testing.T) {
	t.Parallel()

	git := &fakeGit{
		unreachable: []string{"student-"},
		cloneErr:    errors.New("remote: Repository not found.\nfatal: could not read from remote\n"),
	}
	req := newTestRequest(t, t.TempDir(), 1, 2)

	result := NewPreparer(git).Prepare(context.Background(), req, nil)
	if len(result.Contexts) != 0 {
		t.Fatalf("got %d contexts, want 0", len(result.Contexts))
	}
	if result.Failed() != 2 {
		t.Errorf("Failed() = %d, want 2; errors:\n%s", result.Failed(), result.Errors)
	}
	if len(result.Contexts)+result.Failed() != req.Range.Len() {
		t.Error("contexts + failures != range length")
	}
	want := []string{
		"[001] could not clone or update repository (remote: Repository not found. fatal: could not read from remote)",
		"[002] could not clone or update repository (remote: Repository not found. fatal: could not read from remote)",
	}
	if got := result.ErrorLines(); !reflect.DeepEqual(got, want) {
		t.Errorf("ErrorLines() = %q, want %q", got, want)
	}
}

func TestPrepare_LogsDirectoryFailureSkipsIndex(t *testing.T) {
	t.Parallel()

	req := newTestRequest(t, t.TempDir(), 1, 2)
	// A regular file where the logs directory of 001 belongs.
	writeFile(t, filepath.Join(req.EvaluationsRoot, "001", "logs"), "not a directory")

	result := NewPreparer(&fakeGit{}).Prepare(context.Background(), req, nil)
	if len(result.Contexts) != 1 || result.Contexts[0].PlaceholderValue != 2 {
		t.Fatalf("contexts = %+v, want only 002", result.Contexts)
	}
	lines := result.ErrorLines()
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "[001] could not create logs directory") {
		t.Errorf("ErrorLines() = %q", lines)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
