package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/phlp/studeval/internal/log"
)

func logCtx() context.Context {
	l := log.New(&bytes.Buffer{}, false, false)
	return log.WithLogger(context.Background(), l)
}

func skipWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
}

// collector records events; the engine serializes calls, the mutex guards
// reads from the test goroutine.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) listen(ev Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) kinds() []EventKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	kinds := make([]EventKind, 0, len(c.events))
	for _, ev := range c.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func (c *collector) ofKind(kind EventKind) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, ev := range c.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func waitDone(t *testing.T, e *Execution, timeout time.Duration) {
	t.Helper()
	select {
	case <-e.Done():
	case <-time.After(timeout):
		t.Fatalf("execution did not finish within %v", timeout)
	}
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	c := &collector{}
	rec := NewRecorder(c.listen)
	e := NewRunner().Run(logCtx(), []string{"true", "false", "true"}, t.TempDir(), rec.Listen)
	waitDone(t, e, 10*time.Second)

	finished := c.ofKind(EventFinished)
	if len(finished) != 2 {
		t.Fatalf("got %d Finished events, want 2", len(finished))
	}
	if finished[0].ExitCode != 0 || finished[1].ExitCode == 0 {
		t.Errorf("exit codes = %d, %d", finished[0].ExitCode, finished[1].ExitCode)
	}
	if got := rec.Outcome(); got != OutcomeFailed {
		t.Errorf("Outcome() = %v, want FAILED", got)
	}

	want := []EventKind{EventStarted, EventFinished, EventStarted, EventFinished, EventAllFinished}
	if got := c.kinds(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	all := c.ofKind(EventAllFinished)
	if len(all) != 1 || all[0].Cancelled {
		t.Errorf("AllFinished = %+v", all)
	}
}

func TestRun_Success(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	c := &collector{}
	rec := NewRecorder(c.listen)
	e := NewRunner().Run(logCtx(), []string{"echo one", "echo two >&2"}, t.TempDir(), rec.Listen)
	e.Wait()

	if got := rec.Outcome(); got != OutcomeSuccess {
		t.Errorf("Outcome() = %v, want SUCCESS", got)
	}
	if !rec.Finished() {
		t.Error("recorder did not see AllFinished")
	}

	stdout := c.ofKind(EventStdout)
	if len(stdout) != 1 || stdout[0].Line != "one" || stdout[0].Command != "echo one" {
		t.Errorf("stdout events = %+v", stdout)
	}
	stderr := c.ofKind(EventStderr)
	if len(stderr) != 1 || stderr[0].Line != "two" {
		t.Errorf("stderr events = %+v", stderr)
	}
}

func TestRun_OutputOrderPerStream(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	c := &collector{}
	e := NewRunner().Run(logCtx(), []string{"for i in 1 2 3 4 5; do echo $i; done; printf tail"}, t.TempDir(), c.listen)
	e.Wait()

	var lines []string
	for _, ev := range c.ofKind(EventStdout) {
		lines = append(lines, ev.Line)
	}
	want := []string{"1", "2", "3", "4", "5", "tail"}
	if !slices.Equal(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}

	kinds := c.kinds()
	if kinds[0] != EventStarted || kinds[len(kinds)-1] != EventAllFinished || kinds[len(kinds)-2] != EventFinished {
		t.Errorf("unexpected event order %v", kinds)
	}
}

func TestRun_StreamsBeforeExit(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	first := make(chan time.Time, 1)
	var once sync.Once
	listener := func(ev Event) {
		if ev.Kind == EventStdout {
			once.Do(func() { first <- time.Now() })
		}
	}

	start := time.Now()
	e := NewRunner().Run(logCtx(), []string{"echo early; sleep 1; echo late"}, t.TempDir(), listener)

	select {
	case at := <-first:
		if at.Sub(start) > 900*time.Millisecond {
			t.Errorf("first line arrived after %v", at.Sub(start))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no output received")
	}
	e.Wait()
}

func TestRun_WorkingDirectory(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := &collector{}
	rec := NewRecorder(c.listen)
	NewRunner().Run(logCtx(), []string{"test -f marker.txt"}, dir, rec.Listen).Wait()
	if got := rec.Outcome(); got != OutcomeSuccess {
		t.Errorf("Outcome() = %v, want SUCCESS", got)
	}
}

func TestRun_MissingDirectoryFails(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	c := &collector{}
	rec := NewRecorder(c.listen)
	dir := filepath.Join(t.TempDir(), "missing")
	NewRunner().Run(logCtx(), []string{"true", "true"}, dir, rec.Listen).Wait()

	failed := c.ofKind(EventFailed)
	if len(failed) != 1 || failed[0].Err == nil {
		t.Fatalf("Failed events = %+v", failed)
	}
	if len(c.ofKind(EventStarted)) != 1 {
		t.Error("batch continued after a spawn failure")
	}
	if got := rec.Outcome(); got != OutcomeFailed {
		t.Errorf("Outcome() = %v, want FAILED", got)
	}
}

func TestExecution_Cancel(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	c := &collector{}
	rec := NewRecorder(c.listen)
	started := make(chan struct{})
	var once sync.Once
	listener := func(ev Event) {
		rec.Listen(ev)
		if ev.Kind == EventStarted {
			once.Do(func() { close(started) })
		}
	}

	e := NewRunner().Run(logCtx(), []string{"sleep 30", "echo never"}, t.TempDir(), listener)
	<-started
	time.Sleep(100 * time.Millisecond)

	begin := time.Now()
	e.Cancel()
	waitDone(t, e, 3*time.Second)
	if elapsed := time.Since(begin); elapsed > 1500*time.Millisecond {
		t.Errorf("cancel took %v", elapsed)
	}

	all := c.ofKind(EventAllFinished)
	if len(all) != 1 || !all[0].Cancelled {
		t.Fatalf("AllFinished = %+v, want one cancelled", all)
	}
	if len(c.ofKind(EventStarted)) != 1 {
		t.Error("a command started after cancel")
	}
	if got := rec.Outcome(); got != OutcomeCancelled {
		t.Errorf("Outcome() = %v, want CANCELLED", got)
	}
	if !e.Cancelled() {
		t.Error("Cancelled() = false")
	}

	e.Cancel() // idempotent
}

func TestExecution_CancelEscalatesToKill(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	c := &collector{}
	started := make(chan struct{})
	var once sync.Once
	listener := func(ev Event) {
		c.listen(ev)
		if ev.Kind == EventStdout {
			once.Do(func() { close(started) })
		}
	}

	r := NewRunner(WithKillGrace(200 * time.Millisecond))
	e := r.Run(logCtx(), []string{"trap '' TERM; echo ready; while :; do sleep 0.05; done"}, t.TempDir(), listener)
	<-started

	e.Cancel()
	waitDone(t, e, 5*time.Second)

	all := c.ofKind(EventAllFinished)
	if len(all) != 1 || !all[0].Cancelled {
		t.Fatalf("AllFinished = %+v", all)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	ctx, cancel := context.WithCancel(logCtx())
	c := &collector{}
	e := NewRunner().Run(ctx, []string{"sleep 30"}, t.TempDir(), c.listen)
	time.Sleep(100 * time.Millisecond)
	cancel()

	waitDone(t, e, 3*time.Second)
	all := c.ofKind(EventAllFinished)
	if len(all) != 1 || !all[0].Cancelled {
		t.Errorf("AllFinished = %+v", all)
	}
}

func TestRun_DrainTimeoutWithBackgroundChild(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	c := &collector{}
	r := NewRunner(WithDrainTimeout(300 * time.Millisecond))
	start := time.Now()
	// The background sleep inherits stdout and keeps the pipe open.
	e := r.Run(logCtx(), []string{"echo hi; sleep 5 &"}, t.TempDir(), c.listen)
	waitDone(t, e, 4*time.Second)

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("batch took %v despite drain timeout", elapsed)
	}
	if finished := c.ofKind(EventFinished); len(finished) != 1 || finished[0].ExitCode != 0 {
		t.Errorf("Finished = %+v", finished)
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	t.Parallel()

	c := &collector{}
	NewRunner().Run(logCtx(), nil, t.TempDir(), c.listen).Wait()
	if got := c.kinds(); !slices.Equal(got, []EventKind{EventAllFinished}) {
		t.Errorf("events = %v", got)
	}
}

func TestListenerCallsAreSerialized(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	var (
		active  int
		overlap bool
		mu      sync.Mutex
	)
	listener := func(ev Event) {
		mu.Lock()
		active++
		if active > 1 {
			overlap = true
		}
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
	}

	cmd := "for i in 1 2 3 4 5 6 7 8; do echo out$i; echo err$i >&2; done"
	NewRunner().Run(logCtx(), []string{cmd}, t.TempDir(), listener).Wait()

	if overlap {
		t.Error("listener was called concurrently")
	}
}
