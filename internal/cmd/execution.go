package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phlp/studeval/internal/log"
)

// Execution is a handle to a running batch.
type Execution struct {
	runner   *Runner
	dir      string
	listener Listener

	cancelled atomic.Bool

	mu   sync.Mutex
	proc *process

	emitMu sync.Mutex
	done   chan struct{}
}

// process is a started command; exited is closed once Wait returned.
type process struct {
	cmd    *exec.Cmd
	exited chan struct{}
}

// Cancel stops the batch. The running command's process group is
// terminated, then killed if it outlives the kill grace period. Cancel
// returns once the process exited or was killed. Safe to call more than
// once and after the batch finished.
func (e *Execution) Cancel() {
	e.cancelled.Store(true)

	e.mu.Lock()
	p := e.proc
	e.proc = nil
	e.mu.Unlock()

	if p != nil {
		p.stop(e.runner.killGrace)
	}
}

// Cancelled reports whether Cancel was called.
func (e *Execution) Cancelled() bool {
	return e.cancelled.Load()
}

// Done is closed after the AllFinished event was delivered.
func (e *Execution) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until the batch finished.
func (e *Execution) Wait() {
	<-e.done
}

func (e *Execution) emit(ev Event) {
	e.emitMu.Lock()
	defer e.emitMu.Unlock()
	e.listener(ev)
}

func (e *Execution) run(l *log.Logger, commands []string) {
	for _, command := range commands {
		if e.cancelled.Load() {
			break
		}
		e.emit(Event{Kind: EventStarted, Command: command})

		done := l.Command(e.dir, strings.Join(e.runner.shell, " "), command)
		start := time.Now()
		code, err := e.runOne(command)
		done(time.Since(start))

		if err != nil {
			l.Debug("command failed", "command", command, "err", err)
			e.emit(Event{Kind: EventFailed, Command: command, Err: err})
			break
		}
		e.emit(Event{Kind: EventFinished, Command: command, ExitCode: code})
		if code != 0 {
			break
		}
	}
	e.emit(Event{Kind: EventAllFinished, Cancelled: e.cancelled.Load()})
}

// runOne runs a single command to completion and returns its exit code.
// An error means the process could not be started or waited for.
func (e *Execution) runOne(command string) (int, error) {
	c := shellCommand(e.runner.shell, command)
	c.Dir = e.dir
	setProcessGroup(c)

	outR, outW, err := os.Pipe()
	if err != nil {
		return -1, fmt.Errorf("create stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return -1, fmt.Errorf("create stderr pipe: %w", err)
	}
	c.Stdout = outW
	c.Stderr = errW

	startErr := c.Start()
	// The child holds its own copies; ours must go so readers see EOF.
	outW.Close()
	errW.Close()
	if startErr != nil {
		outR.Close()
		errR.Close()
		return -1, startErr
	}

	p := &process{cmd: c, exited: make(chan struct{})}
	if !e.track(p) {
		go p.stop(e.runner.killGrace)
	}

	var g errgroup.Group
	g.Go(func() error { return e.forward(outR, EventStdout, command) })
	g.Go(func() error { return e.forward(errR, EventStderr, command) })

	waitErr := c.Wait()
	close(p.exited)
	e.untrack(p)

	e.joinDrains(&g, outR, errR)

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return -1, waitErr
		}
	}
	return exitCode(c.ProcessState), nil
}

// track registers p as the running process. It reports false if the batch
// was cancelled in the meantime, in which case p must be stopped by the
// caller.
func (e *Execution) track(p *process) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancelled.Load() {
		return false
	}
	e.proc = p
	return true
}

func (e *Execution) untrack(p *process) {
	e.mu.Lock()
	if e.proc == p {
		e.proc = nil
	}
	e.mu.Unlock()
}

// joinDrains waits for both readers, closing the pipes if they are still
// busy after the drain timeout (a grandchild may keep them open).
func (e *Execution) joinDrains(g *errgroup.Group, pipes ...*os.File) {
	drained := make(chan struct{})
	go func() {
		g.Wait()
		close(drained)
	}()

	timer := time.NewTimer(e.runner.drainTimeout)
	defer timer.Stop()
	select {
	case <-drained:
	case <-timer.C:
		for _, f := range pipes {
			f.Close()
		}
		<-drained
	}
	for _, f := range pipes {
		f.Close()
	}
}

// forward emits every line read from r. Read errors end forwarding quietly;
// they happen when the pipe is closed after the drain timeout.
func (e *Execution) forward(r io.Reader, kind EventKind, command string) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			e.emit(Event{Kind: kind, Command: command, Line: strings.TrimRight(line, "\r\n")})
		}
		if err != nil {
			return nil
		}
	}
}

// stop terminates the process group and kills it if it is still running
// after grace.
func (p *process) stop(grace time.Duration) {
	select {
	case <-p.exited:
		return
	default:
	}
	_ = terminate(p.cmd.Process)

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-p.exited:
	case <-timer.C:
		_ = kill(p.cmd.Process)
	}
}
