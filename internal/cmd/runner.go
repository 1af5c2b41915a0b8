package cmd

import (
	"context"
	"time"

	"github.com/phlp/studeval/internal/log"
)

const (
	// DefaultDrainTimeout bounds how long output readers may lag behind a
	// command's exit.
	DefaultDrainTimeout = 2 * time.Second
	// DefaultKillGrace is the time between SIGTERM and SIGKILL on cancel.
	DefaultKillGrace = 500 * time.Millisecond
)

// Runner starts command batches. The zero value is not usable; create one
// with NewRunner.
type Runner struct {
	shell        []string
	drainTimeout time.Duration
	killGrace    time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithShell replaces the shell argv the command string is appended to.
// An empty argv keeps the platform default.
func WithShell(argv ...string) Option {
	return func(r *Runner) {
		if len(argv) > 0 {
			r.shell = append([]string(nil), argv...)
		}
	}
}

// WithDrainTimeout sets how long to wait for output readers after a command
// exited. Non-positive values keep the default.
func WithDrainTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.drainTimeout = d
		}
	}
}

// WithKillGrace sets the delay between terminate and kill on cancel.
// Non-positive values keep the default.
func WithKillGrace(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.killGrace = d
		}
	}
}

// NewRunner creates a runner using the platform shell.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		shell:        DefaultShell(),
		drainTimeout: DefaultDrainTimeout,
		killGrace:    DefaultKillGrace,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Shell returns the shell argv commands are appended to.
func (r *Runner) Shell() []string {
	return append([]string(nil), r.shell...)
}

// Run starts commands in dir on a new goroutine and returns immediately.
// listener must not be nil. Cancelling ctx cancels the execution.
func (r *Runner) Run(ctx context.Context, commands []string, dir string, listener Listener) *Execution {
	e := &Execution{
		runner:   r,
		dir:      dir,
		listener: listener,
		done:     make(chan struct{}),
	}
	cmds := append([]string(nil), commands...)

	stop := context.AfterFunc(ctx, e.Cancel)
	go func() {
		defer close(e.done)
		defer stop()
		e.run(log.FromContext(ctx), cmds)
	}()
	return e
}
