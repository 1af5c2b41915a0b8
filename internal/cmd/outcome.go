package cmd

import "sync"

// Outcome classifies a finished batch.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomeFailed:
		return "FAILED"
	case OutcomeCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

// Recorder classifies a batch from its events and forwards them to an
// optional next listener. Pass Recorder.Listen to Runner.Run.
type Recorder struct {
	next Listener

	mu        sync.Mutex
	failed    bool
	cancelled bool
	finished  bool
}

// NewRecorder creates a recorder forwarding to next, which may be nil.
func NewRecorder(next Listener) *Recorder {
	return &Recorder{next: next}
}

// Listen records ev and passes it on.
func (r *Recorder) Listen(ev Event) {
	r.mu.Lock()
	switch ev.Kind {
	case EventFinished:
		if ev.ExitCode != 0 {
			r.failed = true
		}
	case EventFailed:
		r.failed = true
	case EventAllFinished:
		r.finished = true
		r.cancelled = ev.Cancelled
	}
	r.mu.Unlock()

	if r.next != nil {
		r.next(ev)
	}
}

// Outcome returns the classification: cancelled wins over failed, which
// wins over success.
func (r *Recorder) Outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.cancelled:
		return OutcomeCancelled
	case r.failed:
		return OutcomeFailed
	default:
		return OutcomeSuccess
	}
}

// Finished reports whether the AllFinished event was seen.
func (r *Recorder) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}
