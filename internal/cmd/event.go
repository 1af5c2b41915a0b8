package cmd

import "fmt"

// EventKind is the closed set of things a batch reports.
type EventKind int

const (
	EventStarted EventKind = iota
	EventStdout
	EventStderr
	EventFinished
	EventFailed
	EventAllFinished
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStdout:
		return "stdout"
	case EventStderr:
		return "stderr"
	case EventFinished:
		return "finished"
	case EventFailed:
		return "failed"
	case EventAllFinished:
		return "all-finished"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one notification from a running batch. Which fields are set
// depends on Kind:
//
//   - Started: Command
//   - Stdout, Stderr: Command, Line (without line terminator)
//   - Finished: Command, ExitCode
//   - Failed: Command, Err
//   - AllFinished: Cancelled
type Event struct {
	Kind      EventKind
	Command   string
	Line      string
	ExitCode  int
	Err       error
	Cancelled bool
}

// Listener receives batch events. Calls are serialized.
type Listener func(Event)
