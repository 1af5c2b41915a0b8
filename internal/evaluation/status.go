package evaluation

import (
	"fmt"
	"strings"
)

// Status is the evaluation state of a node.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusSuccess   Status = "SUCCESS"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus parses a persisted status name, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusRunning, StatusSuccess, StatusFailed, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// aggregate folds child statuses: any failed, else any running, else any
// pending, else any cancelled, else success. No children is pending.
func aggregate(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusPending
	}
	var failed, running, pending, cancelled bool
	for _, s := range statuses {
		switch s {
		case StatusFailed:
			failed = true
		case StatusRunning:
			running = true
		case StatusCancelled:
			cancelled = true
		case StatusSuccess:
		default:
			pending = true
		}
	}
	switch {
	case failed:
		return StatusFailed
	case running:
		return StatusRunning
	case pending:
		return StatusPending
	case cancelled:
		return StatusCancelled
	}
	return StatusSuccess
}
