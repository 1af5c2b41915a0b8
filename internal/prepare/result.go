package prepare

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phlp/studeval/internal/checkout"
)

// Context is one successfully prepared repository.
type Context struct {
	PlaceholderValue    int
	RepositoryURL       string
	RepositoryPath      string
	EvaluationDirectory string
	EvaluationFile      string
	LogsDirectory       string
	CheckoutInfo        checkout.Info
}

// Label returns the zero-padded index.
func (c Context) Label() string {
	return Label(c.PlaceholderValue)
}

// Result is the outcome of a batch.
type Result struct {
	Contexts []Context
	// Errors holds one "[NNN] message (cause)" line per failed index.
	Errors string
}

// Failed returns the number of indices that could not be prepared.
func (r Result) Failed() int {
	n := 0
	for line := range strings.Lines(r.Errors) {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// ErrorLines returns the error lines without trailing newlines.
func (r Result) ErrorLines() []string {
	var lines []string
	for line := range strings.Lines(r.Errors) {
		if line = strings.TrimRight(line, "\r\n"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// StepError is a failure of one preparation step.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return e.Step
	}
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error { return e.Err }

func stepErr(step string, err error) error {
	return &StepError{Step: step, Err: err}
}

// errorLine renders err as "[NNN] step (cause)" on a single line, so that
// every failed index contributes exactly one line to Result.Errors.
func errorLine(index int, err error) string {
	msg := singleLine(err.Error())
	var se *StepError
	if errors.As(err, &se) {
		msg = singleLine(se.Step)
		if se.Err != nil {
			if cause := singleLine(se.Err.Error()); cause != "" {
				msg += " (" + cause + ")"
			}
		}
	}
	return fmt.Sprintf("[%s] %s\n", Label(index), msg)
}

// singleLine collapses all whitespace runs, line breaks included, into
// single spaces.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
