package prepare

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phlp/studeval/internal/checkout"
)

// DefaultPlaceholder is substituted by the zero-padded index when no other
// placeholder is configured or the configured one is not in the template.
const DefaultPlaceholder = "{{number}}"

// ErrBlankTemplate is returned when the URL template is empty.
var ErrBlankTemplate = errors.New("repository URL template is blank")

// Request describes one preparation batch. Build it with [NewRequest].
type Request struct {
	Template           string
	Range              Range
	RepositoriesRoot   string
	EvaluationsRoot    string
	EvaluationFileName string
	EvaluationTitle    string
	Placeholder        string
	Tag                string
	Deadline           *checkout.Date
}

// Option configures a Request.
type Option func(*Request)

// WithRepositoriesRoot sets the directory clones are placed in.
func WithRepositoriesRoot(dir string) Option {
	return func(r *Request) { r.RepositoriesRoot = dir }
}

// WithEvaluationsRoot sets the directory per-index evaluation directories are
// placed in.
func WithEvaluationsRoot(dir string) Option {
	return func(r *Request) { r.EvaluationsRoot = dir }
}

// WithEvaluationFileName sets the state file name inside each evaluation
// directory.
func WithEvaluationFileName(name string) Option {
	return func(r *Request) { r.EvaluationFileName = name }
}

// WithEvaluationTitle sets the title recorded in new state files.
func WithEvaluationTitle(title string) Option {
	return func(r *Request) { r.EvaluationTitle = title }
}

// WithPlaceholder sets the template token replaced by the index.
func WithPlaceholder(token string) Option {
	return func(r *Request) { r.Placeholder = token }
}

// WithTag checks out this tag when possible.
func WithTag(tag string) Option {
	return func(r *Request) { r.Tag = strings.TrimSpace(tag) }
}

// WithDeadline restricts checkouts to commits made on or before d.
func WithDeadline(d checkout.Date) Option {
	return func(r *Request) { r.Deadline = &d }
}

// NewRequest builds and validates a request.
func NewRequest(template string, rng Range, opts ...Option) (Request, error) {
	r := Request{
		Template: strings.TrimSpace(template),
		Range:    rng,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if err := r.Validate(); err != nil {
		return Request{}, err
	}
	return r, nil
}

// Validate checks that every required field is set.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Template) == "" {
		return ErrBlankTemplate
	}
	if _, err := NewRange(r.Range.Start, r.Range.End); err != nil {
		return err
	}
	if r.RepositoriesRoot == "" {
		return fmt.Errorf("repositories root is required")
	}
	if r.EvaluationsRoot == "" {
		return fmt.Errorf("evaluations root is required")
	}
	if strings.TrimSpace(r.EvaluationFileName) == "" {
		return fmt.Errorf("evaluation file name is required")
	}
	return nil
}

// URL builds the repository URL for index. The configured placeholder is
// replaced when present, else the default placeholder. A template holding
// neither is returned verbatim, so every index maps to the same URL.
func (r Request) URL(index int) string {
	placeholder := strings.TrimSpace(r.Placeholder)
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	value := Label(index)
	if strings.Contains(r.Template, placeholder) {
		return strings.ReplaceAll(r.Template, placeholder, value)
	}
	if strings.Contains(r.Template, DefaultPlaceholder) {
		return strings.ReplaceAll(r.Template, DefaultPlaceholder, value)
	}
	return r.Template
}
