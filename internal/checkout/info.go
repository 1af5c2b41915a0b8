package checkout

import "strings"

// Info is the outcome of a checkout: the commit id that is checked out and
// the strategy that selected it.
type Info struct {
	reference string
	Strategy  Strategy
}

// NewInfo creates an Info. A blank reference is treated as absent.
func NewInfo(reference string, strategy Strategy) Info {
	return Info{reference: strings.TrimSpace(reference), Strategy: strategy}
}

// Ref returns the checked out commit id, if known.
func (i Info) Ref() (string, bool) {
	return i.reference, i.reference != ""
}

// ShortRef returns the first 8 characters of the commit id, or "-".
func (i Info) ShortRef() string {
	if i.reference == "" {
		return "-"
	}
	return i.reference[:min(8, len(i.reference))]
}

// Label describes strategy and commit, e.g. "Tag v1.0 (1a2b3c4d)".
func (i Info) Label() string {
	if i.reference == "" {
		return i.Strategy.Label()
	}
	return i.Strategy.Label() + " (" + i.ShortRef() + ")"
}
