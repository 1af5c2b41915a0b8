package checkout

import "strings"

// Strategy is a checkout mode plus its detail: the tag name for ModeTag,
// the ISO date for ModeDeadline and nothing for ModeHead.
// The zero value is the empty strategy with no mode.
type Strategy struct {
	mode    Mode
	hasMode bool
	detail  string
}

// NoStrategy returns the empty strategy.
func NoStrategy() Strategy {
	return Strategy{}
}

// NewStrategy creates a strategy. The detail is trimmed; blank means absent.
func NewStrategy(mode Mode, detail string) Strategy {
	return Strategy{mode: mode, hasMode: true, detail: strings.TrimSpace(detail)}
}

// Mode returns the mode, if any.
func (s Strategy) Mode() (Mode, bool) {
	return s.mode, s.hasMode
}

// Detail returns the detail, if any.
func (s Strategy) Detail() (string, bool) {
	return s.detail, s.detail != ""
}

// Encode renders the strategy as MODE or MODE:detail.
// Returns false for the empty strategy.
func (s Strategy) Encode() (string, bool) {
	if !s.hasMode {
		return "", false
	}
	if s.detail == "" {
		return s.mode.String(), true
	}
	return s.mode.String() + ":" + s.detail, true
}

// DecodeStrategy parses the output of Encode. Blank input or an unknown
// mode yields false.
func DecodeStrategy(encoded string) (Strategy, bool) {
	trimmed := strings.TrimSpace(encoded)
	if trimmed == "" {
		return Strategy{}, false
	}
	name, detail, _ := strings.Cut(trimmed, ":")
	mode, err := ParseMode(name)
	if err != nil {
		return Strategy{}, false
	}
	return NewStrategy(mode, detail), true
}

// Label renders a short human-readable description.
func (s Strategy) Label() string {
	if !s.hasMode {
		return "-"
	}
	detail := s.detail
	if detail == "" {
		detail = "-"
	}
	switch s.mode {
	case ModeTag:
		return "Tag " + detail
	case ModeDeadline:
		return "Commit before " + detail
	default:
		return "Current HEAD"
	}
}
