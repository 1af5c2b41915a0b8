package checkout

import (
	"fmt"
	"strings"
)

// Mode is the rule used to pick a deterministic commit.
type Mode int

const (
	ModeTag Mode = iota
	ModeDeadline
	ModeHead
)

var modeNames = map[Mode]string{
	ModeTag:      "TAG",
	ModeDeadline: "DEADLINE",
	ModeHead:     "HEAD",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == upper {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown checkout mode %q", s)
}
