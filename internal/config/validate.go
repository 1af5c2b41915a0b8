package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// checkOneOf fails when value is set but not among allowed.
func checkOneOf(field, value string, allowed []string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s: unknown value %q (want %s)", field, value, listOptions(allowed))
}

// checkDuration fails for negative durations.
func checkDuration(field string, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%s must not be negative, got %s", field, d)
	}
	return nil
}

// listOptions renders ["a" "b" "c"] as `"a", "b" or "c"`.
func listOptions(opts []string) string {
	quoted := make([]string, 0, len(opts))
	for _, o := range opts {
		quoted = append(quoted, fmt.Sprintf("%q", o))
	}
	if n := len(quoted); n > 1 {
		return strings.Join(quoted[:n-1], ", ") + " or " + quoted[n-1]
	}
	return strings.Join(quoted, "")
}
