package config

import (
	"strings"

	"github.com/phlp/studeval/internal/checkout"
)

// SheetOverrides holds command-line replacements for sheet fields.
// Nil pointers mean "not set" (keep the sheet value).
type SheetOverrides struct {
	Template    *string
	Placeholder *string
	Tag         *string
	Deadline    *checkout.Date
	NoDeadline  bool
}

// Apply returns a copy of s with the overrides applied. An empty Tag
// override clears the tag.
func (o SheetOverrides) Apply(s *Sheet) *Sheet {
	merged := *s
	if o.Template != nil {
		merged.RepositoryURLTemplate = strings.TrimSpace(*o.Template)
	}
	if o.Placeholder != nil {
		merged.RepositoryNumberPlaceholder = *o.Placeholder
	}
	if o.Tag != nil {
		merged.Tag = strings.TrimSpace(*o.Tag)
	}
	switch {
	case o.NoDeadline:
		merged.Deadline = nil
	case o.Deadline != nil:
		merged.Deadline = &Deadline{Date: *o.Deadline}
	}
	return &merged
}

// PlaceholderFor returns the sheet's placeholder, falling back to the
// configured default.
func (c *Config) PlaceholderFor(s *Sheet) string {
	if p := strings.TrimSpace(s.RepositoryNumberPlaceholder); p != "" {
		return p
	}
	return c.Placeholder
}
