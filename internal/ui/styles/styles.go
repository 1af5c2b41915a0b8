// Package styles provides shared lipgloss styles for terminal output.
//
// Colors come from the active [Theme]; call [Init] after loading config and
// before rendering anything.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for UI components
type Theme struct {
	Primary color.Color // borders, titles, progress start
	Accent  color.Color // progress end, highlights
	Success color.Color
	Error   color.Color
	Warning color.Color
	Muted   color.Color
}

var (
	// DefaultTheme is the default 256-color scheme
	DefaultTheme = Theme{
		Primary: lipgloss.Color("62"),  // cyan/teal
		Accent:  lipgloss.Color("212"), // pink/magenta
		Success: lipgloss.Color("82"),  // green
		Error:   lipgloss.Color("196"), // red
		Warning: lipgloss.Color("214"), // orange
		Muted:   lipgloss.Color("240"), // dark gray
	}

	// NordTheme is based on the Nord color scheme
	NordTheme = Theme{
		Primary: lipgloss.Color("#88c0d0"),
		Accent:  lipgloss.Color("#b48ead"),
		Success: lipgloss.Color("#a3be8c"),
		Error:   lipgloss.Color("#bf616a"),
		Warning: lipgloss.Color("#ebcb8b"),
		Muted:   lipgloss.Color("#4c566a"),
	}

	// NoneTheme renders without colors; bold and italic are preserved
	NoneTheme = Theme{
		Primary: lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
	}
)

var themes = map[string]Theme{
	"":        DefaultTheme,
	"default": DefaultTheme,
	"nord":    NordTheme,
	"none":    NoneTheme,
}

var currentTheme = DefaultTheme

// Styles derived from the current theme. Reassigned by Init.
var (
	Bold         = lipgloss.NewStyle().Bold(true)
	PrimaryStyle lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	MutedStyle   lipgloss.Style
)

func init() {
	applyTheme(DefaultTheme)
}

// Names returns the known theme names.
func Names() []string {
	return []string{"default", "nord", "none"}
}

// Valid reports whether name refers to a known theme. Empty is valid.
func Valid(name string) bool {
	_, ok := themes[name]
	return ok
}

// Init selects the theme by name. Unknown names fall back to the default.
func Init(name string) {
	theme, ok := themes[name]
	if !ok {
		theme = DefaultTheme
	}
	currentTheme = theme
	applyTheme(theme)
}

// Current returns the current theme
func Current() Theme {
	return currentTheme
}

func applyTheme(t Theme) {
	PrimaryStyle = lipgloss.NewStyle().Foreground(t.Primary)
	SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	ErrorStyle = lipgloss.NewStyle().Foreground(t.Error).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(t.Warning)
	MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
}
