package styles

import (
	"testing"

	"charm.land/lipgloss/v2"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name        string
		theme       string
		wantPrimary any
	}{
		{"default", "default", lipgloss.Color("62")},
		{"empty falls back to default", "", lipgloss.Color("62")},
		{"nord", "nord", lipgloss.Color("#88c0d0")},
		{"unknown falls back to default", "solarized", lipgloss.Color("62")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.theme)
			if got := Current().Primary; got != tt.wantPrimary {
				t.Errorf("Init(%q) primary = %v, want %v", tt.theme, got, tt.wantPrimary)
			}
		})
	}
	Init("default")
}

func TestValid(t *testing.T) {
	t.Parallel()
	for _, name := range Names() {
		if !Valid(name) {
			t.Errorf("Valid(%q) = false, want true", name)
		}
	}
	if Valid("solarized") {
		t.Error("Valid(solarized) = true, want false")
	}
}
