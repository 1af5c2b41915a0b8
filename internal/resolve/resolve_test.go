package resolve

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/phlp/studeval/internal/checkout"
	"github.com/phlp/studeval/internal/config"
	"github.com/phlp/studeval/internal/evaluation"
	"github.com/phlp/studeval/internal/prepare"
	"github.com/phlp/studeval/internal/session"
)

func sampleTree() *evaluation.Tree {
	return evaluation.Build([]config.Category{
		{Name: "Build", MaxPoints: 1},
		{Name: "Tests", Children: []config.Category{
			{Name: "Unit", MaxPoints: 2},
			{Name: "Integration", MaxPoints: 2},
		}},
		{Name: "Docs", Children: []config.Category{
			{Name: "Unit", MaxPoints: 1},
		}},
	})
}

func TestTask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		want    string
		wantErr error
	}{
		{"qualified", "Tests/Unit", "Tests/Unit", nil},
		{"case-insensitive name", "build", "Build", nil},
		{"case-insensitive qualified", "docs/unit", "Docs/Unit", nil},
		{"fuzzy", "integ", "Tests/Integration", nil},
		{"ambiguous name", "unit", "", ErrAmbiguous},
		{"no match", "zzz", "", ErrNoMatch},
		{"empty", "  ", "", ErrNoMatch},
	}

	tree := sampleTree()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n, err := Task(tree, tt.query)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Task(%q) error = %v, want %v", tt.query, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Task(%q) error = %v", tt.query, err)
			}
			if got := tree.QualifiedName(n); got != tt.want {
				t.Errorf("Task(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func newSession(t *testing.T, indices ...int) *session.Session {
	t.Helper()
	s := &session.Session{}
	for _, idx := range indices {
		s.Record(prepare.Context{
			PlaceholderValue: idx,
			RepositoryPath:   filepath.Join(t.TempDir(), prepare.Label(idx)),
			CheckoutInfo:     checkout.NewInfo("", checkout.NewStrategy(checkout.ModeHead, "")),
		}, time.Now())
	}
	return s
}

func TestRepository(t *testing.T) {
	t.Parallel()

	t.Run("explicit index", func(t *testing.T) {
		t.Parallel()
		pc, err := Repository(newSession(t, 1, 2), 2)
		if err != nil || pc.PlaceholderValue != 2 {
			t.Errorf("Repository() = %v, %v", pc.PlaceholderValue, err)
		}
	})

	t.Run("unknown index", func(t *testing.T) {
		t.Parallel()
		_, err := Repository(newSession(t, 1), 7)
		if !errors.Is(err, ErrNotPrepared) {
			t.Errorf("error = %v, want ErrNotPrepared", err)
		}
	})

	t.Run("current", func(t *testing.T) {
		t.Parallel()
		s := newSession(t, 1, 2)
		s.Current = 1
		pc, err := Repository(s, 0)
		if err != nil || pc.PlaceholderValue != 1 {
			t.Errorf("Repository() = %v, %v", pc.PlaceholderValue, err)
		}
	})

	t.Run("single prepared", func(t *testing.T) {
		t.Parallel()
		pc, err := Repository(newSession(t, 4), 0)
		if err != nil || pc.PlaceholderValue != 4 {
			t.Errorf("Repository() = %v, %v", pc.PlaceholderValue, err)
		}
	})

	t.Run("needs choice", func(t *testing.T) {
		t.Parallel()
		if _, err := Repository(newSession(t, 1, 2), 0); err == nil {
			t.Error("expected error when several repositories are prepared")
		}
	})

	t.Run("none prepared", func(t *testing.T) {
		t.Parallel()
		_, err := Repository(newSession(t), 0)
		if !errors.Is(err, ErrNotPrepared) {
			t.Errorf("error = %v, want ErrNotPrepared", err)
		}
	})
}
