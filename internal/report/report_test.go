package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phlp/studeval/internal/config"
	"github.com/phlp/studeval/internal/evaluation"
)

func sampleTree(t *testing.T) *evaluation.Tree {
	t.Helper()
	tree := evaluation.Build([]config.Category{
		{Name: "Build", MaxPoints: 2},
		{Name: "Tests", Comment: "Runs make test.", Children: []config.Category{
			{Name: "Unit", MaxPoints: 3},
			{Name: "Notes", MaxPoints: 0, Pseudo: true},
		}},
		{Name: "Internal", MaxPoints: 5, Pseudo: true},
	})
	find := func(name string) *evaluation.Node {
		n, ok := tree.Find(name)
		if !ok {
			t.Fatalf("missing node %s", name)
		}
		return n
	}
	tree.MarkFull(find("Build"))
	tree.SetPoints(find("Tests/Unit"), 1.5)
	tree.SetComment(find("Tests/Unit"), "Two tests fail.\r\n\r\nSee log.")
	tree.SetComment(find("Tests/Notes"), "hidden")
	return tree
}

func TestRender(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	got := Render(sampleTree(t), Meta{
		Context: "Repository 007",
		Comment: "Well done overall.",
		Created: created,
	})

	want := []string{
		"# Evaluation\n\n> Well done overall.\n\n",
		"**Context:** Repository 007  \n",
		"**Created:** 2024-05-02T10:00:00Z\n\n",
		"| Build | 2 | 2 | 100% |\n",
		"| Tests | 1.5 | 3 | 50% |\n",
		"| **Total** | 3.5 | 5 | 70% |\n",
		"## Tests (1.5 / 3)\n\n- Tests: 1.5 / 3\n  > Runs make test.\n\n  - Unit: 1.5 / 3\n    > Two tests fail.\n    >\n    > See log.\n",
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("Render() missing %q\n--- got ---\n%s", w, got)
		}
	}

	for _, hidden := range []string{"Internal", "Notes", "hidden"} {
		if strings.Contains(got, hidden) {
			t.Errorf("Render() should not contain pseudo node text %q", hidden)
		}
	}
}

func TestRender_NoComment(t *testing.T) {
	t.Parallel()

	got := Render(sampleTree(t), Meta{Created: time.Unix(0, 0)})
	if !strings.HasPrefix(got, "# Evaluation\n\n**Created:**") {
		t.Errorf("Render() header = %q", got[:40])
	}
	if strings.Contains(got, "**Context:**") {
		t.Error("blank context should be omitted")
	}
}

func TestExport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"feedback-a1.md", "feedback-a1.md"},
		{"feedback", "feedback.md"},
		{"  ", DefaultFileName},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path, err := Export(dir, tt.name, sampleTree(t), Meta{})
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			if path != filepath.Join(dir, tt.want) {
				t.Errorf("Export() path = %q, want %q", path, tt.want)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(string(data), "# Evaluation") {
				t.Errorf("unexpected content: %q", data)
			}
		})
	}
}
