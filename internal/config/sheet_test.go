package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/phlp/studeval/internal/checkout"
)

const tomlSheet = `
title = "Assignment 1"
comment = "Good luck."
repository_url_template = "git@example.com:course/student-{{number}}.git"
tag = "final"
deadline = 2024-05-01

[[categories]]
name = "Build"
max_points = 2
commands = ["make"]

[[categories]]
name = "Tests"

  [[categories.children]]
  name = "Unit"
  max_points = 3.5
  commands = ["make test"]

  [[categories.children]]
  name = "Style"
  max_points = 1
  pseudo = true
`

func TestLoadSheet_TOML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sheet.toml")
	writeFile(t, path, tomlSheet)

	s, err := LoadSheet(path)
	if err != nil {
		t.Fatalf("LoadSheet() error = %v", err)
	}
	if s.Title != "Assignment 1" || s.Tag != "final" {
		t.Errorf("sheet = %+v", s)
	}
	d := s.DeadlineDate()
	if d == nil || *d != (checkout.Date{Year: 2024, Month: 5, Day: 1}) {
		t.Errorf("deadline = %v", d)
	}
	if len(s.Categories) != 2 || len(s.Categories[1].Children) != 2 {
		t.Fatalf("categories = %+v", s.Categories)
	}
	unit := s.Categories[1].Children[0]
	if unit.MaxPoints != 3.5 || unit.Commands[0] != "make test" {
		t.Errorf("unit = %+v", unit)
	}
	if !s.Categories[1].Children[1].Pseudo {
		t.Error("Style should be pseudo")
	}
}

func TestLoadSheet_QuotedDeadline(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sheet.toml")
	writeFile(t, path, `
title = "x"
repository_url_template = "u"
deadline = "2024-06-30"

[[categories]]
name = "A"
max_points = 1
`)

	s, err := LoadSheet(path)
	if err != nil {
		t.Fatalf("LoadSheet() error = %v", err)
	}
	if got := s.DeadlineDate().String(); got != "2024-06-30" {
		t.Errorf("deadline = %s", got)
	}
}

func TestLoadSheet_JSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sheet.json")
	writeFile(t, path, `{
  "title": "Assignment 2",
  "repositoryUrlTemplate": "https://example.com/s-<n>.git",
  "repositoryNumberPlaceholder": "<n>",
  "deadline": "2024-05-01",
  "categories": [
    {"name": "Build", "maxPoints": 2, "commands": ["make"]},
    {"name": "Docs", "children": [{"name": "Readme", "maxPoints": 1}]}
  ]
}`)

	s, err := LoadSheet(path)
	if err != nil {
		t.Fatalf("LoadSheet() error = %v", err)
	}
	if s.RepositoryURLTemplate != "https://example.com/s-<n>.git" || s.RepositoryNumberPlaceholder != "<n>" {
		t.Errorf("sheet = %+v", s)
	}
	if s.DeadlineDate() == nil || s.DeadlineDate().Day != 1 {
		t.Errorf("deadline = %v", s.DeadlineDate())
	}
	if s.Categories[1].Children[0].MaxPoints != 1 {
		t.Errorf("categories = %+v", s.Categories)
	}
}

func TestLoadSheet_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no categories", `title = "x"`, "no categories"},
		{"blank name", "[[categories]]\nname = \" \"", "name is required"},
		{"slash", "[[categories]]\nname = \"a/b\"", "must not contain"},
		{"duplicate", "[[categories]]\nname = \"a\"\n[[categories]]\nname = \"a\"", "duplicate"},
		{"negative", "[[categories]]\nname = \"a\"\nmax_points = -1", "negative"},
		{"nested duplicate", "[[categories]]\nname = \"a\"\n[[categories.children]]\nname = \"b\"\n[[categories.children]]\nname = \"b\"", "a/categories[1]"},
		{"bad deadline", "deadline = \"tomorrow\"\n[[categories]]\nname = \"a\"", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "sheet.toml")
			writeFile(t, path, tt.content)

			_, err := LoadSheet(path)
			if err == nil {
				t.Fatal("LoadSheet() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveSheet_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "sheet.toml")
	writeFile(t, src, tomlSheet)
	s, err := LoadSheet(src)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"copy.json", "copy.toml"} {
		dst := filepath.Join(dir, name)
		if err := SaveSheet(dst, s); err != nil {
			t.Fatalf("SaveSheet(%s) error = %v", name, err)
		}
		got, err := LoadSheet(dst)
		if err != nil {
			t.Fatalf("LoadSheet(%s) error = %v", name, err)
		}
		if got.Title != s.Title || len(got.Categories) != len(s.Categories) {
			t.Errorf("%s: round trip lost data: %+v", name, got)
		}
	}
}

func TestSheetOverrides_Apply(t *testing.T) {
	t.Parallel()

	d := checkout.Date{Year: 2024, Month: 1, Day: 2}
	base := &Sheet{
		RepositoryURLTemplate: "orig",
		Tag:                   "final",
		Deadline:              &Deadline{Date: d},
	}

	tag := ""
	tmpl := " other "
	got := SheetOverrides{Tag: &tag, Template: &tmpl}.Apply(base)
	if got.Tag != "" || got.RepositoryURLTemplate != "other" {
		t.Errorf("Apply() = %+v", got)
	}
	if base.Tag != "final" {
		t.Error("Apply() must not modify the input")
	}

	got = SheetOverrides{NoDeadline: true}.Apply(base)
	if got.Deadline != nil {
		t.Error("NoDeadline should clear the deadline")
	}

	later := checkout.Date{Year: 2024, Month: 2, Day: 3}
	got = SheetOverrides{Deadline: &later}.Apply(base)
	if *got.DeadlineDate() != later {
		t.Errorf("deadline = %v", got.DeadlineDate())
	}
}

func TestPlaceholderFor(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if got := cfg.PlaceholderFor(&Sheet{}); got != DefaultPlaceholder {
		t.Errorf("PlaceholderFor() = %q", got)
	}
	if got := cfg.PlaceholderFor(&Sheet{RepositoryNumberPlaceholder: "<n>"}); got != "<n>" {
		t.Errorf("PlaceholderFor() = %q", got)
	}
}
