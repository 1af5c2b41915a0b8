package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/phlp/studeval/internal/checkout"
	"github.com/phlp/studeval/internal/storage"
)

// Sheet is an evaluation sheet: where student repositories live, which
// revision to grade and the category tree to grade against.
type Sheet struct {
	Title                       string     `toml:"title" json:"title"`
	Comment                     string     `toml:"comment,omitempty" json:"comment,omitempty"`
	RepositoryURLTemplate       string     `toml:"repository_url_template" json:"repositoryUrlTemplate"`
	RepositoryNumberPlaceholder string     `toml:"repository_number_placeholder,omitempty" json:"repositoryNumberPlaceholder,omitempty"`
	Tag                         string     `toml:"tag,omitempty" json:"tag,omitempty"`
	Deadline                    *Deadline  `toml:"deadline,omitempty" json:"deadline,omitempty"`
	Categories                  []Category `toml:"categories" json:"categories"`
}

// Category is one node of the grading tree. Leaves carry points and
// commands; the points of inner categories are the sum of their children.
type Category struct {
	Name      string     `toml:"name" json:"name"`
	MaxPoints float64    `toml:"max_points" json:"maxPoints"`
	Commands  []string   `toml:"commands,omitempty" json:"commands,omitempty"`
	Comment   string     `toml:"comment,omitempty" json:"comment,omitempty"`
	Pseudo    bool       `toml:"pseudo,omitempty" json:"pseudo,omitempty"`
	Children  []Category `toml:"children,omitempty" json:"children,omitempty"`
}

// Deadline is a calendar day. TOML accepts a local date (2024-05-01) or a
// string; JSON a string.
type Deadline struct {
	checkout.Date
}

// UnmarshalTOML implements toml.Unmarshaler.
func (d *Deadline) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		parsed, err := checkout.ParseDate(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		d.Date = parsed
	case time.Time:
		d.Date = checkout.DateOf(v)
	default:
		return fmt.Errorf("deadline: unsupported value %v (%T)", v, v)
	}
	return nil
}

// DeadlineDate returns the deadline, if any.
func (s *Sheet) DeadlineDate() *checkout.Date {
	if s.Deadline == nil {
		return nil
	}
	d := s.Deadline.Date
	return &d
}

// LoadSheet reads and validates the sheet at path. Files ending in .json
// are JSON, everything else TOML.
func LoadSheet(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	var sheet Sheet
	if isJSON(path) {
		if err := json.Unmarshal(data, &sheet); err != nil {
			return nil, fmt.Errorf("parse sheet %s: %w", path, err)
		}
	} else {
		if _, err := toml.Decode(string(data), &sheet); err != nil {
			return nil, fmt.Errorf("parse sheet %s: %w", path, err)
		}
	}

	if err := sheet.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sheet %s: %w", path, err)
	}
	return &sheet, nil
}

// SaveSheet writes the sheet to path in the format its extension selects.
func SaveSheet(path string, sheet *Sheet) error {
	if isJSON(path) {
		return storage.SaveJSON(path, sheet)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(sheet); err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Validate checks category names and points. Names must be non-blank,
// unique among siblings and free of '/', which separates qualified names.
func (s *Sheet) Validate() error {
	if len(s.Categories) == 0 {
		return fmt.Errorf("no categories defined")
	}
	return validateCategories(s.Categories, "")
}

func validateCategories(cats []Category, parent string) error {
	seen := make(map[string]bool, len(cats))
	for i, c := range cats {
		name := strings.TrimSpace(c.Name)
		where := fmt.Sprintf("categories[%d]", i)
		if parent != "" {
			where = parent + "/" + where
		}
		if name == "" {
			return fmt.Errorf("%s: name is required", where)
		}
		if strings.Contains(name, "/") {
			return fmt.Errorf("%s: name %q must not contain '/'", where, name)
		}
		if seen[name] {
			return fmt.Errorf("%s: duplicate name %q", where, name)
		}
		seen[name] = true
		if c.MaxPoints < 0 {
			return fmt.Errorf("%s: max_points must not be negative", where)
		}
		qualified := name
		if parent != "" {
			qualified = parent + "/" + name
		}
		if err := validateCategories(c.Children, qualified); err != nil {
			return err
		}
	}
	return nil
}
