// Package state reads and writes the per-repository evaluation file.
//
// The file is JSON with camelCase keys so files written by earlier releases
// load unchanged. Unknown keys are ignored.
package state

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/phlp/studeval/internal/storage"
)

// NodeState is the persisted state of one evaluation node, keyed by its
// qualified name in [SaveData.Nodes].
type NodeState struct {
	AchievedPoints float64 `json:"achievedPoints"`
	// AchievedPointsDefined is nil in files written before the flag existed.
	AchievedPointsDefined *bool  `json:"achievedPointsDefined,omitempty"`
	LastLogFile           string `json:"lastLogFile,omitempty"`
	Status                string `json:"status,omitempty"`
	Comment               string `json:"comment,omitempty"`
}

// PointsDefined reports whether points were explicitly set. Legacy states
// without the flag count as defined when their points are non-zero.
func (s NodeState) PointsDefined() bool {
	if s.AchievedPointsDefined != nil {
		return *s.AchievedPointsDefined
	}
	return s.AchievedPoints != 0
}

// SaveData is the evaluation file of one repository.
type SaveData struct {
	RepositoryURL       string               `json:"repositoryUrl,omitempty"`
	CheckedOutReference string               `json:"checkedOutReference,omitempty"`
	PlaceholderValue    *int                 `json:"placeholderValue,omitempty"`
	EvaluationTitle     string               `json:"evaluationTitle,omitempty"`
	CheckoutStrategy    string               `json:"checkoutStrategy,omitempty"`
	SavedAt             time.Time            `json:"savedAt"`
	Nodes               map[string]NodeState `json:"nodes"`
}

// Load reads the evaluation file at path and normalizes legacy log
// references. A missing file yields an error matching os.ErrNotExist.
func Load(path string) (*SaveData, error) {
	var data SaveData
	if err := storage.LoadJSON(path, &data); err != nil {
		return nil, err
	}
	if data.Nodes == nil {
		data.Nodes = make(map[string]NodeState)
	}
	for name, node := range data.Nodes {
		node.LastLogFile = NormalizeLogRef(node.LastLogFile)
		data.Nodes[name] = node
	}
	return &data, nil
}

// LoadOrEmpty is Load but returns empty data for a missing file.
func LoadOrEmpty(path string) (*SaveData, error) {
	data, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return &SaveData{Nodes: make(map[string]NodeState)}, nil
	}
	return data, err
}

// Write stamps SavedAt and atomically writes data to path.
func Write(path string, data *SaveData) error {
	data.SavedAt = time.Now().UTC()
	if data.Nodes == nil {
		data.Nodes = make(map[string]NodeState)
	}
	return storage.SaveJSON(path, data)
}

// NormalizeLogRef rewrites a stored log reference to the current layout,
// relative to the evaluation directory: "logs/<file>". References that
// pointed into the repository's .eval directory lose that prefix.
// Blank input yields "".
func NormalizeLogRef(ref string) string {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), `\`, "/")
	if ref == "" {
		return ""
	}
	ref = strings.TrimPrefix(ref, ".eval/")
	if strings.HasPrefix(ref, "logs/") {
		return ref
	}
	name := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		name = ref[i+1:]
	}
	if strings.TrimSpace(name) == "" {
		return ""
	}
	return "logs/" + name
}
