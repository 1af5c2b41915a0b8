package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/phlp/studeval/internal/checkout"
	"github.com/phlp/studeval/internal/prepare"
	"github.com/phlp/studeval/internal/storage"
)

// Entry is one prepared repository.
type Entry struct {
	Index               int        `json:"index"`
	RepositoryURL       string     `json:"repositoryUrl"`
	RepositoryPath      string     `json:"repositoryPath"`
	EvaluationDirectory string     `json:"evaluationDirectory"`
	EvaluationFile      string     `json:"evaluationFile"`
	LogsDirectory       string     `json:"logsDirectory,omitempty"`
	CheckedOutReference string     `json:"checkedOutReference,omitempty"`
	CheckoutStrategy    string     `json:"checkoutStrategy,omitempty"`
	PreparedAt          time.Time  `json:"preparedAt"`
	RemovedAt           *time.Time `json:"removedAt,omitempty"`
}

// Session is the set of prepared repositories of one sheet.
type Session struct {
	Title    string `json:"title,omitempty"`
	Template string `json:"template,omitempty"`
	// Current is the most recently selected index, 0 if none.
	Current      int               `json:"current,omitempty"`
	Repositories map[string]*Entry `json:"repositories"`
}

// Path returns the session file inside an evaluations directory.
func Path(dir string) string {
	return filepath.Join(dir, "session.json")
}

// LockPath returns the lock file inside an evaluations directory.
func LockPath(dir string) string {
	return filepath.Join(dir, ".session.lock")
}

// Load reads the session of dir. A missing or corrupted file yields an
// empty session; repositories can always be prepared again.
func Load(dir string) (*Session, error) {
	var s Session
	if err := storage.LoadJSON(Path(dir), &s); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrCorrupt) {
			return &Session{Repositories: make(map[string]*Entry)}, nil
		}
		return nil, err
	}
	if s.Repositories == nil {
		s.Repositories = make(map[string]*Entry)
	}
	return &s, nil
}

// Save writes the session atomically.
func Save(dir string, s *Session) error {
	return storage.SaveJSON(Path(dir), s)
}

// LoadWithLock acquires the session lock and loads the session.
// Returns session, unlock function, and error.
// Caller must defer unlock() if err == nil.
func LoadWithLock(dir string) (*Session, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	lock := NewFileLock(LockPath(dir))
	if err := lock.Lock(); err != nil {
		return nil, nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	s, err := Load(dir)
	if err != nil {
		lock.Unlock()
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}

	unlock := func() { _ = lock.Unlock() }
	return s, unlock, nil
}

// Update loads the session under lock, applies fn and saves the result.
// Nothing is saved when fn fails.
func Update(dir string, fn func(*Session) error) error {
	s, unlock, err := LoadWithLock(dir)
	if err != nil {
		return err
	}
	defer unlock()

	if err := fn(s); err != nil {
		return err
	}
	return Save(dir, s)
}

// Reset drops all entries and the current selection.
func (s *Session) Reset() {
	s.Repositories = make(map[string]*Entry)
	s.Current = 0
}

// Record stores a prepared context, replacing any previous entry for the
// same index.
func (s *Session) Record(pc prepare.Context, now time.Time) {
	e := &Entry{
		Index:               pc.PlaceholderValue,
		RepositoryURL:       pc.RepositoryURL,
		RepositoryPath:      pc.RepositoryPath,
		EvaluationDirectory: pc.EvaluationDirectory,
		EvaluationFile:      pc.EvaluationFile,
		LogsDirectory:       pc.LogsDirectory,
		PreparedAt:          now,
	}
	if ref, ok := pc.CheckoutInfo.Ref(); ok {
		e.CheckedOutReference = ref
	}
	if enc, ok := pc.CheckoutInfo.Strategy.Encode(); ok {
		e.CheckoutStrategy = enc
	}
	if s.Repositories == nil {
		s.Repositories = make(map[string]*Entry)
	}
	s.Repositories[prepare.Label(pc.PlaceholderValue)] = e
}

// Get returns the context for index. Removed entries are not returned.
func (s *Session) Get(index int) (prepare.Context, bool) {
	e, ok := s.Repositories[prepare.Label(index)]
	if !ok || e.RemovedAt != nil {
		return prepare.Context{}, false
	}
	return e.Context(), true
}

// Contexts returns all live contexts ordered by index.
func (s *Session) Contexts() []prepare.Context {
	var out []prepare.Context
	for _, idx := range s.Indices() {
		if pc, ok := s.Get(idx); ok {
			out = append(out, pc)
		}
	}
	return out
}

// Indices returns the indices of all live entries in ascending order.
func (s *Session) Indices() []int {
	var out []int
	for _, e := range s.Repositories {
		if e.RemovedAt == nil {
			out = append(out, e.Index)
		}
	}
	slices.Sort(out)
	return out
}

// Sync marks entries whose repository directory is gone as removed and
// revives entries whose directory is back. Returns the number of changed
// entries.
func (s *Session) Sync(now time.Time) int {
	changed := 0
	for _, e := range s.Repositories {
		exists := storage.Exists(e.RepositoryPath)
		switch {
		case !exists && e.RemovedAt == nil:
			t := now
			e.RemovedAt = &t
			changed++
		case exists && e.RemovedAt != nil:
			e.RemovedAt = nil
			changed++
		}
	}
	return changed
}

// Context converts the entry back to a prepared context.
func (e *Entry) Context() prepare.Context {
	strategy, ok := checkout.DecodeStrategy(e.CheckoutStrategy)
	if !ok {
		strategy = checkout.NoStrategy()
	}
	return prepare.Context{
		PlaceholderValue:    e.Index,
		RepositoryURL:       e.RepositoryURL,
		RepositoryPath:      e.RepositoryPath,
		EvaluationDirectory: e.EvaluationDirectory,
		EvaluationFile:      e.EvaluationFile,
		LogsDirectory:       e.LogsDirectory,
		CheckoutInfo:        checkout.NewInfo(e.CheckedOutReference, strategy),
	}
}
