package prepare

import (
	"context"
	"os"
	"path/filepath"

	"github.com/phlp/studeval/internal/log"
	"github.com/phlp/studeval/internal/storage"
)

// migrateLegacyState moves a flat <NNN>.json from the evaluations root, or
// from its parent, to evalFile. An existing evalFile is never replaced.
func migrateLegacyState(ctx context.Context, evalFile, label, evaluationsRoot string) error {
	if storage.Exists(evalFile) {
		return nil
	}
	candidates := []string{filepath.Join(evaluationsRoot, label+".json")}
	if parent := filepath.Dir(filepath.Clean(evaluationsRoot)); parent != evaluationsRoot {
		candidates = append(candidates, filepath.Join(parent, label+".json"))
	}
	for _, legacy := range candidates {
		if !storage.Exists(legacy) {
			continue
		}
		log.FromContext(ctx).Debug("migrating legacy evaluation file", "from", legacy, "to", evalFile)
		return storage.MoveFile(legacy, evalFile)
	}
	return nil
}

// migrateLegacyLogs moves files from <repo>/.eval/logs into logsDir and
// removes the emptied directories. Failures are logged, never returned.
func migrateLegacyLogs(ctx context.Context, repoPath, logsDir string) {
	legacyRoot := filepath.Join(repoPath, ".eval")
	legacyLogs := filepath.Join(legacyRoot, "logs")
	if info, err := os.Stat(legacyLogs); err != nil || !info.IsDir() {
		return
	}

	l := log.FromContext(ctx)
	moved, err := storage.MoveDirContents(legacyLogs, logsDir)
	if err != nil {
		l.Warn("log migration incomplete", "repo", repoPath, "err", err)
	}
	if moved > 0 {
		l.Debug("migrated legacy logs", "repo", repoPath, "files", moved)
	}

	if err == nil {
		if err := os.RemoveAll(legacyLogs); err != nil {
			l.Debug("could not remove legacy logs", "dir", legacyLogs, "err", err)
		}
	}
	storage.RemoveIfEmpty(legacyRoot)
}
