// Package cmdlog writes the transcript of a command batch to the logs
// directory of an evaluation.
package cmdlog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Dir is the logs directory name inside an evaluation directory.
const Dir = "logs"

const timeLayout = "20060102_150405"

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Writer writes command logs. Now defaults to time.Now.
type Writer struct {
	Now func() time.Time
}

// Write stores commands and output as <evalDir>/logs/<timestamp>_<node>.log
// and returns the path relative to evalDir using forward slashes.
func (w Writer) Write(evalDir, nodeName string, commands []string, output string) (string, error) {
	logDir := filepath.Join(evalDir, Dir)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	name := now().Format(timeLayout) + "_" + SafeName(nodeName) + ".log"

	var b strings.Builder
	b.WriteString("# Commands\n")
	for _, c := range commands {
		b.WriteString("$ " + c + "\n")
	}
	b.WriteString("\n# Output\n")
	b.WriteString(output)

	if err := os.WriteFile(filepath.Join(logDir, name), []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write log: %w", err)
	}
	return Dir + "/" + name, nil
}

// SafeName replaces everything but ASCII letters, digits, '-' and '_'.
func SafeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}
