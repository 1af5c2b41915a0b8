// Package storage provides atomic JSON persistence and file moves that
// survive crossing filesystems.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrCorrupt is returned by LoadJSON when a file exists but is not valid
// JSON for the destination.
var ErrCorrupt = errors.New("corrupt file")

// SaveJSON atomically writes data as indented JSON to path.
// It ensures the parent directory exists, writes to a temp file in the same
// directory, then renames it over path.
func SaveJSON(path string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	jsonData = append(jsonData, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tempPath := tmp.Name()
	if _, err := tmp.Write(jsonData); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

// LoadJSON reads JSON from path into dest.
// Returns an error matching os.ErrNotExist if the file doesn't exist.
func LoadJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: parse %s: %w", ErrCorrupt, path, err)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MoveFile renames src to dst, falling back to copy and a best-effort delete
// of src when the rename fails (e.g. across devices).
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	_ = os.Remove(src)
	return nil
}

// CopyFile copies src to dst, replacing dst.
func CopyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// MoveDirContents moves every regular file below src, including nested
// ones, directly into dst. Files that fail to move are skipped and reported
// in the joined error. Directories are left in place.
func MoveDirContents(src, dst string) (moved int, err error) {
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, err
	}

	var errs []error
	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := MoveFile(path, filepath.Join(dst, d.Name())); err != nil {
			errs = append(errs, fmt.Errorf("move %s: %w", d.Name(), err))
			return nil
		}
		moved++
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	return moved, errors.Join(errs...)
}

// RemoveIfEmpty removes dir when it contains no entries.
func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}
	return os.Remove(dir) == nil
}
