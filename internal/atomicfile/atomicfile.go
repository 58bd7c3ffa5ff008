// Package atomicfile is the one sanctioned way to update any persisted
// file in this repository: write to a uniquely-named temporary file in
// the same directory, flush, then rename over the target path (spec.md
// ^4.7). Grounded on the write-to-temp-then-rename idiom used for
// artifact staging in ovh-cds/engine/cmd_database.go (TempFile + Rename).
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/litani-build/litani/internal/model"
)

// Write atomically replaces path with data. Readers (the Reporter Loop)
// never observe a partial write, even under many concurrent wrapper
// processes (spec.md ^5).
func Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("atomicfile: create parent dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("atomicfile: create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	// Any failure past this point must still attempt to remove the
	// leftover temp file; the target path is only touched by the final
	// rename.
	cleanup := true
	defer func() {
		if cleanup {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("atomicfile: write temp file %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("atomicfile: sync temp file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("atomicfile: close temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("atomicfile: rename %s to %s: %w", tmpPath, path, err)
	}
	cleanup = false
	return nil
}

// WriteJSON marshals v with model.EncodeIndent and writes it atomically.
func WriteJSON(path string, v any) error {
	data, err := model.EncodeIndent(v)
	if err != nil {
		return err
	}
	return Write(path, data)
}
