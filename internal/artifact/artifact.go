// Package artifact copies a job's declared outputs into the run's
// artifacts tree after the job finishes (spec.md ^4.4 step 7). Grounded
// on perfgo/cli/artifacts.go's copyFile (open source, open dest,
// io.Copy, preserve mode) and its content-addressed save-to-history
// pattern, generalized here to plain basename-preserving copies since
// litani artifacts are keyed by pipeline/stage/basename rather than by
// content hash.
package artifact

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/store"
	"github.com/rs/zerolog"
)

// Copy copies every path in d.Outputs into
// artifacts/<pipeline>/<ci_stage>/<basename>. A missing source is logged
// and skipped (spec.md ^7: "missing source file is a warning"); any
// other I/O error is returned so the caller can fail the wrapper.
func Copy(logger zerolog.Logger, paths store.Paths, d *model.JobDescriptor) error {
	if len(d.Outputs) == 0 {
		return nil
	}

	destDir := paths.ArtifactDir(d.PipelineName, string(d.CIStage))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("artifact: create artifact dir %s: %w", destDir, err)
	}

	for _, src := range d.Outputs {
		info, err := os.Stat(src)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn().Str("job_id", d.JobID).Str("output", src).Msg("declared output missing, skipping artifact copy")
				continue
			}
			return fmt.Errorf("artifact: stat %s: %w", src, err)
		}

		dest := filepath.Join(destDir, filepath.Base(src))
		if info.IsDir() {
			if err := copyDir(src, dest); err != nil {
				return fmt.Errorf("artifact: copy directory %s: %w", src, err)
			}
			continue
		}
		if err := copyFile(src, dest, info.Mode()); err != nil {
			return fmt.Errorf("artifact: copy file %s: %w", src, err)
		}
	}
	return nil
}

func copyFile(src, dest string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return os.Chmod(dest, mode)
}

// copyDir recursively copies src into dest, preserving the source's
// basename and internal relative structure (spec.md ^4.4 step 7:
// "Directory outputs -> recursive copy preserving the basename").
func copyDir(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode())
	})
}
