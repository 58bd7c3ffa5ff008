// Package store implements the on-disk run layout described in spec.md
// ^4.1: a per-run directory under <tmp>/litani/runs/<run_id>/, plus a
// well-known cache pointer and "latest" symlink that always resolve to
// the active run. Grounded on perfgo/history/history.go's
// GetPerfgoRoot/Entry path-resolution style, generalized from perfgo's
// single git-rooted ".perfgo" directory to litani's explicit run
// identifiers.
package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/litani-build/litani/internal/atomicfile"
)

// BaseDir returns <tmp>/litani, following the platform's standard
// temporary-directory convention (spec.md ^6).
func BaseDir() string {
	return filepath.Join(os.TempDir(), "litani")
}

// CachePointerFile is the plain-text file containing the absolute path
// to the active run directory (spec.md ^4.1, ^6).
func CachePointerFile() string {
	return filepath.Join(BaseDir(), "cache_pointer")
}

// LatestLink is the symlink sibling to the cache pointer, always
// pointing at the same run directory.
func LatestLink() string {
	return filepath.Join(BaseDir(), "latest")
}

func runsDir() string {
	return filepath.Join(BaseDir(), "runs")
}

// Paths is the resolved on-disk layout for one run.
type Paths struct {
	RunDir string
}

// NewRunID generates an opaque, globally unique run identifier, the same
// random-hex shape perfgo/cli/cli.go uses for its run IDs.
func NewRunID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("store: generate run id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ForRunID resolves the Paths for an existing or about-to-be-created run.
func ForRunID(runID string) Paths {
	return Paths{RunDir: filepath.Join(runsDir(), runID)}
}

// Create makes every directory the run will need, up front, so that
// concurrent add-job writers never race on mkdir (spec.md ^4.2).
func (p Paths) Create() error {
	for _, dir := range []string{p.RunDir, p.jobsDir(), p.statusDir(), p.artifactsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("store: create %s: %w", dir, err)
		}
	}
	return nil
}

func (p Paths) jobsDir() string      { return filepath.Join(p.RunDir, "jobs") }
func (p Paths) statusDir() string    { return filepath.Join(p.RunDir, "status") }
func (p Paths) artifactsDir() string { return filepath.Join(p.RunDir, "artifacts") }

// CacheFile is cache.json: the Run record plus embedded job descriptors.
func (p Paths) CacheFile() string { return filepath.Join(p.RunDir, "cache.json") }

// NinjaFile is the emitted DAG file consumed by the external executor.
func (p Paths) NinjaFile() string { return filepath.Join(p.RunDir, "litani.ninja") }

// SnapshotFile is run.json: the latest Run Snapshot.
func (p Paths) SnapshotFile() string { return filepath.Join(p.RunDir, "run.json") }

// JobFile is jobs/<job_id>.json.
func (p Paths) JobFile(jobID string) string {
	return filepath.Join(p.jobsDir(), jobID+".json")
}

// StatusFile is status/<job_id>.json.
func (p Paths) StatusFile(jobID string) string {
	return filepath.Join(p.statusDir(), jobID+".json")
}

// JobsDir exposes jobs/ for directory walks (run-build descriptor load).
func (p Paths) JobsDir() string { return p.jobsDir() }

// StatusDir exposes status/ for directory walks (the Reporter Loop, the
// Coordinator's final-status walk).
func (p Paths) StatusDir() string { return p.statusDir() }

// ArtifactDir is artifacts/<pipeline>/<ci_stage>/.
func (p Paths) ArtifactDir(pipeline, ciStage string) string {
	return filepath.Join(p.artifactsDir(), pipeline, ciStage)
}

// SetCurrent publishes p as the active run: a uniquely-named symlink is
// created and renamed over "latest", and the cache pointer file is
// rewritten atomically, so a reader never observes a half-updated
// pointer (spec.md ^4.1).
func SetCurrent(p Paths) error {
	if err := os.MkdirAll(BaseDir(), 0o755); err != nil {
		return fmt.Errorf("store: create base dir: %w", err)
	}

	tmpLink := LatestLink() + fmt.Sprintf(".tmp-%d", os.Getpid())
	os.Remove(tmpLink) // best effort, leftover from a crashed prior run
	if err := os.Symlink(p.RunDir, tmpLink); err != nil {
		return fmt.Errorf("store: create symlink %s: %w", tmpLink, err)
	}
	if err := os.Rename(tmpLink, LatestLink()); err != nil {
		os.Remove(tmpLink)
		return fmt.Errorf("store: rename symlink over latest: %w", err)
	}

	if err := atomicfile.Write(CachePointerFile(), []byte(p.RunDir)); err != nil {
		return fmt.Errorf("store: write cache pointer: %w", err)
	}
	return nil
}

// Current resolves the cache pointer to the active run's Paths (spec.md
// ^4.2: "unreadable cache pointer -> exit non-zero").
func Current() (Paths, error) {
	data, err := os.ReadFile(CachePointerFile())
	if err != nil {
		return Paths{}, fmt.Errorf("store: no active run (read cache pointer): %w", err)
	}
	runDir := string(data)
	if runDir == "" {
		return Paths{}, fmt.Errorf("store: cache pointer is empty")
	}
	return Paths{RunDir: runDir}, nil
}
