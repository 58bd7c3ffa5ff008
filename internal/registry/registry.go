// Package registry implements add-job (spec.md ^4.2): assigning a fresh
// job id, deriving the status file path, and persisting the descriptor.
// Grounded on the run-ID generation shape in perfgo/cli/cli.go
// (crypto/rand + hex.EncodeToString), reused here for job ids via
// store.NewRunID's sibling in this package.
package registry

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/litani-build/litani/internal/atomicfile"
	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/store"
)

// NewJobID generates a fresh, run-unique job identifier.
func NewJobID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("registry: generate job id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Register validates d, assigns it a job id and status file path if not
// already set, and persists it via the Atomic Writer. Multiple
// concurrent callers are safe: each writes a distinct file (spec.md
// ^4.2, ^5).
func Register(paths store.Paths, d *model.JobDescriptor) error {
	if d.JobID == "" {
		id, err := NewJobID()
		if err != nil {
			return err
		}
		d.JobID = id
	}
	d.StatusFile = paths.StatusFile(d.JobID)

	if err := d.Validate(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	if err := atomicfile.WriteJSON(paths.JobFile(d.JobID), d); err != nil {
		return fmt.Errorf("registry: persist descriptor %s: %w", d.JobID, err)
	}
	return nil
}

// LoadAll reads every descriptor file under paths.JobsDir(), used by
// run-build before graph emission (spec.md ^4.5).
func LoadAll(paths store.Paths) ([]*model.JobDescriptor, error) {
	entries, err := readDirSorted(paths.JobsDir())
	if err != nil {
		return nil, fmt.Errorf("registry: list job descriptors: %w", err)
	}

	descriptors := make([]*model.JobDescriptor, 0, len(entries))
	for _, path := range entries {
		d, err := loadDescriptor(path)
		if err != nil {
			return nil, fmt.Errorf("registry: load descriptor %s: %w", path, err)
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}
