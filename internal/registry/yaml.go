package registry

import (
	"fmt"
	"os"

	"github.com/litani-build/litani/internal/model"
	"gopkg.in/yaml.v3"
)

// batchFile is the shape `add-job --from-yaml` expects: a plain list of
// job descriptors under a top-level `jobs` key. This supplements spec.md
// (which only describes one job per add-job invocation) with a batch
// registration form, grounded on the pack's general preference for
// declarative pipeline definitions (SPEC_FULL.md ^5).
type batchFile struct {
	Jobs []*model.JobDescriptor `yaml:"jobs"`
}

// LoadBatch parses a YAML batch file into a slice of descriptors, ready
// for Register. JobID and StatusFile are left for Register to assign, so
// the YAML form never has to mention on-disk layout.
func LoadBatch(path string) ([]*model.JobDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read batch file %s: %w", path, err)
	}

	var batch batchFile
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("registry: parse batch file %s: %w", path, err)
	}
	if len(batch.Jobs) == 0 {
		return nil, fmt.Errorf("registry: batch file %s declares no jobs", path)
	}
	return batch.Jobs, nil
}
