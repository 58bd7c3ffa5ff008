package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/litani-build/litani/internal/model"
)

// readDirSorted lists the regular files directly under dir, sorted by
// name for deterministic descriptor ordering across runs (spec.md ^4.3's
// determinism requirement extends naturally to load order).
func readDirSorted(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

func loadDescriptor(path string) (*model.JobDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var d model.JobDescriptor
	if err := model.DecodeStrict(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
