package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// withTempBaseDir points os.TempDir's result at an isolated directory for
// the duration of one test by overriding TMPDIR, since store.BaseDir has
// no seam of its own.
func withTempBaseDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)
}

func TestForRunIDCreatesExpectedLayout(t *testing.T) {
	withTempBaseDir(t)

	runID, err := NewRunID()
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	paths := ForRunID(runID)
	require.NoError(t, paths.Create())

	for _, dir := range []string{paths.RunDir, paths.JobsDir(), paths.StatusDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestSetCurrentAndCurrentRoundTrip(t *testing.T) {
	withTempBaseDir(t)

	runID, err := NewRunID()
	require.NoError(t, err)
	paths := ForRunID(runID)
	require.NoError(t, paths.Create())

	require.NoError(t, SetCurrent(paths))

	got, err := Current()
	require.NoError(t, err)
	require.Equal(t, paths.RunDir, got.RunDir)

	link, err := os.Readlink(LatestLink())
	require.NoError(t, err)
	require.Equal(t, paths.RunDir, link)
}

func TestCurrentWithNoActiveRunFails(t *testing.T) {
	withTempBaseDir(t)

	_, err := Current()
	require.Error(t, err)
}

func TestPathAccessorsNestUnderRunDir(t *testing.T) {
	paths := Paths{RunDir: "/tmp/litani/runs/abc"}

	require.Equal(t, filepath.Join(paths.RunDir, "cache.json"), paths.CacheFile())
	require.Equal(t, filepath.Join(paths.RunDir, "jobs", "j1.json"), paths.JobFile("j1"))
	require.Equal(t, filepath.Join(paths.RunDir, "status", "j1.json"), paths.StatusFile("j1"))
	require.Equal(t, filepath.Join(paths.RunDir, "artifacts", "p", "build"), paths.ArtifactDir("p", "build"))
}
