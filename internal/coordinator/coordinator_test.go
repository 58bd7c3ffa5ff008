package coordinator

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/litani-build/litani/internal/atomicfile"
	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/registry"
	"github.com/litani-build/litani/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func requireNinja(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ninja"); err != nil {
		t.Skip("ninja not installed, skipping coordinator integration test")
	}
}

func newRunFixture(t *testing.T) store.Paths {
	t.Helper()
	paths := store.Paths{RunDir: t.TempDir()}
	require.NoError(t, paths.Create())
	run := &model.Run{
		RunID:       "r1",
		ProjectName: "proj",
		Version:     model.CurrentSchemaVersion,
		StartTime:   model.Now(),
		Status:      model.RunStatusInProgress,
		Jobs:        []*model.JobDescriptor{},
	}
	require.NoError(t, atomicfile.WriteJSON(paths.CacheFile(), run))
	return paths
}

func TestRunDryRunSucceedsWithNoJobs(t *testing.T) {
	requireNinja(t)
	paths := newRunFixture(t)

	self, err := os.Executable()
	require.NoError(t, err)

	result, err := Run(context.Background(), Options{
		Paths:      paths,
		BinaryPath: self,
		DryRun:     true,
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	require.False(t, result.ExecutorFailed)
}

func TestFinalStatusSuccessWhenAllJobsComplete(t *testing.T) {
	paths := store.Paths{RunDir: t.TempDir()}
	require.NoError(t, paths.Create())
	d := &model.JobDescriptor{JobID: "j1", Command: "echo hi", PipelineName: "p", CIStage: model.StageBuild}
	require.NoError(t, registry.Register(paths, d))
	require.NoError(t, atomicfile.WriteJSON(d.StatusFile, &model.JobStatus{JobID: "j1", Complete: true, CommandReturnCode: 0}))

	status, err := finalStatus(paths, []*model.JobDescriptor{d})
	require.NoError(t, err)
	require.Equal(t, model.RunStatusSuccess, status)
}

func TestFinalStatusFailWhenStatusFileMissing(t *testing.T) {
	paths := store.Paths{RunDir: t.TempDir()}
	require.NoError(t, paths.Create())
	d := &model.JobDescriptor{JobID: "j1", StatusFile: paths.StatusFile("j1")}

	status, err := finalStatus(paths, []*model.JobDescriptor{d})
	require.NoError(t, err)
	require.Equal(t, model.RunStatusFail, status)
}

func TestFinalStatusFailWhenTimeoutIgnoreReached(t *testing.T) {
	paths := store.Paths{RunDir: t.TempDir()}
	require.NoError(t, paths.Create())
	d := &model.JobDescriptor{JobID: "j1", TimeoutIgnore: true}
	d.StatusFile = paths.StatusFile("j1")
	require.NoError(t, atomicfile.WriteJSON(d.StatusFile, &model.JobStatus{
		JobID: "j1", Complete: true, WrapperReturnCode: 0, TimeoutReached: true,
	}))

	status, err := finalStatus(paths, []*model.JobDescriptor{d})
	require.NoError(t, err)
	require.Equal(t, model.RunStatusFail, status)
}

func TestFinalStatusFailWhenReturnCodeNotIgnored(t *testing.T) {
	paths := store.Paths{RunDir: t.TempDir()}
	require.NoError(t, paths.Create())
	d := &model.JobDescriptor{JobID: "j1"}
	d.StatusFile = paths.StatusFile("j1")
	require.NoError(t, atomicfile.WriteJSON(d.StatusFile, &model.JobStatus{
		JobID: "j1", Complete: true, CommandReturnCode: 3,
	}))

	status, err := finalStatus(paths, []*model.JobDescriptor{d})
	require.NoError(t, err)
	require.Equal(t, model.RunStatusFail, status)
}

func TestFinalStatusFailWhenReturnCodeInOkReturns(t *testing.T) {
	paths := store.Paths{RunDir: t.TempDir()}
	require.NoError(t, paths.Create())
	d := &model.JobDescriptor{JobID: "j1", OkReturns: []int{3}}
	d.StatusFile = paths.StatusFile("j1")
	require.NoError(t, atomicfile.WriteJSON(d.StatusFile, &model.JobStatus{
		JobID: "j1", Complete: true, WrapperReturnCode: 0, CommandReturnCode: 3,
	}))

	status, err := finalStatus(paths, []*model.JobDescriptor{d})
	require.NoError(t, err)
	require.Equal(t, model.RunStatusFail, status, "ok_returns membership fails the run even though the wrapper itself succeeded")
}

func TestScopedDescriptorsUnscopedReturnsEverything(t *testing.T) {
	descriptors := []*model.JobDescriptor{
		{JobID: "j1", PipelineName: "p1", CIStage: model.StageBuild},
		{JobID: "j2", PipelineName: "p2", CIStage: model.StageTest},
	}

	got := scopedDescriptors(Options{}, descriptors)
	require.Equal(t, descriptors, got)
}

func TestScopedDescriptorsByPipeline(t *testing.T) {
	p1j1 := &model.JobDescriptor{JobID: "j1", PipelineName: "p1", CIStage: model.StageBuild}
	p2j1 := &model.JobDescriptor{JobID: "j2", PipelineName: "p2", CIStage: model.StageBuild}

	got := scopedDescriptors(Options{Pipelines: []string{"p1"}}, []*model.JobDescriptor{p1j1, p2j1})
	require.Equal(t, []*model.JobDescriptor{p1j1}, got)
}

func TestScopedDescriptorsByCIStage(t *testing.T) {
	build := &model.JobDescriptor{JobID: "j1", PipelineName: "p1", CIStage: model.StageBuild}
	test := &model.JobDescriptor{JobID: "j2", PipelineName: "p1", CIStage: model.StageTest}

	got := scopedDescriptors(Options{CIStage: "build"}, []*model.JobDescriptor{build, test})
	require.Equal(t, []*model.JobDescriptor{build}, got)
}

// TestFinalStatusIgnoresOutOfScopeMissingStatus mirrors spec.md ^8
// Scenario 5: "run-build --pipelines p1 ... only p1's job runs; p2's job
// is untouched." p2's job never gets a status file, and must not make a
// p1-scoped run report RunStatusFail.
func TestFinalStatusIgnoresOutOfScopeMissingStatus(t *testing.T) {
	paths := store.Paths{RunDir: t.TempDir()}
	require.NoError(t, paths.Create())

	p1 := &model.JobDescriptor{JobID: "j1", PipelineName: "p1", CIStage: model.StageBuild}
	p1.StatusFile = paths.StatusFile("j1")
	require.NoError(t, atomicfile.WriteJSON(p1.StatusFile, &model.JobStatus{
		JobID: "j1", Complete: true, WrapperReturnCode: 0, CommandReturnCode: 0,
	}))

	p2 := &model.JobDescriptor{JobID: "j2", PipelineName: "p2", CIStage: model.StageBuild}
	p2.StatusFile = paths.StatusFile("j2") // never written: p2 was out of scope, ninja never built it

	scoped := scopedDescriptors(Options{Pipelines: []string{"p1"}}, []*model.JobDescriptor{p1, p2})
	status, err := finalStatus(paths, scoped)
	require.NoError(t, err)
	require.Equal(t, model.RunStatusSuccess, status)

	// Sanity check: walking the unscoped list still fails, proving the
	// scoping call is what fixes this, not a change to finalStatus itself.
	status, err = finalStatus(paths, []*model.JobDescriptor{p1, p2})
	require.NoError(t, err)
	require.Equal(t, model.RunStatusFail, status)
}

func TestNinjaArgsAlwaysPassesJFlag(t *testing.T) {
	tests := []struct {
		name        string
		parallelism int
		wantJ       string
	}{
		{name: "zero means unbounded", parallelism: 0, wantJ: "0"},
		{name: "positive parallelism passed through", parallelism: 4, wantJ: "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := ninjaArgs(Options{Paths: store.Paths{RunDir: "/run"}, Parallelism: tt.parallelism})

			idx := -1
			for i, a := range args {
				if a == "-j" {
					idx = i
				}
			}
			require.GreaterOrEqual(t, idx, 0, "-j must always be present")
			require.Equal(t, tt.wantJ, args[idx+1])
		})
	}
}

func TestNinjaArgsDryRun(t *testing.T) {
	args := ninjaArgs(Options{Paths: store.Paths{RunDir: "/run"}, DryRun: true})
	require.Contains(t, args, "-n")
}

func TestTargetsIsMutuallyExclusive(t *testing.T) {
	byPipeline := targets(Options{Pipelines: []string{"a", "b"}})
	require.Len(t, byPipeline, 2)

	byStage := targets(Options{CIStage: "build"})
	require.Len(t, byStage, 1)
}
