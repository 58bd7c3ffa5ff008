package snapshot

import (
	"testing"

	"github.com/litani-build/litani/internal/atomicfile"
	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/store"
	"github.com/stretchr/testify/require"
)

func newRun(paths store.Paths, jobs []*model.JobDescriptor) error {
	run := &model.Run{
		RunID:       "r1",
		ProjectName: "proj",
		Version:     model.CurrentSchemaVersion,
		StartTime:   model.Now(),
		Status:      model.RunStatusInProgress,
		Jobs:        jobs,
	}
	return atomicfile.WriteJSON(paths.CacheFile(), run)
}

func TestBuildUnstartedJob(t *testing.T) {
	paths := store.Paths{RunDir: t.TempDir()}
	d := &model.JobDescriptor{JobID: "j1", Command: "echo hi", PipelineName: "p", CIStage: model.StageBuild}
	require.NoError(t, newRun(paths, []*model.JobDescriptor{d}))

	snap, err := Build(paths)
	require.NoError(t, err)

	stage := snap.Pipelines["p"].CIStages["build"]
	require.Equal(t, model.JobUnstarted, stage.Jobs["j1"].State)
	require.Equal(t, model.StageStatusSuccess, stage.Status)
	require.Equal(t, float64(0), stage.ProgressPercent)
}

func TestBuildFinishedSuccessfulJob(t *testing.T) {
	paths := store.Paths{RunDir: t.TempDir()}
	d := &model.JobDescriptor{JobID: "j1", Command: "echo hi", PipelineName: "p", CIStage: model.StageBuild}
	require.NoError(t, newRun(paths, []*model.JobDescriptor{d}))
	require.NoError(t, atomicfile.WriteJSON(paths.StatusFile("j1"), &model.JobStatus{
		JobID: "j1", Complete: true, WrapperReturnCode: 0,
	}))

	snap, err := Build(paths)
	require.NoError(t, err)

	stage := snap.Pipelines["p"].CIStages["build"]
	require.Equal(t, model.JobFinished, stage.Jobs["j1"].State)
	require.Equal(t, model.StageStatusSuccess, stage.Status)
	require.Equal(t, float64(100), stage.ProgressPercent)
}

func TestBuildFailedJobIsFailUnlessAllIgnored(t *testing.T) {
	paths := store.Paths{RunDir: t.TempDir()}
	d := &model.JobDescriptor{JobID: "j1", Command: "false", PipelineName: "p", CIStage: model.StageBuild}
	require.NoError(t, newRun(paths, []*model.JobDescriptor{d}))
	require.NoError(t, atomicfile.WriteJSON(paths.StatusFile("j1"), &model.JobStatus{
		JobID: "j1", Complete: true, WrapperReturnCode: 1, CommandReturnCode: 1,
	}))

	snap, err := Build(paths)
	require.NoError(t, err)

	stage := snap.Pipelines["p"].CIStages["build"]
	require.Equal(t, model.StageStatusFail, stage.Status)
}

func TestBuildFailIgnoredWhenOnlyTimeoutFailures(t *testing.T) {
	paths := store.Paths{RunDir: t.TempDir()}
	d := &model.JobDescriptor{JobID: "j1", Command: "sleep 100", PipelineName: "p", CIStage: model.StageBuild, TimeoutIgnore: true}
	require.NoError(t, newRun(paths, []*model.JobDescriptor{d}))
	require.NoError(t, atomicfile.WriteJSON(paths.StatusFile("j1"), &model.JobStatus{
		JobID: "j1", Complete: true, WrapperReturnCode: 0, TimeoutReached: true,
	}))

	snap, err := Build(paths)
	require.NoError(t, err)

	stage := snap.Pipelines["p"].CIStages["build"]
	require.Equal(t, model.StageStatusFailIgnored, stage.Status)
}
