// Package snapshot rebuilds the Run Snapshot by merging cache.json with
// every status/*.json file (spec.md ^3, ^4.6). It is read-only with
// respect to descriptors and statuses, and the sole producer of the
// aggregate snapshot document -- the Reporter Loop's only job.
package snapshot

import (
	"fmt"
	"os"

	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/store"
)

// Build reads cache.json and every status file under paths and returns
// the merged, nested run -> pipelines -> ci_stages -> jobs view.
func Build(paths store.Paths) (*model.RunSnapshot, error) {
	run, err := loadRun(paths)
	if err != nil {
		return nil, err
	}

	snap := &model.RunSnapshot{
		RunID:       run.RunID,
		ProjectName: run.ProjectName,
		Version:     run.Version,
		StartTime:   run.StartTime,
		EndTime:     run.EndTime,
		Status:      run.Status,
		Pipelines:   map[string]*model.Pipeline{},
	}

	for _, d := range run.Jobs {
		pipeline := snap.Pipelines[d.PipelineName]
		if pipeline == nil {
			pipeline = &model.Pipeline{Name: d.PipelineName, CIStages: map[string]*model.Stage{}}
			snap.Pipelines[d.PipelineName] = pipeline
		}

		stageName := string(d.CIStage)
		stage := pipeline.CIStages[stageName]
		if stage == nil {
			stage = &model.Stage{Name: stageName, Jobs: map[string]*model.JobView{}}
			pipeline.CIStages[stageName] = stage
		}

		status, _ := loadStatus(paths, d.JobID) // absence is a valid unstarted state
		stage.Jobs[d.JobID] = jobView(d, status)
	}

	for _, pipeline := range snap.Pipelines {
		for _, stage := range pipeline.CIStages {
			finalizeStage(stage)
		}
	}

	return snap, nil
}

func jobView(d *model.JobDescriptor, status *model.JobStatus) *model.JobView {
	v := &model.JobView{
		JobID:       d.JobID,
		Command:     d.Command,
		Description: d.Description,
		State:       model.JobUnstarted,
	}
	if status == nil {
		return v
	}
	v.Complete = status.Complete
	v.CommandReturnCode = status.CommandReturnCode
	v.WrapperReturnCode = status.WrapperReturnCode
	v.TimeoutReached = status.TimeoutReached
	if status.Complete {
		v.State = model.JobFinished
	} else {
		v.State = model.JobStarted
	}
	return v
}

// finalizeStage computes progress percentage and the stage's rollup
// status. A wrapper_return_code != 0 always makes the stage "fail". A
// stage whose wrapper never failed but whose underlying command did
// (non-zero command_return_code or a reached timeout -- forgiven only
// because of that job's ignore_returns/timeout_ok/timeout_ignore policy)
// is "fail_ignored", mirroring spec.md ^3's three-way {success, fail,
// fail_ignored} enum without over-specifying the boundary the narrative
// leaves implicit.
func finalizeStage(stage *model.Stage) {
	total := len(stage.Jobs)
	if total == 0 {
		stage.Status = model.StageStatusSuccess
		stage.ProgressPercent = 100
		return
	}

	finished := 0
	anyFail := false
	anyIgnoredFailure := false
	for _, job := range stage.Jobs {
		if job.State != model.JobFinished {
			continue
		}
		finished++
		if job.WrapperReturnCode != 0 {
			anyFail = true
		} else if job.CommandReturnCode != 0 || job.TimeoutReached {
			anyIgnoredFailure = true
		}
	}

	stage.ProgressPercent = float64(finished) / float64(total) * 100
	switch {
	case anyFail:
		stage.Status = model.StageStatusFail
	case anyIgnoredFailure:
		stage.Status = model.StageStatusFailIgnored
	default:
		stage.Status = model.StageStatusSuccess
	}
}

func loadRun(paths store.Paths) (*model.Run, error) {
	data, err := os.ReadFile(paths.CacheFile())
	if err != nil {
		return nil, fmt.Errorf("snapshot: read cache file: %w", err)
	}
	var run model.Run
	if err := model.DecodeStrict(data, &run); err != nil {
		return nil, fmt.Errorf("snapshot: decode cache file: %w", err)
	}
	return &run, nil
}

func loadStatus(paths store.Paths, jobID string) (*model.JobStatus, error) {
	data, err := os.ReadFile(paths.StatusFile(jobID))
	if err != nil {
		return nil, err
	}
	var status model.JobStatus
	if err := model.DecodeStrict(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
