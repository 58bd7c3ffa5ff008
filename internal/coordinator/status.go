package coordinator

import (
	"fmt"
	"os"
	"time"

	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/store"
)

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// scopedDescriptors restricts descriptors to the subset that
// --pipelines/--ci-stage actually asked ninja to build (spec.md ^4.5
// Scenario 5: "run-build --pipelines p1 ... only p1's job runs; p2's job
// is untouched"). Jobs outside that scope never get a status file and
// must not be walked by finalStatus, or every scoped run would report
// RunStatusFail regardless of the outcome of the jobs that actually ran.
func scopedDescriptors(opts Options, descriptors []*model.JobDescriptor) []*model.JobDescriptor {
	if opts.CIStage == "" && len(opts.Pipelines) == 0 {
		return descriptors
	}

	pipelines := make(map[string]bool, len(opts.Pipelines))
	for _, p := range opts.Pipelines {
		pipelines[p] = true
	}

	scoped := make([]*model.JobDescriptor, 0, len(descriptors))
	for _, d := range descriptors {
		switch {
		case opts.CIStage != "":
			if string(d.CIStage) == opts.CIStage {
				scoped = append(scoped, d)
			}
		case pipelines[d.PipelineName]:
			scoped = append(scoped, d)
		}
	}
	return scoped
}

// finalStatus implements spec.md ^4.5's final-status walk over the jobs
// actually in scope for this invocation: success iff every such status
// file is complete with wrapper_return_code == 0 and
// command_return_code in {0} u ignore_returns, no status file
// has command_return_code in ok_returns (spec.md ^3: "the job continues
// the build but the run will fail at the end"), and no status file has
// timeout_reached=true with timeout_ignore set (DESIGN.md open question
// 2: timeout_ignore always fails the run at this point, independent of
// that job's own wrapper_return_code).
func finalStatus(paths store.Paths, descriptors []*model.JobDescriptor) (model.RunStatus, error) {
	for _, d := range descriptors {
		data, err := os.ReadFile(paths.StatusFile(d.JobID))
		if err != nil {
			if os.IsNotExist(err) {
				// Unsatisfied inputs: the job never ran. An incomplete
				// run is not a success (spec.md ^8 invariant).
				return model.RunStatusFail, nil
			}
			return "", fmt.Errorf("read status for %s: %w", d.JobID, err)
		}

		var status model.JobStatus
		if err := model.DecodeStrict(data, &status); err != nil {
			return "", fmt.Errorf("decode status for %s: %w", d.JobID, err)
		}

		if !status.Complete {
			return model.RunStatusFail, nil
		}
		if status.WrapperReturnCode != 0 {
			return model.RunStatusFail, nil
		}
		if status.TimeoutReached && d.TimeoutIgnore {
			return model.RunStatusFail, nil
		}
		if !d.IgnoresReturnCode(status.CommandReturnCode) {
			return model.RunStatusFail, nil
		}
		if d.IsOkReturnCode(status.CommandReturnCode) {
			return model.RunStatusFail, nil
		}
	}
	return model.RunStatusSuccess, nil
}
