package model

import "fmt"

// CIStage is restricted to a fixed closed set (spec.md ^3, ^4.8).
type CIStage string

const (
	StageBuild  CIStage = "build"
	StageTest   CIStage = "test"
	StageReport CIStage = "report"
)

// ValidCIStages enumerates the closed set of allowed stages.
var ValidCIStages = []CIStage{StageBuild, StageTest, StageReport}

func (s CIStage) Valid() bool {
	for _, v := range ValidCIStages {
		if s == v {
			return true
		}
	}
	return false
}

// JobDescriptor is the immutable record of how to run one command,
// produced by add-job (spec.md ^3). Unknown JSON fields are rejected by
// the strict decoder in codec.go -- this is a closed record, not an open
// mapping (spec.md ^9 REDESIGN FLAG).
type JobDescriptor struct {
	// JobID is unique within the run.
	JobID string `json:"job_id" yaml:"job_id,omitempty"`
	// Command is the shell command string to execute.
	Command string `json:"command" yaml:"command"`
	// PipelineName groups jobs for phony aggregate targets.
	PipelineName string `json:"pipeline_name" yaml:"pipeline_name"`
	// CIStage is one of build, test, report.
	CIStage CIStage `json:"ci_stage" yaml:"ci_stage"`
	// WorkingDir is the directory the command runs in, if not the run's cwd.
	WorkingDir string `json:"working_dir,omitempty" yaml:"working_dir,omitempty"`
	// Inputs are paths the job depends on; order does not affect correctness.
	Inputs []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	// Outputs are paths the job produces; copied into the artifacts tree.
	Outputs []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	// TimeoutSeconds is a positive wall-clock limit, or 0 for none.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	// TimeoutOk: a timeout still counts as wrapper success.
	TimeoutOk bool `json:"timeout_ok,omitempty" yaml:"timeout_ok,omitempty"`
	// TimeoutIgnore: a timeout doesn't fail the wrapper, but fails the run.
	TimeoutIgnore bool `json:"timeout_ignore,omitempty" yaml:"timeout_ignore,omitempty"`
	// InterleaveStdoutStderr merges stderr into the stdout capture.
	InterleaveStdoutStderr bool `json:"interleave_stdout_stderr,omitempty" yaml:"interleave_stdout_stderr,omitempty"`
	// IgnoreReturns are command return codes treated as wrapper success.
	// 0 is always implicitly a member even if absent from this list.
	IgnoreReturns []int `json:"ignore_returns,omitempty" yaml:"ignore_returns,omitempty"`
	// OkReturns are return codes recorded for downstream classification
	// without altering the wrapper's own exit code.
	OkReturns []int `json:"ok_returns,omitempty" yaml:"ok_returns,omitempty"`
	// Description is a free-form human label.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Tags are free-form labels, unused by scheduling.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	// StdoutFile, if set, additionally receives the raw captured stdout.
	StdoutFile string `json:"stdout_file,omitempty" yaml:"stdout_file,omitempty"`
	// StderrFile, if set, additionally receives the raw captured stderr.
	StderrFile string `json:"stderr_file,omitempty" yaml:"stderr_file,omitempty"`
	// StatusFile is derived at registration time: status/<job_id>.json.
	// Never meaningful in a YAML batch file; Register always overwrites it.
	StatusFile string `json:"status_file" yaml:"-"`
}

// IgnoresReturnCode reports whether code is in IgnoreReturns ^ {0}.
func (d *JobDescriptor) IgnoresReturnCode(code int) bool {
	if code == 0 {
		return true
	}
	for _, c := range d.IgnoreReturns {
		if c == code {
			return true
		}
	}
	return false
}

// IsOkReturnCode reports whether code is in OkReturns.
func (d *JobDescriptor) IsOkReturnCode(code int) bool {
	for _, c := range d.OkReturns {
		if c == code {
			return true
		}
	}
	return false
}

// Validate checks required fields and the closed CIStage set
// (spec.md ^4.2 "missing required fields -> exit non-zero with a
// diagnostic").
func (d *JobDescriptor) Validate() error {
	if d.Command == "" {
		return fmt.Errorf("job descriptor missing required field: command")
	}
	if d.PipelineName == "" {
		return fmt.Errorf("job descriptor missing required field: pipeline_name")
	}
	if !d.CIStage.Valid() {
		return fmt.Errorf("invalid ci_stage %q: must be one of %v", d.CIStage, ValidCIStages)
	}
	if d.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", d.TimeoutSeconds)
	}
	return nil
}
