package model

import "fmt"

// RunStatus is the overall status of a Run. The schema settles on "fail"
// rather than "failure" as the terminal failure token (spec.md ^9 open
// question).
type RunStatus string

const (
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusSuccess    RunStatus = "success"
	RunStatusFail       RunStatus = "fail"
)

// SchemaVersion is the embedded (major, minor, patch) triple that
// accompanies every persisted run (spec.md ^6).
type SchemaVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// CurrentSchemaVersion is the version stamped on every Run created by
// this binary. Breaking layout changes bump Major.
var CurrentSchemaVersion = SchemaVersion{Major: 1, Minor: 0, Patch: 0}

func (v SchemaVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Run is the top-level container created by `init` and mutated by
// `run-build` (spec.md ^3).
type Run struct {
	// RunID is an opaque, globally unique identifier for this run.
	RunID string `json:"run_id"`
	// ProjectName is a user-supplied label, not interpreted further.
	ProjectName string `json:"project_name"`
	// Version is the schema version triple embedded on every persisted run.
	Version SchemaVersion `json:"version"`
	// StartTime is set by `init`.
	StartTime Timestamp `json:"start_time"`
	// EndTime is set by `run-build` on completion; zero while in progress.
	EndTime Timestamp `json:"end_time,omitempty"`
	// Status transitions from in_progress to success or fail exactly once.
	Status RunStatus `json:"status"`
	// Jobs is the embedded sequence of descriptors merged into cache.json
	// by the Run Coordinator just before graph emission (spec.md ^4.5).
	Jobs []*JobDescriptor `json:"jobs"`
}

// IsTerminal reports whether the run has left in_progress.
func (r *Run) IsTerminal() bool {
	return r.Status != RunStatusInProgress
}
