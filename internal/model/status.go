package model

// JobStatus is the mutable execution record for one job id (spec.md ^3).
// The status file is the single source of truth for a job's outcome.
type JobStatus struct {
	// JobID identifies the descriptor this status belongs to.
	JobID string `json:"job_id"`
	// Complete is false while started, true once finalized. Monotonic:
	// never transitions back to false once true (spec.md ^5).
	Complete bool `json:"complete"`
	// StartTime is set when the wrapper begins running the command.
	StartTime Timestamp `json:"start_time"`
	// EndTime is set once the wrapper has finalized the status.
	EndTime Timestamp `json:"end_time,omitempty"`
	// DurationSeconds is EndTime - StartTime, populated at finalization.
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	// TimeoutReached is true iff the wrapper killed the process on timeout.
	TimeoutReached bool `json:"timeout_reached"`
	// CommandReturnCode is the real process's exit code, or a synthetic
	// non-zero value if the process never spawned at all.
	CommandReturnCode int `json:"command_return_code"`
	// WrapperReturnCode is the exec subcommand's own exit code: 0 or 1.
	WrapperReturnCode int `json:"wrapper_return_code"`
	// Stdout is the captured standard output, split into lines.
	Stdout []string `json:"stdout,omitempty"`
	// Stderr is the captured standard error, split into lines. Empty when
	// InterleaveStdoutStderr was set on the descriptor.
	Stderr []string `json:"stderr,omitempty"`
	// WrapperArgs is a copy of the arguments the exec subcommand was
	// invoked with, for debugging.
	WrapperArgs []string `json:"wrapper_args,omitempty"`
}

// Success reports the invariant from spec.md ^8:
//
//	wrapper_return_code == 0
//	  <=> command_return_code in {0} u ignore_returns
//	  AND (not timeout_reached OR timeout_ok OR timeout_ignore)
func (s *JobStatus) Success() bool {
	return s.WrapperReturnCode == 0
}
