package model

// StageStatus is the per-CI-stage rollup status (spec.md ^3).
type StageStatus string

const (
	StageStatusSuccess     StageStatus = "success"
	StageStatusFail        StageStatus = "fail"
	StageStatusFailIgnored StageStatus = "fail_ignored"
)

// JobState is the coarse execution state of one job within a snapshot.
type JobState string

const (
	JobUnstarted JobState = "unstarted"
	JobStarted   JobState = "started"
	JobFinished  JobState = "finished"
)

// RunSnapshot is the derived, read-only view aggregating cache.json and
// every status/*.json into run -> pipelines -> ci_stages -> jobs
// (spec.md ^3). Rebuilt on demand by the Reporter Loop; never written by
// anything else.
type RunSnapshot struct {
	RunID       string               `json:"run_id"`
	ProjectName string               `json:"project_name"`
	Version     SchemaVersion        `json:"version"`
	StartTime   Timestamp            `json:"start_time"`
	EndTime     Timestamp            `json:"end_time,omitempty"`
	Status      RunStatus            `json:"status"`
	Pipelines   map[string]*Pipeline `json:"pipelines"`
}

// Pipeline aggregates a run's jobs by pipeline_name.
type Pipeline struct {
	Name     string           `json:"name"`
	CIStages map[string]*Stage `json:"ci_stages"`
}

// Stage aggregates one CI stage's jobs within a pipeline.
type Stage struct {
	Name              string             `json:"name"`
	Status            StageStatus        `json:"status"`
	ProgressPercent   float64            `json:"progress_percent"`
	Jobs              map[string]*JobView `json:"jobs"`
}

// JobView is the snapshot-level projection of one job.
type JobView struct {
	JobID             string   `json:"job_id"`
	Command           string   `json:"command"`
	Description       string   `json:"description,omitempty"`
	State             JobState `json:"state"`
	Complete          bool     `json:"complete"`
	CommandReturnCode int      `json:"command_return_code,omitempty"`
	WrapperReturnCode int      `json:"wrapper_return_code,omitempty"`
	TimeoutReached    bool     `json:"timeout_reached,omitempty"`
}
