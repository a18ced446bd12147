package runner

// JobStage is the lifecycle position of a job. Stages only move forward:
// unloaded, loaded, configured, then succeeded or failed.
type JobStage string

const (
	StageUnloaded   JobStage = "unloaded"
	StageLoaded     JobStage = "loaded"
	StageConfigured JobStage = "configured"
	StageSucceeded  JobStage = "succeeded"
	StageFailed     JobStage = "failed"
)

// Terminal reports whether no further transition can happen.
func (s JobStage) Terminal() bool {
	return s == StageSucceeded || s == StageFailed
}

// StatusRecorder observes stage transitions. err is set when a job fails.
type StatusRecorder interface {
	SetJobStage(id int, stage JobStage, err error)
}

type nopRecorder struct{}

func (nopRecorder) SetJobStage(int, JobStage, error) {}
