package runstore

import "time"

// Stage names a pipeline step.
type Stage string

const (
	StageClean    Stage = "clean"
	StageEnrich   Stage = "enrich"
	StageValidate Stage = "validate"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	// StatusInterrupted marks a cancelled enrichment whose checkpoint remains.
	StatusInterrupted Status = "interrupted"
	StatusFailed      Status = "failed"
)

// Run is one recorded stage execution.
type Run struct {
	ID           int64
	RunID        string
	Stage        Stage
	Status       Status
	InputPath    string
	OutputPath   string
	ReportPath   string
	Rows         int
	MetricName   string
	MetricValue  float64
	ErrorMessage string
	ReportJSON   string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Elapsed is the wall time between start and finish.
func (r *Run) Elapsed() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
