package model

import "time"

// ScanRun summarizes one execution of the pipeline.
type ScanRun struct {
	ID             string
	RootRepo       string
	StartedAt      time.Time
	FinishedAt     time.Time
	ReposScanned   int
	CreaturesFound int
}

// Duration returns how long the run took.
func (r ScanRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
