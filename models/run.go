// ABOUTME: Stored seed run metadata
// ABOUTME: One row per pipeline invocation with its final status
package models

import "time"

// Run statuses.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

type Run struct {
	ID         string
	BaseURL    string
	Status     string
	Error      string
	Requests   int64
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Duration is how long the run took, or zero while it is still running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
