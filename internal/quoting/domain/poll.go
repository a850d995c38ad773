package domain

import "strings"

// JobState is the upstream state of a pending quote job.
type JobState string

const (
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
)

// ParseJobState normalizes the upstream status vocabulary. Anything not
// recognised as terminal is treated as still processing.
func ParseJobState(s string) JobState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "complete", "success", "succeeded", "done":
		return JobCompleted
	case "failed", "failure", "error", "rejected":
		return JobFailed
	default:
		return JobProcessing
	}
}

// JobStatus is one answer from the status endpoint.
type JobStatus struct {
	State   JobState
	Premium float64
	Excess  float64
	Message string
}
