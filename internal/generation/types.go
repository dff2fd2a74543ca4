// Package generation implements the remote-job lifecycle for video
// synthesis: building a validated request, submitting it, polling the
// remote task with exponential backoff, classifying the terminal outcome,
// and assembling an immutable result.
package generation

import (
	"context"
	"time"
)

// Status represents the observed state of a remote generation job.
type Status string

// Job statuses aligned with the remote content-generation API.
const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// IsTerminal returns true if the status is a final state. Polling stops
// unconditionally once a terminal status is observed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusExpired:
		return true
	default:
		return false
	}
}

// rank orders statuses along the queued -> running -> terminal sequence so
// the poller can guard the observation stream against regressions.
func (s Status) rank() int {
	switch s {
	case StatusQueued:
		return 0
	case StatusRunning:
		return 1
	default:
		return 2
	}
}

// JobHandle identifies a submitted remote job. It is immutable once
// obtained and has no persistence beyond the polling loop; if the process
// dies mid-poll the remote service expires the job on its own.
type JobHandle struct {
	ID        string
	CreatedAt time.Time
}

// ServiceError is the error the service reports for a failed job.
type ServiceError struct {
	Code    string
	Message string
}

// Content holds the media URLs of a succeeded job. The URLs are presigned
// and expire roughly 24 hours after completion; callers needing durability
// must archive the bytes themselves.
type Content struct {
	VideoURL     string
	LastFrameURL string
}

// Metadata is service-reported information, populated on snapshots taken
// after the service has started processing.
type Metadata struct {
	Seed             int64
	Resolution       string
	Ratio            string
	Duration         int
	ServiceTier      string
	CompletionTokens int
	TotalTokens      int
}

// StatusSnapshot is one observation of a remote job. Err is populated only
// for failed jobs, Content only for succeeded ones. Snapshots are
// transient, superseded by the next poll tick.
type StatusSnapshot struct {
	Status  Status
	Err     *ServiceError
	Content *Content
	Meta    Metadata
}

// StatusObservation is one entry of the poller's progress stream. For a
// given job, observations arrive in non-decreasing status order.
type StatusObservation struct {
	JobID   string
	Status  Status
	Attempt int
	At      time.Time
}

// Submitter creates a remote generation job from a validated request.
type Submitter interface {
	Submit(ctx context.Context, req GenerationRequest) (JobHandle, error)
}

// StatusFetcher performs a single status query for a job. Implementations
// are stateless between calls and never block beyond one request's
// transport timeout.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, handle JobHandle) (StatusSnapshot, error)
}

// Backend is the remote boundary as seen by the lifecycle: one submit
// operation and one status query.
type Backend interface {
	Submitter
	StatusFetcher
}
