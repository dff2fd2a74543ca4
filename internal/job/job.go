// Package job tracks generation jobs on the service side: the Job record
// with its status state machine, a repository port for persistence, and
// the Manager that runs lifecycles in the background.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/seedworks/seedance-api/internal/job/id"
)

// Status represents the current state of a Job. Non-terminal states mirror
// the remote task; the cancelled and timed-out states are local exits.
type Status string

const (
	// StatusQueued indicates the job has been submitted and is waiting.
	StatusQueued Status = "queued"
	// StatusRunning indicates the remote service is processing the job.
	StatusRunning Status = "running"
	// StatusSucceeded indicates the job finished with content.
	StatusSucceeded Status = "succeeded"
	// StatusFailed indicates the service reported a terminal failure.
	StatusFailed Status = "failed"
	// StatusExpired indicates the remote job aged out before completing.
	StatusExpired Status = "expired"
	// StatusCancelled indicates the caller aborted the poll.
	StatusCancelled Status = "cancelled"
	// StatusTimedOut indicates the polling budget ran out.
	StatusTimedOut Status = "timed_out"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed. A fast job
// can jump straight from queued to a terminal state when the first poll
// already observes one.
var validTransitions = map[Status][]Status{
	StatusQueued: {StatusRunning, StatusSucceeded, StatusFailed,
		StatusExpired, StatusCancelled, StatusTimedOut},
	StatusRunning: {StatusSucceeded, StatusFailed,
		StatusExpired, StatusCancelled, StatusTimedOut},
	StatusSucceeded: {},
	StatusFailed:    {},
	StatusExpired:   {},
	StatusCancelled: {},
	StatusTimedOut:  {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Result holds the outcome of a succeeded job.
type Result struct {
	// VideoURL is the service's time-limited video URL.
	VideoURL string
	// LastFrameURL is the time-limited last-frame URL, if requested.
	LastFrameURL string
	// ArchiveURL is where the video bytes were persisted, if archival
	// was requested.
	ArchiveURL string
	// Seed is the seed the service used.
	Seed int64
	// Resolution is the actual output resolution.
	Resolution string
	// Ratio is the actual output aspect ratio.
	Ratio string
	// Duration is the actual clip duration in seconds.
	Duration int
	// TotalTokens is the token usage the service reported.
	TotalTokens int
	// Elapsed is the measured wall-clock generation time.
	Elapsed time.Duration
}

// Job is the service-side record of one generation.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// TaskID is the remote service's task identifier.
	TaskID string
	// Status is the current job state.
	Status Status
	// Prompt is the normalized prompt text.
	Prompt string
	// Mode is the generation mode.
	Mode string
	// ErrorKind classifies the failure if the job did not succeed.
	ErrorKind string
	// ErrorCode is the service-reported error code, if any.
	ErrorCode string
	// Error contains the failure message if the job did not succeed.
	Error string
	// Result holds the outcome for succeeded jobs.
	Result *Result
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when the remote service started processing.
	StartedAt time.Time
	// CompletedAt is when the job reached a terminal state.
	CompletedAt time.Time
}

// New creates a new Job with a generated ID and initial queued status.
func New() *Job {
	return NewWithID(id.Generate())
}

// NewWithID creates a new Job with the specified ID and initial queued
// status. Useful for testing or when the ID is generated externally.
func NewWithID(jobID string) *Job {
	now := time.Now()
	return &Job{
		ID:        jobID,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusRunning:
		j.StartedAt = j.UpdatedAt
	case StatusSucceeded, StatusFailed, StatusExpired, StatusCancelled, StatusTimedOut:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from queued to running.
func (j *Job) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Succeed records the result and transitions the job to succeeded.
func (j *Job) Succeed(res Result) error {
	j.mu.Lock()
	j.Result = &res
	j.mu.Unlock()
	return j.TransitionTo(StatusSucceeded)
}

// Fail records the failure classification and transitions to failed.
func (j *Job) Fail(kind, code, message string) error {
	j.mu.Lock()
	j.ErrorKind = kind
	j.ErrorCode = code
	j.Error = message
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// Expire transitions the job to expired with the failure details recorded.
func (j *Job) Expire(kind, message string) error {
	j.mu.Lock()
	j.ErrorKind = kind
	j.Error = message
	j.mu.Unlock()
	return j.TransitionTo(StatusExpired)
}

// Cancel transitions the job to cancelled.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// Timeout transitions the job to timed_out.
func (j *Job) Timeout() error {
	return j.TransitionTo(StatusTimedOut)
}

// SetTaskID records the remote task identifier.
func (j *Job) SetTaskID(taskID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.TaskID = taskID
	j.UpdatedAt = time.Now()
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	switch j.Status {
	case StatusSucceeded, StatusFailed, StatusExpired, StatusCancelled, StatusTimedOut:
		return true
	default:
		return false
	}
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	clone := &Job{
		ID:          j.ID,
		TaskID:      j.TaskID,
		Status:      j.Status,
		Prompt:      j.Prompt,
		Mode:        j.Mode,
		ErrorKind:   j.ErrorKind,
		ErrorCode:   j.ErrorCode,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
	if j.Result != nil {
		res := *j.Result
		clone.Result = &res
	}
	return clone
}
