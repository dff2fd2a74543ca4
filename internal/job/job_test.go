package job

import (
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	j := New()

	if j.ID == "" {
		t.Error("expected non-empty ID")
	}
	if j.Status != StatusQueued {
		t.Errorf("expected status %s, got %s", StatusQueued, j.Status)
	}
	if j.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestJob_ValidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"queued to running", StatusQueued, StatusRunning, true},
		{"queued to succeeded", StatusQueued, StatusSucceeded, true},
		{"queued to cancelled", StatusQueued, StatusCancelled, true},
		{"queued to timed_out", StatusQueued, StatusTimedOut, true},
		{"running to succeeded", StatusRunning, StatusSucceeded, true},
		{"running to failed", StatusRunning, StatusFailed, true},
		{"running to expired", StatusRunning, StatusExpired, true},
		{"running to cancelled", StatusRunning, StatusCancelled, true},
		{"running to queued", StatusRunning, StatusQueued, false},
		{"succeeded to running", StatusSucceeded, StatusRunning, false},
		{"succeeded to failed", StatusSucceeded, StatusFailed, false},
		{"cancelled to running", StatusCancelled, StatusRunning, false},
		{"failed to cancelled", StatusFailed, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := NewWithID("test-job")
			j.Status = tt.from

			err := j.TransitionTo(tt.to)
			if tt.ok && err != nil {
				t.Errorf("expected transition %s -> %s to succeed, got %v", tt.from, tt.to, err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition for %s -> %s, got %v", tt.from, tt.to, err)
			}
		})
	}
}

func TestJob_LifecycleTimestamps(t *testing.T) {
	j := NewWithID("test-job")

	if err := j.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.StartedAt.IsZero() {
		t.Error("expected StartedAt set after Start")
	}

	if err := j.Succeed(Result{VideoURL: "https://cdn.example.com/video.mp4"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.CompletedAt.IsZero() {
		t.Error("expected CompletedAt set after Succeed")
	}
	if j.Result == nil || j.Result.VideoURL != "https://cdn.example.com/video.mp4" {
		t.Errorf("expected result recorded, got %+v", j.Result)
	}
}

func TestJob_Fail(t *testing.T) {
	j := NewWithID("test-job")

	if err := j.Fail("content_policy", "OutputVideoSensitiveContentDetected", "flagged"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.Status != StatusFailed {
		t.Errorf("expected status %s, got %s", StatusFailed, j.Status)
	}
	if j.ErrorKind != "content_policy" || j.ErrorCode != "OutputVideoSensitiveContentDetected" {
		t.Errorf("expected failure classification recorded, got kind=%q code=%q", j.ErrorKind, j.ErrorCode)
	}
}

func TestJob_TerminalIsFinal(t *testing.T) {
	j := NewWithID("test-job")
	if err := j.Cancel(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := j.Start(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition after cancel, got %v", err)
	}
	if err := j.Succeed(Result{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition after cancel, got %v", err)
	}
}

func TestJob_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusQueued, false},
		{StatusRunning, false},
		{StatusSucceeded, true},
		{StatusFailed, true},
		{StatusExpired, true},
		{StatusCancelled, true},
		{StatusTimedOut, true},
	}

	for _, tt := range tests {
		j := NewWithID("test-job")
		j.Status = tt.status
		if got := j.IsTerminal(); got != tt.terminal {
			t.Errorf("IsTerminal(%s) = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestJob_Clone(t *testing.T) {
	j := NewWithID("test-job")
	j.TaskID = "cgt-1"
	j.Prompt = "a cat"
	j.Result = &Result{VideoURL: "https://cdn.example.com/video.mp4", Elapsed: 3 * time.Second}

	clone := j.Clone()
	if clone == j {
		t.Fatal("expected a distinct instance")
	}
	if clone.ID != j.ID || clone.TaskID != j.TaskID || clone.Prompt != j.Prompt {
		t.Error("expected fields carried over")
	}
	if clone.Result == j.Result {
		t.Error("expected a deep copy of the result")
	}

	clone.Result.VideoURL = "changed"
	if j.Result.VideoURL == "changed" {
		t.Error("mutating the clone leaked into the original")
	}
}
