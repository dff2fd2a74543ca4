// Package ark provides an HTTP client for the Ark content-generation API
// used to run Seedance video synthesis tasks.
package ark

// Status represents the status of a generation task as reported by the
// service.
type Status string

// Task statuses aligned with the Ark content-generation API.
const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// IsTerminal returns true if the status is a terminal state. Once a task
// reports a terminal status the service never changes it again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusExpired:
		return true
	default:
		return false
	}
}

// APIError is the structured error object the service attaches to failed
// tasks and to rejected requests.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImageURL wraps a reference image location.
type ImageURL struct {
	URL string `json:"url"`
}

// ContentItem is one element of a task's content array. Text items carry
// the prompt; image_url items carry a reference image and an optional role
// (first_frame, last_frame or reference_image).
type ContentItem struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
	Role     string    `json:"role,omitempty"`
}

// CreateTaskRequest is the body for creating a content-generation task.
type CreateTaskRequest struct {
	Model                 string        `json:"model"`
	Content               []ContentItem `json:"content"`
	GenerateAudio         *bool         `json:"generate_audio,omitempty"`
	ReturnLastFrame       bool          `json:"return_last_frame,omitempty"`
	ServiceTier           string        `json:"service_tier,omitempty"`
	ExecutionExpiresAfter int           `json:"execution_expires_after,omitempty"`
}

// createTaskResponse is the response from the task creation endpoint.
type createTaskResponse struct {
	ID    string    `json:"id"`
	Error *APIError `json:"error,omitempty"`
}

// TaskContent holds the media URLs of a succeeded task. The URLs are
// presigned and expire roughly 24 hours after completion.
type TaskContent struct {
	VideoURL     string `json:"video_url"`
	LastFrameURL string `json:"last_frame_url,omitempty"`
}

// Usage reports token consumption for a task.
type Usage struct {
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Task is the response from the task status endpoint. Error is only
// populated for failed tasks, Content only for succeeded ones. The
// remaining metadata appears once the service has started processing.
type Task struct {
	ID          string       `json:"id"`
	Status      Status       `json:"status"`
	Error       *APIError    `json:"error"`
	Content     *TaskContent `json:"content,omitempty"`
	Seed        int64        `json:"seed"`
	Resolution  string       `json:"resolution"`
	Ratio       string       `json:"ratio"`
	Duration    int          `json:"duration"`
	ServiceTier string       `json:"service_tier"`
	Usage       Usage        `json:"usage"`
}

// errorEnvelope is the body shape of a non-2xx response.
type errorEnvelope struct {
	Error *APIError `json:"error"`
}
