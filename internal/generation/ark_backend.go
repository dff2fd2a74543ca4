package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seedworks/seedance-api/internal/ark"
)

// ArkBackend adapts the Ark client to the generation Backend interface.
type ArkBackend struct {
	client ark.Client
	model  string
	expiry time.Duration
}

// ArkBackendOption is a function that configures an ArkBackend.
type ArkBackendOption func(*ArkBackend)

// WithExecutionExpiry asks the service to expire tasks that have not
// finished within d. Aligning this with the polling budget means a job
// abandoned locally is not left running remotely.
func WithExecutionExpiry(d time.Duration) ArkBackendOption {
	return func(b *ArkBackend) {
		b.expiry = d
	}
}

// NewArkBackend creates a Backend that submits tasks for the given model
// endpoint.
func NewArkBackend(client ark.Client, model string, opts ...ArkBackendOption) *ArkBackend {
	b := &ArkBackend{client: client, model: model}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Submit performs exactly one create-task call and returns the handle.
// Failed submissions surface immediately; task creation is not
// idempotent-safe, so nothing here retries.
func (b *ArkBackend) Submit(ctx context.Context, req GenerationRequest) (JobHandle, error) {
	taskID, err := b.client.CreateTask(ctx, b.buildCreateTask(req))
	if err != nil {
		return JobHandle{}, mapClientError(err, "submit generation job")
	}
	return JobHandle{ID: taskID, CreatedAt: time.Now()}, nil
}

// FetchStatus performs exactly one status query and returns a snapshot.
func (b *ArkBackend) FetchStatus(ctx context.Context, handle JobHandle) (StatusSnapshot, error) {
	task, err := b.client.GetTask(ctx, handle.ID)
	if err != nil {
		return StatusSnapshot{}, mapClientError(err, "fetch job status")
	}
	return snapshotFromTask(task), nil
}

// buildCreateTask encodes the validated request as a create-task body. The
// structured generation parameters are rendered as canonical text commands
// appended to the prompt, which is the encoding the service expects.
func (b *ArkBackend) buildCreateTask(req GenerationRequest) ark.CreateTaskRequest {
	content := make([]ark.ContentItem, 0, len(req.Images)+1)
	content = append(content, ark.ContentItem{
		Type: "text",
		Text: renderPromptText(req),
	})
	for _, img := range req.Images {
		content = append(content, ark.ContentItem{
			Type:     "image_url",
			ImageURL: &ark.ImageURL{URL: img.URL},
			Role:     string(img.Role),
		})
	}

	audio := req.GenerateAudio
	body := ark.CreateTaskRequest{
		Model:           b.model,
		Content:         content,
		GenerateAudio:   &audio,
		ReturnLastFrame: req.ReturnLastFrame,
		ServiceTier:     string(req.ServiceTier),
	}
	if b.expiry > 0 {
		body.ExecutionExpiresAfter = int(b.expiry.Seconds())
	}
	return body
}

// renderPromptText appends the structured parameters to the prompt as text
// commands. NewRequest already stripped any caller-supplied directives, so
// the values written here are the single source of truth.
func renderPromptText(req GenerationRequest) string {
	var sb strings.Builder
	sb.WriteString(req.Prompt)
	fmt.Fprintf(&sb, " --resolution %s --ratio %s", req.Resolution, req.Ratio)
	if req.Duration != DurationAuto {
		fmt.Fprintf(&sb, " --duration %d", req.Duration)
	}
	return sb.String()
}

// snapshotFromTask converts a service task into a core snapshot.
func snapshotFromTask(task ark.Task) StatusSnapshot {
	snap := StatusSnapshot{
		Status: Status(task.Status),
		Meta: Metadata{
			Seed:             task.Seed,
			Resolution:       task.Resolution,
			Ratio:            task.Ratio,
			Duration:         task.Duration,
			ServiceTier:      task.ServiceTier,
			CompletionTokens: task.Usage.CompletionTokens,
			TotalTokens:      task.Usage.TotalTokens,
		},
	}
	if task.Error != nil {
		snap.Err = &ServiceError{Code: task.Error.Code, Message: task.Error.Message}
	}
	if task.Content != nil {
		snap.Content = &Content{
			VideoURL:     task.Content.VideoURL,
			LastFrameURL: task.Content.LastFrameURL,
		}
	}
	return snap
}

// mapClientError converts an Ark client error into a kinded core error.
// HTTP status classes decide the kind; anything without an HTTP status is
// a transport failure.
func mapClientError(err error, op string) *Error {
	var statusErr *ark.StatusError
	if errors.As(err, &statusErr) {
		kind := KindRemoteValidation
		switch {
		case statusErr.Unauthorized():
			kind = KindAuth
		case statusErr.RateLimited():
			kind = KindQuota
		case statusErr.StatusCode >= 500:
			kind = KindNetwork
		}
		e := wrapError(kind, op+" rejected by service", err)
		if statusErr.API != nil {
			e.Code = statusErr.API.Code
			e.Message = statusErr.API.Message
		}
		return e
	}
	return wrapError(KindNetwork, op+" transport failure", err)
}

// Compile-time check that ArkBackend implements Backend.
var _ Backend = (*ArkBackend)(nil)
