// Package server provides the HTTP API for the generation service.
// It includes handlers, middleware, routes, and DTOs separated from
// domain types.
package server

// ImageInputDTO is one reference image in a generation request.
type ImageInputDTO struct {
	// URL is the image location.
	URL string `json:"url" validate:"required,url"`
	// Role tags how the image is used (first_frame, last_frame,
	// reference_image). Optional for modes that imply it.
	Role string `json:"role" validate:"omitempty,oneof=first_frame last_frame reference_image"`
}

// CreateGenerationRequest is the HTTP request body for starting a
// generation. The fine-grained mode/image arity rules live in the
// generation package; the tags here reject only the obviously malformed.
type CreateGenerationRequest struct {
	// Prompt is the text prompt, optionally carrying inline directives.
	Prompt string `json:"prompt" validate:"required,max=10000"`
	// Mode selects how reference images drive the generation.
	Mode string `json:"mode" validate:"required,oneof=text_only first_frame first_last_frame reference_images"`
	// Images are the reference images, constrained by the mode.
	Images []ImageInputDTO `json:"images" validate:"omitempty,max=4,dive"`
	// Duration is -1 for service-chosen, or seconds in [4,12]. Omitted
	// means service-chosen.
	Duration int `json:"duration" validate:"omitempty,min=-1,max=12"`
	// Resolution of the output clip.
	Resolution string `json:"resolution" validate:"omitempty,oneof=480p 720p 1080p"`
	// Ratio of the output clip; adaptive follows the input image.
	Ratio string `json:"ratio" validate:"omitempty,oneof=16:9 4:3 1:1 3:4 9:16 21:9 adaptive"`
	// GenerateAudio asks the service to produce an audio track.
	GenerateAudio bool `json:"generate_audio"`
	// ServiceTier trades latency for cost.
	ServiceTier string `json:"service_tier" validate:"omitempty,oneof=default flex"`
	// ReturnLastFrame asks for a last-frame image URL alongside the video.
	ReturnLastFrame bool `json:"return_last_frame"`
	// Archive persists the video bytes past the 24-hour URL window.
	Archive bool `json:"archive"`
}

// CreateGenerationResponse is the HTTP response after starting a generation.
type CreateGenerationResponse struct {
	// ID is the unique identifier for the created job.
	ID string `json:"id"`
	// Status is the initial job status.
	Status string `json:"status"`
}

// GenerationResultDTO carries the outcome of a succeeded generation.
type GenerationResultDTO struct {
	VideoURL     string `json:"video_url"`
	LastFrameURL string `json:"last_frame_url,omitempty"`
	ArchiveURL   string `json:"archive_url,omitempty"`
	Seed         int64  `json:"seed"`
	Resolution   string `json:"resolution"`
	Ratio        string `json:"ratio"`
	Duration     int    `json:"duration"`
	TotalTokens  int    `json:"total_tokens"`
	ElapsedMs    int64  `json:"elapsed_ms"`
}

// GenerationResponse is the HTTP response for getting generation details.
type GenerationResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// TaskID is the remote service's task identifier, once known.
	TaskID string `json:"task_id,omitempty"`
	// Status is the current job status.
	Status string `json:"status"`
	// ErrorKind classifies the failure, if any.
	ErrorKind string `json:"error_kind,omitempty"`
	// ErrorCode is the service-reported error code, if any.
	ErrorCode string `json:"error_code,omitempty"`
	// Error contains the failure message, if any.
	Error string `json:"error,omitempty"`
	// Result is present once the job succeeded.
	Result *GenerationResultDTO `json:"result,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
