package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/seedworks/seedance-api/internal/generation"
	"github.com/seedworks/seedance-api/internal/job"
)

// Manager is the lifecycle surface the handlers need. Satisfied by
// job.Manager.
type Manager interface {
	Start(ctx context.Context, p generation.Params, archive bool) (*job.Job, error)
	Get(ctx context.Context, id string) (*job.Job, error)
	List(ctx context.Context) ([]*job.Job, error)
	Cancel(ctx context.Context, id string) error
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	manager   Manager
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(manager Manager, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		manager:   manager,
		validator: validator.New(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateGeneration handles POST /generations requests.
func (h *Handlers) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	var req CreateGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	params := generation.Params{
		Prompt:          req.Prompt,
		Mode:            generation.Mode(req.Mode),
		Images:          toImageInputs(req.Images),
		Duration:        req.Duration,
		Resolution:      generation.Resolution(req.Resolution),
		Ratio:           generation.Ratio(req.Ratio),
		GenerateAudio:   req.GenerateAudio,
		ServiceTier:     generation.ServiceTier(req.ServiceTier),
		ReturnLastFrame: req.ReturnLastFrame,
	}

	created, err := h.manager.Start(r.Context(), params, req.Archive)
	if err != nil {
		if generation.IsKind(err, generation.KindValidation) {
			writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
			return
		}
		h.logger.Error("failed to start generation",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to start generation", "GENERATION_START_FAILED")
		return
	}

	h.logger.Info("generation accepted",
		slog.String("job_id", created.ID),
		slog.String("mode", req.Mode),
	)

	writeJSON(w, http.StatusAccepted, CreateGenerationResponse{
		ID:     created.ID,
		Status: string(created.Status),
	})
}

// GetGeneration handles GET /generations/{id} requests.
func (h *Handlers) GetGeneration(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "generation ID is required", "MISSING_GENERATION_ID")
		return
	}

	found, err := h.manager.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "generation not found", "GENERATION_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get generation",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get generation", "GENERATION_FETCH_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, toGenerationResponse(found))
}

// CancelGeneration handles POST /generations/{id}/cancel requests.
func (h *Handlers) CancelGeneration(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "generation ID is required", "MISSING_GENERATION_ID")
		return
	}

	err := h.manager.Cancel(r.Context(), jobID)
	switch {
	case errors.Is(err, job.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "generation not found", "GENERATION_NOT_FOUND")
	case errors.Is(err, job.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "generation already finished", "GENERATION_ALREADY_TERMINAL")
	case err != nil:
		h.logger.Error("failed to cancel generation",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to cancel generation", "GENERATION_CANCEL_FAILED")
	default:
		writeJSON(w, http.StatusAccepted, GenerationResponse{
			ID:     jobID,
			Status: string(job.StatusCancelled),
		})
	}
}

// toImageInputs converts DTO images into domain image inputs.
func toImageInputs(images []ImageInputDTO) []generation.ImageInput {
	if len(images) == 0 {
		return nil
	}
	out := make([]generation.ImageInput, 0, len(images))
	for _, img := range images {
		out = append(out, generation.ImageInput{
			URL:  img.URL,
			Role: generation.ImageRole(img.Role),
		})
	}
	return out
}

// toGenerationResponse maps a job record into the response DTO.
func toGenerationResponse(j *job.Job) GenerationResponse {
	resp := GenerationResponse{
		ID:        j.ID,
		TaskID:    j.TaskID,
		Status:    string(j.Status),
		ErrorKind: j.ErrorKind,
		ErrorCode: j.ErrorCode,
		Error:     j.Error,
	}
	if j.Result != nil {
		resp.Result = &GenerationResultDTO{
			VideoURL:     j.Result.VideoURL,
			LastFrameURL: j.Result.LastFrameURL,
			ArchiveURL:   j.Result.ArchiveURL,
			Seed:         j.Result.Seed,
			Resolution:   j.Result.Resolution,
			Ratio:        j.Result.Ratio,
			Duration:     j.Result.Duration,
			TotalTokens:  j.Result.TotalTokens,
			ElapsedMs:    j.Result.Elapsed.Milliseconds(),
		}
	}
	return resp
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
