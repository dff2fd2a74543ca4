package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedworks/seedance-api/internal/generation"
	"github.com/seedworks/seedance-api/internal/job"
)

// fakeManager implements the Manager interface for handler tests.
type fakeManager struct {
	startFn  func(ctx context.Context, p generation.Params, archive bool) (*job.Job, error)
	getFn    func(ctx context.Context, id string) (*job.Job, error)
	listFn   func(ctx context.Context) ([]*job.Job, error)
	cancelFn func(ctx context.Context, id string) error
}

func (f *fakeManager) Start(ctx context.Context, p generation.Params, archive bool) (*job.Job, error) {
	return f.startFn(ctx, p, archive)
}

func (f *fakeManager) Get(ctx context.Context, id string) (*job.Job, error) {
	return f.getFn(ctx, id)
}

func (f *fakeManager) List(ctx context.Context) ([]*job.Job, error) {
	return f.listFn(ctx)
}

func (f *fakeManager) Cancel(ctx context.Context, id string) error {
	return f.cancelFn(ctx, id)
}

func newTestRouter(m Manager) http.Handler {
	h := NewHandlers(m, slog.Default())
	return NewRouter(h, slog.Default(), DefaultConfig())
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeManager{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCreateGeneration(t *testing.T) {
	var gotParams generation.Params
	var gotArchive bool
	m := &fakeManager{
		startFn: func(ctx context.Context, p generation.Params, archive bool) (*job.Job, error) {
			gotParams = p
			gotArchive = archive
			return job.NewWithID("gen-123"), nil
		},
	}
	router := newTestRouter(m)

	body := `{
		"prompt": "a cat surfing",
		"mode": "first_frame",
		"images": [{"url": "https://example.com/first.png"}],
		"resolution": "1080p",
		"ratio": "16:9",
		"duration": 5,
		"archive": true
	}`
	req := httptest.NewRequest(http.MethodPost, "/generations", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp CreateGenerationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "gen-123", resp.ID)
	assert.Equal(t, string(job.StatusQueued), resp.Status)

	assert.Equal(t, "a cat surfing", gotParams.Prompt)
	assert.Equal(t, generation.ModeFirstFrame, gotParams.Mode)
	require.Len(t, gotParams.Images, 1)
	assert.Equal(t, "https://example.com/first.png", gotParams.Images[0].URL)
	assert.Equal(t, generation.Resolution1080p, gotParams.Resolution)
	assert.Equal(t, 5, gotParams.Duration)
	assert.True(t, gotArchive)
}

func TestCreateGeneration_InvalidJSON(t *testing.T) {
	router := newTestRouter(&fakeManager{})

	req := httptest.NewRequest(http.MethodPost, "/generations", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_JSON", resp.Code)
}

func TestCreateGeneration_DTOValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing prompt", `{"mode": "text_only"}`},
		{"missing mode", `{"prompt": "a cat"}`},
		{"unknown mode", `{"prompt": "a cat", "mode": "bogus"}`},
		{"unknown resolution", `{"prompt": "a cat", "mode": "text_only", "resolution": "4k"}`},
		{"too many images", `{"prompt": "a cat", "mode": "reference_images", "images": [
			{"url": "https://example.com/1.png"},
			{"url": "https://example.com/2.png"},
			{"url": "https://example.com/3.png"},
			{"url": "https://example.com/4.png"},
			{"url": "https://example.com/5.png"}
		]}`},
	}

	router := newTestRouter(&fakeManager{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/generations", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateGeneration_DomainValidationError(t *testing.T) {
	m := &fakeManager{
		startFn: func(ctx context.Context, p generation.Params, archive bool) (*job.Job, error) {
			_, err := generation.NewRequest(p)
			return nil, err
		},
	}
	router := newTestRouter(m)

	// Passes the DTO tags but violates the mode's image arity.
	body := `{"prompt": "a cat", "mode": "first_frame"}`
	req := httptest.NewRequest(http.MethodPost, "/generations", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
}

func TestGetGeneration(t *testing.T) {
	succeeded := job.NewWithID("gen-123")
	succeeded.TaskID = "cgt-20260701-abc"
	succeeded.Status = job.StatusSucceeded
	succeeded.Result = &job.Result{
		VideoURL:    "https://cdn.example.com/video.mp4",
		Seed:        7,
		Resolution:  "720p",
		Ratio:       "16:9",
		Duration:    5,
		TotalTokens: 900,
		Elapsed:     42 * time.Second,
	}

	m := &fakeManager{
		getFn: func(ctx context.Context, id string) (*job.Job, error) {
			require.Equal(t, "gen-123", id)
			return succeeded, nil
		},
	}
	router := newTestRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/generations/gen-123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "gen-123", resp.ID)
	assert.Equal(t, "cgt-20260701-abc", resp.TaskID)
	assert.Equal(t, string(job.StatusSucceeded), resp.Status)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "https://cdn.example.com/video.mp4", resp.Result.VideoURL)
	assert.Equal(t, int64(42000), resp.Result.ElapsedMs)
}

func TestGetGeneration_FailedJobCarriesClassification(t *testing.T) {
	failed := job.NewWithID("gen-123")
	failed.Status = job.StatusFailed
	failed.ErrorKind = "content_policy"
	failed.ErrorCode = "OutputVideoSensitiveContentDetected"
	failed.Error = "output flagged"

	m := &fakeManager{
		getFn: func(ctx context.Context, id string) (*job.Job, error) {
			return failed, nil
		},
	}
	router := newTestRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/generations/gen-123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "content_policy", resp.ErrorKind)
	assert.Equal(t, "OutputVideoSensitiveContentDetected", resp.ErrorCode)
	assert.Nil(t, resp.Result)
}

func TestGetGeneration_NotFound(t *testing.T) {
	m := &fakeManager{
		getFn: func(ctx context.Context, id string) (*job.Job, error) {
			return nil, job.ErrJobNotFound
		},
	}
	router := newTestRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/generations/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelGeneration(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		m := &fakeManager{
			cancelFn: func(ctx context.Context, id string) error {
				require.Equal(t, "gen-123", id)
				return nil
			},
		}
		router := newTestRouter(m)

		req := httptest.NewRequest(http.MethodPost, "/generations/gen-123/cancel", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		m := &fakeManager{
			cancelFn: func(ctx context.Context, id string) error {
				return job.ErrJobNotFound
			},
		}
		router := newTestRouter(m)

		req := httptest.NewRequest(http.MethodPost, "/generations/missing/cancel", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("already terminal", func(t *testing.T) {
		m := &fakeManager{
			cancelFn: func(ctx context.Context, id string) error {
				return job.ErrInvalidTransition
			},
		}
		router := newTestRouter(m)

		req := httptest.NewRequest(http.MethodPost, "/generations/gen-123/cancel", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(&fakeManager{})

	t.Run("generated when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("incoming ID honored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "req-42")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	})
}
