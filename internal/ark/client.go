package ark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultBaseURL is the Ark API endpoint used when no override is given.
const DefaultBaseURL = "https://ark.ap-southeast.bytepluses.com/api/v3"

// Static errors for Ark client operations.
var (
	// ErrAPIKeyNotSet is returned when no API key is provided and the
	// ARK_API_KEY environment variable is not set.
	ErrAPIKeyNotSet = errors.New("ark: API key is required")
	// ErrModelRequired is returned when a create request names no model.
	ErrModelRequired = errors.New("ark: model is required")
	// ErrTaskIDRequired is returned when the task ID is not provided.
	ErrTaskIDRequired = errors.New("ark: task ID is required")
	// ErrNoTaskIDReturned is returned when the create response contains no task ID.
	ErrNoTaskIDReturned = errors.New("ark: create task failed: no task ID returned")
)

// StatusError reports a non-2xx response from the service. API carries the
// parsed error object when the body contained one.
type StatusError struct {
	StatusCode int
	API        *APIError
}

func (e *StatusError) Error() string {
	if e.API != nil {
		return fmt.Sprintf("ark: request failed with status %d: %s: %s", e.StatusCode, e.API.Code, e.API.Message)
	}
	return fmt.Sprintf("ark: request failed with status %d", e.StatusCode)
}

// Unauthorized returns true when the credential was rejected.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// RateLimited returns true when the service reported a rate or quota limit.
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Client defines the interface for interacting with the Ark
// content-generation API.
type Client interface {
	// CreateTask submits a generation task and returns its ID.
	CreateTask(ctx context.Context, req CreateTaskRequest) (taskID string, err error)

	// GetTask fetches the current status of a task. It performs exactly one
	// network call and never retries.
	GetTask(ctx context.Context, taskID string) (Task, error)
}

// HTTPClient is the HTTP implementation of the Ark Client interface.
// It performs exactly one network call per operation; retry scheduling is
// the caller's concern, because task creation is not idempotent-safe.
type HTTPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithAPIKey sets the API key for authentication.
func WithAPIKey(key string) ClientOption {
	return func(hc *HTTPClient) {
		hc.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithBaseURL sets a custom base URL for the Ark API.
func WithBaseURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.baseURL = url
	}
}

// NewClient creates a new Ark HTTP client.
// The API key can be set via the WithAPIKey option. If not provided,
// it is read from the environment variable ARK_API_KEY.
func NewClient(opts ...ClientOption) (*HTTPClient, error) {
	c := &HTTPClient{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	// If API key was not set via option, try environment variable
	if c.apiKey == "" {
		c.apiKey = os.Getenv("ARK_API_KEY")
	}

	if c.apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	return c, nil
}

// CreateTask submits a generation task and returns its ID.
func (c *HTTPClient) CreateTask(ctx context.Context, req CreateTaskRequest) (string, error) {
	if req.Model == "" {
		return "", ErrModelRequired
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("ark: marshal request: %w", err)
	}

	url := c.baseURL + "/contents/generations/tasks"

	var resp createTaskResponse
	if err := c.doRequest(ctx, http.MethodPost, url, bodyBytes, &resp); err != nil {
		return "", err
	}

	if resp.ID == "" {
		if resp.Error != nil {
			return "", fmt.Errorf("%w: %s: %s", ErrNoTaskIDReturned, resp.Error.Code, resp.Error.Message)
		}
		return "", ErrNoTaskIDReturned
	}

	return resp.ID, nil
}

// GetTask fetches the current status of a task.
func (c *HTTPClient) GetTask(ctx context.Context, taskID string) (Task, error) {
	if taskID == "" {
		return Task{}, ErrTaskIDRequired
	}

	url := fmt.Sprintf("%s/contents/generations/tasks/%s", c.baseURL, taskID)

	var task Task
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &task); err != nil {
		return Task{}, err
	}

	return task, nil
}

// doRequest performs a single HTTP request.
func (c *HTTPClient) doRequest(ctx context.Context, method, url string, body []byte, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("ark: create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ark: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ark: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var envelope errorEnvelope
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error != nil {
			statusErr.API = envelope.Error
		}
		return statusErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("ark: unmarshal response: %w", err)
		}
	}

	return nil
}
