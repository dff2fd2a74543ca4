// Package archive downloads generated media from the service's
// time-limited content URLs and persists it through the storage port.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/seedworks/seedance-api/internal/storage"
)

// Archiver fetches media bytes and hands them to a Storage backend.
type Archiver struct {
	httpClient *http.Client
	store      storage.Storage
	logger     *slog.Logger
}

// Option is a function that configures an Archiver.
type Option func(*Archiver)

// WithHTTPClient sets a custom HTTP client for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Archiver) {
		a.httpClient = c
	}
}

// WithLogger sets the archiver's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archiver) {
		a.logger = logger
	}
}

// New creates an Archiver over a storage backend. Downloads can take a
// while for long clips, so the default client allows five minutes.
func New(store storage.Storage, opts ...Option) *Archiver {
	a := &Archiver{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		store:      store,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Archive downloads the media at url and persists it under name,
// returning the stored location.
func (a *Archiver) Archive(ctx context.Context, name, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("archive: create download request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("archive: download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("archive: download failed with status %d", resp.StatusCode)
	}

	location, err := a.store.Save(ctx, name, resp.Body)
	if err != nil {
		return "", fmt.Errorf("archive: persist media: %w", err)
	}

	a.logger.Info("archived media",
		slog.String("name", name),
		slog.String("location", location),
	)
	return location, nil
}
