// Package bootstrap provides dependency initialization for the generation
// service.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/seedworks/seedance-api/internal/archive"
	"github.com/seedworks/seedance-api/internal/ark"
	"github.com/seedworks/seedance-api/internal/config"
	"github.com/seedworks/seedance-api/internal/generation"
	"github.com/seedworks/seedance-api/internal/job"
	"github.com/seedworks/seedance-api/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Manager *job.Manager
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Clients are served from an explicit registry keyed by credential and
	// model, so credential rotation is an Evict away.
	registry := ark.NewRegistry(ark.WithBuilder(func(k ark.Key) (ark.Client, error) {
		opts := []ark.ClientOption{ark.WithAPIKey(k.Credential)}
		if cfg.ArkBaseURL != "" {
			opts = append(opts, ark.WithBaseURL(cfg.ArkBaseURL))
		}
		return ark.NewClient(opts...)
	}))

	client, err := registry.Get(ark.Key{Credential: cfg.ArkAPIKey, Variant: cfg.Model})
	if err != nil {
		return nil, fmt.Errorf("create Ark client: %w", err)
	}

	// Remote tasks expire on the same clock as the local polling budget,
	// so an abandoned poll never leaves a job running remotely.
	backend := generation.NewArkBackend(client, cfg.Model,
		generation.WithExecutionExpiry(cfg.PollBudget()),
	)
	genService := generation.NewService(backend, logger,
		generation.WithPollerOptions(generation.WithBudget(cfg.PollBudget())),
	)

	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}
	archiver := archive.New(store, archive.WithLogger(logger))

	repo := job.NewMemoryRepository()
	manager := job.NewManager(repo, genService, logger, job.WithArchiver(archiver))

	return &Dependencies{
		Manager: manager,
	}, nil
}

// initStorage creates the appropriate archive backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 archive configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.ArchiveDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local archive configured",
		slog.String("archive_dir", cfg.ArchiveDir),
	)
	return localStore, nil
}
