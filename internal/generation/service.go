package generation

import (
	"context"
	"log/slog"
	"time"
)

// Service runs the full lifecycle for one generation: validate, submit,
// poll, classify, assemble. Instances are safe for concurrent use; each
// call owns its own handle, poller and attempt state, and the only shared
// resource is the stateless backend client.
type Service struct {
	backend  Backend
	logger   *slog.Logger
	pollOpts []PollerOption
}

// ServiceOption is a function that configures a Service.
type ServiceOption func(*Service)

// WithPollerOptions sets default poller options applied to every call.
// Per-call options passed to Generate take precedence.
func WithPollerOptions(opts ...PollerOption) ServiceOption {
	return func(s *Service) {
		s.pollOpts = opts
	}
}

// NewService creates a generation Service over a backend.
func NewService(backend Backend, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		backend: backend,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate validates the parameters and runs the job to a terminal
// outcome. A validation failure returns before any network call is made.
func (s *Service) Generate(ctx context.Context, p Params, pollOpts ...PollerOption) (*GenerationResult, error) {
	req, err := NewRequest(p)
	if err != nil {
		return nil, err
	}
	return s.GenerateRequest(ctx, req, pollOpts...)
}

// GenerateRequest runs an already-validated request to a terminal outcome:
// one submission, then backoff polling until the classifier produces a
// success or a typed failure.
func (s *Service) GenerateRequest(ctx context.Context, req GenerationRequest, pollOpts ...PollerOption) (*GenerationResult, error) {
	start := time.Now()

	handle, err := s.backend.Submit(ctx, req)
	if err != nil {
		s.logger.Error("job submission failed",
			slog.String("mode", string(req.Mode)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("job submitted",
		slog.String("job_id", handle.ID),
		slog.String("mode", string(req.Mode)),
		slog.String("resolution", string(req.Resolution)),
		slog.String("ratio", string(req.Ratio)),
		slog.Int("duration", req.Duration),
		slog.String("service_tier", string(req.ServiceTier)),
	)

	opts := make([]PollerOption, 0, len(s.pollOpts)+len(pollOpts)+1)
	opts = append(opts, WithPollerLogger(s.logger))
	opts = append(opts, s.pollOpts...)
	opts = append(opts, pollOpts...)

	snap, err := NewPoller(s.backend, opts...).Run(ctx, handle)
	if err != nil {
		s.logger.Warn("polling ended without a terminal status",
			slog.String("job_id", handle.ID),
			slog.String("last_status", string(snap.Status)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	terminal, err := Classify(snap)
	if err != nil {
		s.logger.Warn("job ended in failure",
			slog.String("job_id", handle.ID),
			slog.String("status", string(terminal.Status)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	result, err := AssembleResult(req, terminal, time.Since(start))
	if err != nil {
		return nil, err
	}

	s.logger.Info("job succeeded",
		slog.String("job_id", handle.ID),
		slog.Duration("elapsed", result.Elapsed),
		slog.Int64("seed", result.Seed),
		slog.Int("total_tokens", result.TotalTokens),
	)
	return &result, nil
}
