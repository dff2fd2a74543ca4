package job

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/seedworks/seedance-api/internal/generation"
)

// Archiver persists media bytes from a time-limited URL and returns the
// durable location.
type Archiver interface {
	Archive(ctx context.Context, name, url string) (string, error)
}

// Manager runs generation lifecycles in the background and tracks them as
// Job records. Each job gets its own cancellable context and its own
// observation channel; jobs share nothing but the repository and the
// stateless generation service.
type Manager struct {
	repo     Repository
	gen      *generation.Service
	archiver Archiver
	logger   *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// ManagerOption is a function that configures a Manager.
type ManagerOption func(*Manager)

// WithArchiver enables archival of succeeded videos.
func WithArchiver(a Archiver) ManagerOption {
	return func(m *Manager) {
		m.archiver = a
	}
}

// NewManager creates a Manager over a repository and a generation service.
func NewManager(repo Repository, gen *generation.Service, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		repo:    repo,
		gen:     gen,
		logger:  logger,
		cancels: make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start validates the parameters, creates a Job record, and runs the
// lifecycle in the background. Validation failures return synchronously
// before any network call; everything after submission is reflected in the
// job record.
func (m *Manager) Start(ctx context.Context, p generation.Params, archive bool) (*Job, error) {
	req, err := generation.NewRequest(p)
	if err != nil {
		return nil, err
	}

	j := New()
	j.Prompt = req.Prompt
	j.Mode = string(req.Mode)

	if err := m.repo.Save(ctx, j); err != nil {
		return nil, err
	}

	m.logger.Info("generation job created",
		slog.String("job_id", j.ID),
		slog.String("mode", j.Mode),
	)

	// Detach from the request context so the poll survives the HTTP
	// request, but keep a per-job cancel for the cancel endpoint.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.mu.Lock()
	m.cancels[j.ID] = cancel
	m.mu.Unlock()

	go m.run(runCtx, j, req, archive)

	return j.Clone(), nil
}

// run drives one job to its terminal state and records the outcome.
func (m *Manager) run(ctx context.Context, j *Job, req generation.GenerationRequest, archive bool) {
	defer m.release(j.ID)

	obs := make(chan generation.StatusObservation, 16)
	var consumerDone sync.WaitGroup
	consumerDone.Add(1)
	go func() {
		defer consumerDone.Done()
		m.consumeObservations(ctx, j, obs)
	}()

	res, err := m.gen.GenerateRequest(ctx, req, generation.WithObservations(obs))

	// The poller has exited, so no further sends happen.
	close(obs)
	consumerDone.Wait()

	if err != nil {
		m.recordFailure(ctx, j, err)
		return
	}

	result := Result{
		VideoURL:     res.VideoURL,
		LastFrameURL: res.LastFrameURL,
		Seed:         res.Seed,
		Resolution:   res.Resolution,
		Ratio:        res.Ratio,
		Duration:     res.Duration,
		TotalTokens:  res.TotalTokens,
		Elapsed:      res.Elapsed,
	}

	if archive && m.archiver != nil {
		// Content URLs expire after ~24h; fetch and persist the bytes now.
		location, archiveErr := m.archiver.Archive(ctx, j.ID+".mp4", res.VideoURL)
		if archiveErr != nil {
			m.logger.Error("failed to archive video",
				slog.String("job_id", j.ID),
				slog.String("error", archiveErr.Error()),
			)
		} else {
			result.ArchiveURL = location
		}
	}

	if err := j.Succeed(result); err != nil {
		m.logger.Error("could not mark job succeeded",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
	}
	m.save(ctx, j)
}

// consumeObservations mirrors poll progress into the job record. The
// observation stream's JobID is the remote task identifier, recorded on
// first sight so the record can be correlated with the remote task.
func (m *Manager) consumeObservations(ctx context.Context, j *Job, obs <-chan generation.StatusObservation) {
	taskIDRecorded := false
	for o := range obs {
		if !taskIDRecorded && o.JobID != "" {
			j.SetTaskID(o.JobID)
			taskIDRecorded = true
			m.save(ctx, j)
		}
		if o.Status == generation.StatusRunning && j.GetStatus() == StatusQueued {
			if err := j.Start(); err == nil {
				m.save(ctx, j)
			}
		}
	}
}

// recordFailure maps a lifecycle error onto the job state machine.
func (m *Manager) recordFailure(ctx context.Context, j *Job, err error) {
	kind := generation.KindOf(err)

	var transitionErr error
	switch kind {
	case generation.KindCancelled:
		transitionErr = j.Cancel()
	case generation.KindTimedOut:
		transitionErr = j.Timeout()
	case generation.KindExpired:
		transitionErr = j.Expire(string(kind), err.Error())
	default:
		if kind == "" {
			kind = generation.KindRemoteFailure
		}
		var code string
		var ge *generation.Error
		if errors.As(err, &ge) {
			code = ge.Code
		}
		transitionErr = j.Fail(string(kind), code, err.Error())
	}
	if transitionErr != nil {
		m.logger.Error("could not record job failure",
			slog.String("job_id", j.ID),
			slog.String("kind", string(kind)),
			slog.String("error", transitionErr.Error()),
		)
	}

	m.logger.Warn("generation job ended in failure",
		slog.String("job_id", j.ID),
		slog.String("kind", string(kind)),
		slog.String("error", err.Error()),
	)
	m.save(ctx, j)
}

// Get returns the job record by ID.
func (m *Manager) Get(ctx context.Context, id string) (*Job, error) {
	return m.repo.FindByID(ctx, id)
}

// List returns all tracked jobs.
func (m *Manager) List(ctx context.Context) ([]*Job, error) {
	return m.repo.List(ctx)
}

// Cancel aborts an in-progress job. Returns ErrJobNotFound for unknown
// IDs and ErrInvalidTransition when the job is already terminal.
func (m *Manager) Cancel(ctx context.Context, id string) error {
	j, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if j.IsTerminal() {
		return ErrInvalidTransition
	}

	m.mu.Lock()
	cancel, ok := m.cancels[id]
	m.mu.Unlock()
	if !ok {
		// Record exists but no loop is running; the job finished between
		// the lookup and now.
		return ErrInvalidTransition
	}

	m.logger.Info("cancelling generation job", slog.String("job_id", id))
	cancel()
	return nil
}

// save persists the job, logging rather than failing the lifecycle.
func (m *Manager) save(ctx context.Context, j *Job) {
	if err := m.repo.Save(ctx, j); err != nil {
		m.logger.Error("failed to save job",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
	}
}

// release drops the cancel entry for a finished job.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.cancels[id]; ok {
		cancel()
		delete(m.cancels, id)
	}
}
