package generation

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Poller defaults. The schedule favors low latency for short jobs while
// bounding poll frequency for long ones: 2s, 4s, 8s, then 10s flat.
const (
	defaultBaseDelay = 2 * time.Second
	defaultMaxDelay  = 10 * time.Second
	defaultBudget    = 10 * time.Minute

	// defaultNetworkTolerance is the number of consecutive transient
	// poll-tick failures absorbed before the network error surfaces.
	// This tolerance is part of the backoff contract: a lone failed
	// status query is not treated as a terminal failure.
	defaultNetworkTolerance = 3
)

// Poller drives repeated status queries for one job until a terminal
// status, cancellation, or the wall-clock budget ends the loop. A Poller
// instance owns no shared state; poll several jobs concurrently by running
// one instance per job.
type Poller struct {
	fetcher          StatusFetcher
	baseDelay        time.Duration
	maxDelay         time.Duration
	budget           time.Duration
	networkTolerance int
	observations     chan<- StatusObservation
	logger           *slog.Logger
}

// PollerOption is a function that configures a Poller.
type PollerOption func(*Poller)

// WithBaseDelay sets the delay before the second status query. Subsequent
// delays double until the cap.
func WithBaseDelay(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.baseDelay = d
	}
}

// WithMaxDelay caps the backoff delay.
func WithMaxDelay(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.maxDelay = d
	}
}

// WithBudget bounds the total polling time. Exceeding it ends the loop
// with a timed-out error regardless of the last observed status.
func WithBudget(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.budget = d
	}
}

// WithNetworkTolerance sets how many consecutive transient poll failures
// are absorbed before surfacing. Zero surfaces the first failure.
func WithNetworkTolerance(n int) PollerOption {
	return func(p *Poller) {
		p.networkTolerance = n
	}
}

// WithObservations subscribes a channel to the poller's progress stream.
// Sends never block: a slow or absent consumer drops observations but
// cannot stall or abort polling.
func WithObservations(ch chan<- StatusObservation) PollerOption {
	return func(p *Poller) {
		p.observations = ch
	}
}

// WithPollerLogger sets the logger used for poll progress.
func WithPollerLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a Poller around a status fetcher.
func NewPoller(fetcher StatusFetcher, opts ...PollerOption) *Poller {
	p := &Poller{
		fetcher:          fetcher,
		baseDelay:        defaultBaseDelay,
		maxDelay:         defaultMaxDelay,
		budget:           defaultBudget,
		networkTolerance: defaultNetworkTolerance,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// delayFor returns the backoff delay for a 0-indexed attempt:
// min(base * 2^attempt, max).
func (p *Poller) delayFor(attempt int) time.Duration {
	d := p.baseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.maxDelay {
			return p.maxDelay
		}
	}
	if d > p.maxDelay {
		return p.maxDelay
	}
	return d
}

// Run polls the job until a terminal snapshot, cancellation, or budget
// exhaustion. The context is observed both before each tick and during the
// backoff sleep, so cancellation takes effect within the current sleep
// interval and issues no further network calls. All timers are released on
// every exit path.
func (p *Poller) Run(ctx context.Context, handle JobHandle) (StatusSnapshot, error) {
	deadline := time.Now().Add(p.budget)

	// The job is queued the instant submission succeeds; report that
	// without spending a poll on it.
	last := StatusSnapshot{Status: StatusQueued}
	p.observe(handle, last, 0)

	netFailures := 0
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return last, exitError(err)
		}
		if !time.Now().Before(deadline) {
			return last, newError(KindTimedOut, "polling budget exceeded before a terminal status")
		}

		snap, err := p.fetcher.FetchStatus(ctx, handle)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return last, exitError(ctx.Err())
			}
			if KindOf(err) != KindNetwork {
				return last, err
			}
			netFailures++
			if netFailures > p.networkTolerance {
				return last, err
			}
			p.logger.Warn("transient poll failure, will retry",
				slog.String("job_id", handle.ID),
				slog.Int("attempt", attempt),
				slog.Int("consecutive_failures", netFailures),
				slog.String("error", err.Error()),
			)
		default:
			netFailures = 0
			// The service's transitions are monotonic; guard the stream
			// against regressions anyway.
			if snap.Status.rank() >= last.Status.rank() {
				last = snap
			}
			if last.Status.IsTerminal() {
				return last, nil
			}
		}

		p.observe(handle, last, attempt)

		delay := p.delayFor(attempt)
		if remaining := time.Until(deadline); remaining < delay {
			delay = remaining
		}
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return last, exitError(ctx.Err())
			case <-timer.C:
			}
		}
	}
}

// observe publishes the latest non-terminal status without blocking.
func (p *Poller) observe(handle JobHandle, snap StatusSnapshot, attempt int) {
	if p.observations == nil {
		return
	}
	select {
	case p.observations <- StatusObservation{
		JobID:   handle.ID,
		Status:  snap.Status,
		Attempt: attempt,
		At:      time.Now(),
	}:
	default:
	}
}

// exitError maps a context error to the matching outcome kind.
func exitError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return wrapError(KindTimedOut, "polling deadline exceeded", err)
	}
	return wrapError(KindCancelled, "polling cancelled", err)
}
