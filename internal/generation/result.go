package generation

import (
	"time"
)

// GenerationResult is the immutable record returned for a succeeded job.
// It merges the originating request, the terminal snapshot's content and
// metadata, and the measured wall-clock generation time. The VideoURL and
// LastFrameURL are time-limited; archive the bytes for durability.
type GenerationResult struct {
	Request          GenerationRequest
	VideoURL         string
	LastFrameURL     string
	Seed             int64
	Resolution       string
	Ratio            string
	Duration         int
	ServiceTier      string
	CompletionTokens int
	TotalTokens      int
	Elapsed          time.Duration
	CompletedAt      time.Time
}

// AssembleResult merges the request, a terminal succeeded snapshot and the
// elapsed wall-clock time into a GenerationResult. It is only valid for
// snapshots that classified as success.
func AssembleResult(req GenerationRequest, snap StatusSnapshot, elapsed time.Duration) (GenerationResult, error) {
	if snap.Status != StatusSucceeded || snap.Content == nil {
		return GenerationResult{}, newError(KindRemoteFailure,
			"result assembly requires a succeeded snapshot with content")
	}

	return GenerationResult{
		Request:          req,
		VideoURL:         snap.Content.VideoURL,
		LastFrameURL:     snap.Content.LastFrameURL,
		Seed:             snap.Meta.Seed,
		Resolution:       snap.Meta.Resolution,
		Ratio:            snap.Meta.Ratio,
		Duration:         snap.Meta.Duration,
		ServiceTier:      snap.Meta.ServiceTier,
		CompletionTokens: snap.Meta.CompletionTokens,
		TotalTokens:      snap.Meta.TotalTokens,
		Elapsed:          elapsed,
		CompletedAt:      time.Now(),
	}, nil
}
