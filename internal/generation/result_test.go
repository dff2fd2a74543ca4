package generation

import (
	"testing"
	"time"
)

func TestAssembleResult(t *testing.T) {
	req, err := NewRequest(Params{Prompt: "a cat surfing", Mode: ModeTextOnly})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := StatusSnapshot{
		Status: StatusSucceeded,
		Content: &Content{
			VideoURL:     "https://cdn.example.com/video.mp4",
			LastFrameURL: "https://cdn.example.com/last.png",
		},
		Meta: Metadata{
			Seed:             42,
			Resolution:       "720p",
			Ratio:            "16:9",
			Duration:         5,
			ServiceTier:      "default",
			CompletionTokens: 108900,
			TotalTokens:      108900,
		},
	}

	res, err := AssembleResult(req, snap, 42*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.VideoURL != "https://cdn.example.com/video.mp4" {
		t.Errorf("unexpected video URL %q", res.VideoURL)
	}
	if res.LastFrameURL != "https://cdn.example.com/last.png" {
		t.Errorf("unexpected last frame URL %q", res.LastFrameURL)
	}
	if res.Seed != 42 || res.Resolution != "720p" || res.Ratio != "16:9" || res.Duration != 5 {
		t.Errorf("metadata not carried through: %+v", res)
	}
	if res.TotalTokens != 108900 {
		t.Errorf("expected total tokens 108900, got %d", res.TotalTokens)
	}
	if res.Elapsed != 42*time.Second {
		t.Errorf("expected elapsed 42s, got %v", res.Elapsed)
	}
	if res.CompletedAt.IsZero() {
		t.Error("expected CompletedAt to be set")
	}
	if res.Request.Prompt != req.Prompt {
		t.Errorf("expected originating request preserved, got %+v", res.Request)
	}
}

func TestAssembleResult_RequiresSucceededSnapshot(t *testing.T) {
	req, _ := NewRequest(Params{Prompt: "a cat", Mode: ModeTextOnly})

	if _, err := AssembleResult(req, StatusSnapshot{Status: StatusFailed}, 0); err == nil {
		t.Error("expected error for non-succeeded snapshot")
	}
	if _, err := AssembleResult(req, StatusSnapshot{Status: StatusSucceeded}, 0); err == nil {
		t.Error("expected error for succeeded snapshot without content")
	}
}
