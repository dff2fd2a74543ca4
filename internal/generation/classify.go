package generation

import (
	"fmt"
	"strings"
)

// Classify maps a terminal snapshot to a success or a typed failure. It is
// a pure mapping with no network activity: succeeded snapshots pass
// through, failed ones become an Error whose kind is derived from the
// service's structured error code, and expired ones become KindExpired so
// the caller knows a resubmission is safe.
func Classify(snap StatusSnapshot) (StatusSnapshot, error) {
	switch snap.Status {
	case StatusSucceeded:
		if snap.Content == nil || snap.Content.VideoURL == "" {
			return snap, newError(KindRemoteFailure, "succeeded job carries no content URL")
		}
		return snap, nil

	case StatusFailed:
		if snap.Err == nil {
			return snap, newError(KindRemoteFailure, "job failed without a service error")
		}
		return snap, &Error{
			Kind:    classifyServiceError(snap.Err),
			Code:    snap.Err.Code,
			Message: snap.Err.Message,
		}

	case StatusExpired:
		return snap, newError(KindExpired, "job expired before completing")

	default:
		return snap, newError(KindRemoteFailure,
			fmt.Sprintf("cannot classify non-terminal status %q", snap.Status))
	}
}

// classifyServiceError derives the failure kind from the service error.
// The structured code is authoritative; the message heuristics below are a
// best-effort fallback for undocumented codes and may misclassify exotic
// variants.
func classifyServiceError(se *ServiceError) Kind {
	code := strings.ToLower(se.Code)
	switch {
	case strings.Contains(code, "sensitive"),
		strings.Contains(code, "content_policy"),
		strings.Contains(code, "moderation"):
		return KindContentPolicy
	case strings.Contains(code, "quota"),
		strings.Contains(code, "rate_limit"),
		strings.Contains(code, "ratelimit"),
		strings.Contains(code, "throttl"):
		return KindQuota
	case strings.Contains(code, "auth"),
		strings.Contains(code, "api_key"),
		strings.Contains(code, "apikey"),
		strings.Contains(code, "unauthorized"):
		return KindAuth
	case strings.Contains(code, "invalid"),
		strings.Contains(code, "parameter"),
		strings.Contains(code, "validation"):
		return KindRemoteValidation
	}

	// Fallback on the free-text message.
	msg := strings.ToLower(se.Message)
	switch {
	case strings.Contains(msg, "content") && (strings.Contains(msg, "policy") ||
		strings.Contains(msg, "filter") || strings.Contains(msg, "blocked")):
		return KindContentPolicy
	case strings.Contains(msg, "sensitive"):
		return KindContentPolicy
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit"):
		return KindQuota
	}

	return KindRemoteFailure
}
