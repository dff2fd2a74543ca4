package generation

import (
	"errors"
	"fmt"
)

// Kind classifies a generation failure. The set is closed: callers can
// switch over it to decide whether to fix input, re-authenticate, retry,
// or give up.
type Kind string

const (
	// KindValidation means the caller's input violated a local constraint.
	// Validation failures never reach the network.
	KindValidation Kind = "validation"
	// KindAuth means the remote boundary rejected the credential.
	KindAuth Kind = "authentication"
	// KindRemoteValidation means the service rejected a request the local
	// validator could not catch.
	KindRemoteValidation Kind = "remote_validation"
	// KindContentPolicy means the service blocked the prompt or content.
	KindContentPolicy Kind = "content_policy"
	// KindQuota means a rate or usage limit was exceeded.
	KindQuota Kind = "quota"
	// KindNetwork means a transport-level failure on a single call.
	KindNetwork Kind = "network"
	// KindCancelled means the caller aborted an in-progress poll.
	KindCancelled Kind = "cancelled"
	// KindTimedOut means the overall polling budget was exceeded.
	KindTimedOut Kind = "timed_out"
	// KindExpired means the remote job aged out before completing.
	// Expired jobs are safe to resubmit.
	KindExpired Kind = "expired"
	// KindRemoteFailure is a terminal service failure that fits no more
	// specific kind.
	KindRemoteFailure Kind = "remote_failure"
)

// Error is the structured failure type for the generation core. Code
// carries the service-reported error code when one exists.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("generation: %s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("generation: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

// newError creates an Error with a kind and message.
func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// wrapError creates an Error that wraps an underlying cause.
func wrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, err: err}
}

// KindOf returns the kind of err, or the empty string if err is not a
// generation Error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

// IsKind reports whether err is a generation Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
