package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrNotFound signals an empty search / lookup result. It is a normal
// dialogue branch ("I couldn't find anything"), never retried and never
// surfaced as a failure.
var ErrNotFound = errors.New("not found")

// TransientError wraps a failure that is expected to clear on retry:
// network faults, 5xx responses and timeouts from the model or catalog
// services.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// AuthError wraps an authentication / authorization failure. The resilience
// layer retries these a bounded number of times (credentials occasionally
// flap on token rotation) before treating the turn as failed.
type AuthError struct {
	Service string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth failure for %s: %v", e.Service, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError reports malformed or unschematic model output. The
// resilience layer never retries it; the calling handler decides whether to
// re-prompt, fall back to a default, or give up on the turn.
type ValidationError struct {
	Reason string
	Raw    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// UnhandledResponseError reports that intent classification produced a
// category the router has no handler for. Fatal for the turn.
type UnhandledResponseError struct {
	Category string
}

func (e *UnhandledResponseError) Error() string {
	return fmt.Sprintf("unhandled response category %q", e.Category)
}

// ErrorClass buckets an error for retry decisions.
type ErrorClass int

const (
	// ClassFatal errors end the attempt cycle immediately.
	ClassFatal ErrorClass = iota
	// ClassTransient errors are retried up to the policy's attempt limit.
	ClassTransient
	// ClassAuth errors are retried up to the (smaller) auth attempt limit.
	ClassAuth
	// ClassValidation errors are never retried by the resilience layer.
	ClassValidation
)

// String returns the lowercase class name for logging.
func (c ErrorClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassAuth:
		return "auth"
	case ClassValidation:
		return "validation"
	default:
		return "fatal"
	}
}

// transientHints are substrings observed in provider / HTTP client errors
// that do not expose typed failures.
var transientHints = []string{
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"temporarily unavailable",
	"status 500",
	"status 502",
	"status 503",
	"status 504",
	"too many requests",
	"rate limit",
	"overloaded",
}

// Classify maps an arbitrary error onto an ErrorClass. Typed errors win;
// untyped errors fall back to timeout detection and substring hints, and
// anything unrecognized is fatal.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassFatal
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		return ClassTransient
	}
	var auth *AuthError
	if errors.As(err, &auth) {
		return ClassAuth
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return ClassValidation
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTransient
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range transientHints {
		if strings.Contains(msg, hint) {
			return ClassTransient
		}
	}
	if strings.Contains(msg, "status 401") || strings.Contains(msg, "status 403") || strings.Contains(msg, "unauthorized") {
		return ClassAuth
	}

	return ClassFatal
}
