// Package resilience wraps every external call CouchBot makes (language
// model, catalog services, render gateway) in a retry / backoff / timeout
// envelope. Nothing in the repository calls those services directly.
//
// Failures are bucketed by core.Classify: transient faults retry with
// exponential backoff up to the policy's attempt limit, auth faults retry a
// smaller bounded number of times, validation faults and everything else
// propagate immediately. Delays follow min(base << (attempt-1), max) with no
// jitter, which keeps retry timing deterministic and testable.
package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/logging"
)

// Policy bounds the retry behavior of an Executor.
type Policy struct {
	// MaxAttempts is the total number of tries (first call included) for
	// transient failures.
	MaxAttempts int
	// BaseDelay seeds the exponential backoff sequence.
	BaseDelay time.Duration
	// MaxDelay caps a single backoff wait.
	MaxDelay time.Duration
	// AttemptTimeout bounds each individual attempt; zero disables the
	// per-attempt deadline.
	AttemptTimeout time.Duration
	// MaxAuthAttempts is the smaller try budget for auth-classified
	// failures.
	MaxAuthAttempts int
}

// DefaultPolicy returns the policy used across the bot unless overridden.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		BaseDelay:       time.Second,
		MaxDelay:        30 * time.Second,
		AttemptTimeout:  30 * time.Second,
		MaxAuthAttempts: 2,
	}
}

// SleepFunc waits for the given duration or until the context is done.
// Injectable so tests can observe backoff delays without real waiting.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Options configures an Executor.
type Options struct {
	Policy Policy
	Logger logging.Logger
	Sleep  SleepFunc
}

// Executor runs operations under a retry policy. It is stateless apart from
// its configuration and safe for concurrent use.
type Executor struct {
	policy Policy
	logger logging.Logger
	sleep  SleepFunc
}

// New creates an Executor with the default policy and a no-op logger unless
// overridden.
func New(optFns ...func(o *Options)) *Executor {
	opts := Options{
		Policy: DefaultPolicy(),
		Logger: logging.NoOpLogger{},
		Sleep:  defaultSleep,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Sleep == nil {
		opts.Sleep = defaultSleep
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Executor{policy: opts.Policy, logger: opts.Logger, sleep: opts.Sleep}
}

// Policy returns the executor's configured policy.
func (e *Executor) Policy() Policy { return e.policy }

// backoffDelay computes the wait before the given (1-based) attempt's retry.
func backoffDelay(p Policy, attempt int) time.Duration {
	shift := attempt - 1
	if shift > 30 {
		return p.MaxDelay
	}
	d := p.BaseDelay << shift
	if d > p.MaxDelay || d <= 0 {
		return p.MaxDelay
	}
	return d
}

// Do runs op under the executor's policy, retrying per error class. The
// label tags log entries and the final wrapped error for observability.
//
// Go methods cannot carry type parameters, so Do is a package-level
// function taking the Executor explicitly.
func Do[T any](ctx context.Context, e *Executor, label string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if e.policy.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, e.policy.AttemptTimeout)
		}
		result, err := op(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			e.logger.Debug("operation succeeded", "label", label, "attempt", attempt)
			return result, nil
		}

		class := core.Classify(err)
		retryable := false
		switch class {
		case core.ClassTransient:
			retryable = attempt < e.policy.MaxAttempts
		case core.ClassAuth:
			retryable = attempt < e.policy.MaxAuthAttempts
		}

		e.logger.Warn("operation failed",
			"label", label,
			"attempt", attempt,
			"class", class.String(),
			"retryable", retryable,
			"error", err.Error(),
		)

		if !retryable {
			return zero, fmt.Errorf("%s: %w", label, err)
		}

		delay := backoffDelay(e.policy, attempt)
		if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
			return zero, fmt.Errorf("%s: %w", label, sleepErr)
		}
	}
}
