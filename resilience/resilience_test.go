package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchbot/couchbot/core"
)

// recordingSleep captures requested backoff delays without waiting.
func recordingSleep(delays *[]time.Duration) SleepFunc {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func newTestExecutor(delays *[]time.Duration, policy Policy) *Executor {
	return New(func(o *Options) {
		o.Policy = policy
		o.Sleep = recordingSleep(delays)
	})
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	var delays []time.Duration
	ex := newTestExecutor(&delays, Policy{
		MaxAttempts:     3,
		BaseDelay:       1000 * time.Millisecond,
		MaxDelay:        30 * time.Second,
		MaxAuthAttempts: 2,
	})

	calls := 0
	result, err := Do(context.Background(), ex, "catalog.search", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &core.TransientError{Op: "search", Err: errors.New("connection reset")}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{1000 * time.Millisecond, 2000 * time.Millisecond}, delays)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	var delays []time.Duration
	ex := newTestExecutor(&delays, Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Second, MaxAuthAttempts: 2})

	calls := 0
	_, err := Do(context.Background(), ex, "model.invoke", func(context.Context) (int, error) {
		calls++
		return 0, &core.TransientError{Op: "invoke", Err: errors.New("status 503")}
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, delays, 2)
	assert.Contains(t, err.Error(), "model.invoke")
	assert.Equal(t, core.ClassTransient, core.Classify(err))
}

func TestDo_AuthBoundedSeparately(t *testing.T) {
	var delays []time.Duration
	ex := newTestExecutor(&delays, Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Second, MaxAuthAttempts: 2})

	calls := 0
	_, err := Do(context.Background(), ex, "catalog.add", func(context.Context) (bool, error) {
		calls++
		return false, &core.AuthError{Service: "movie-catalog", Err: errors.New("key rejected")}
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls, "auth failures should stop at MaxAuthAttempts, not MaxAttempts")
}

func TestDo_ValidationNeverRetried(t *testing.T) {
	var delays []time.Duration
	ex := newTestExecutor(&delays, Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Second, MaxAuthAttempts: 2})

	calls := 0
	_, err := Do(context.Background(), ex, "intent.parse", func(context.Context) (string, error) {
		calls++
		return "", &core.ValidationError{Reason: "not json", Raw: "??"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestDo_FatalShortCircuits(t *testing.T) {
	var delays []time.Duration
	ex := newTestExecutor(&delays, Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Second, MaxAuthAttempts: 2})

	calls := 0
	_, err := Do(context.Background(), ex, "catalog.delete", func(context.Context) (string, error) {
		calls++
		return "", errors.New("title is protected")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestDo_AttemptTimeoutIsTransient(t *testing.T) {
	var delays []time.Duration
	ex := New(func(o *Options) {
		o.Policy = Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Second, AttemptTimeout: 5 * time.Millisecond, MaxAuthAttempts: 2}
		o.Sleep = recordingSleep(&delays)
	})

	calls := 0
	result, err := Do(context.Background(), ex, "slow.op", func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "recovered", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 2, calls)
}

func TestDo_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ex := New(func(o *Options) {
		o.Policy = Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Second, MaxAuthAttempts: 2}
		o.Sleep = func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}
	})

	_, err := Do(ctx, ex, "cancelled.op", func(context.Context) (string, error) {
		return "", &core.TransientError{Op: "x", Err: errors.New("flaky")}
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoffDelay_Caps(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 30 * time.Second}
	assert.Equal(t, time.Second, backoffDelay(p, 1))
	assert.Equal(t, 2*time.Second, backoffDelay(p, 2))
	assert.Equal(t, 16*time.Second, backoffDelay(p, 5))
	assert.Equal(t, 30*time.Second, backoffDelay(p, 6))
	assert.Equal(t, 30*time.Second, backoffDelay(p, 64))
}
