package reasoning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeSleep(delays *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestRetryPolicy_SucceedsFirstAttempt(t *testing.T) {
	var delays []time.Duration
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: fakeSleep(&delays)}

	attempts, err := p.Do(context.Background(), func(context.Context) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, delays)
}

func TestRetryPolicy_ExponentialBackoff(t *testing.T) {
	var delays []time.Duration
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: fakeSleep(&delays)}

	calls := 0
	attempts, err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("rate limited"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestRetryPolicy_ExhaustsAttempts(t *testing.T) {
	var delays []time.Duration
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: fakeSleep(&delays)}

	fail := Transient(errors.New("still down"))
	attempts, err := p.Do(context.Background(), func(context.Context) error { return fail })

	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, ErrTransient)
	assert.Len(t, delays, 2)
}

func TestRetryPolicy_NonRetryableStopsImmediately(t *testing.T) {
	var delays []time.Duration
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: fakeSleep(&delays)}

	bad := errors.New("invalid api key")
	attempts, err := p.Do(context.Background(), func(context.Context) error { return bad })

	assert.Equal(t, 1, attempts)
	assert.Equal(t, bad, err)
	assert.Empty(t, delays)
}

func TestRetryPolicy_ContextCancelNotRetried(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second,
		Sleep: func(context.Context, time.Duration) error { return nil }}

	attempts, err := p.Do(context.Background(), func(context.Context) error {
		return Transient(context.DeadlineExceeded)
	})

	// Even wrapped as transient, a deadline means the lap has moved on.
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryPolicy_SleepCancellationAborts(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error { return context.Canceled }}

	attempts, err := p.Do(context.Background(), func(context.Context) error {
		return Transient(errors.New("busy"))
	})

	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryPolicy_ZeroAttemptsRunsOnce(t *testing.T) {
	p := RetryPolicy{}
	calls := 0
	attempts, err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Transient(errors.New("x"))))
	assert.False(t, IsRetryable(errors.New("x")))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(Transient(context.Canceled)))
}

func TestRetryableStatus(t *testing.T) {
	for _, s := range []int{429, 408, 500, 502, 503} {
		assert.True(t, RetryableStatus(s), "status %d", s)
	}
	for _, s := range []int{200, 400, 401, 403, 404} {
		assert.False(t, RetryableStatus(s), "status %d", s)
	}
}
