package reasoning

import (
	"context"
	"time"
)

// RetryPolicy wraps a call with bounded retries and exponential backoff.
// Sleep is injectable so tests can run with a fake clock.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the delay before the second attempt; it doubles each retry
	// (1s, 2s, 4s with the default base).
	BaseDelay time.Duration
	// Sleep waits for d or until ctx is done. Nil means a real clock.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy mirrors the coordinator contract: three attempts backed
// off at 1s, 2s, 4s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Do runs fn until it succeeds, returns a non-retryable error, or attempts
// are exhausted. It returns the attempt count alongside the final error so
// callers can log retry behaviour.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = realSleep
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return attempt, nil
		}
		if !IsRetryable(err) || attempt == attempts {
			return attempt, err
		}

		delay := p.BaseDelay << (attempt - 1)
		if serr := sleep(ctx, delay); serr != nil {
			return attempt, serr
		}
	}
	return attempts, err
}

func realSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
