package reasoning

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransient marks failures worth retrying: rate limits, server errors,
// timeouts and malformed responses. Terminal failures (bad credentials,
// invalid request) are not wrapped and abort the retry loop immediately.
var ErrTransient = errors.New("transient reasoning failure")

// Transient wraps err so IsRetryable reports true for it.
func Transient(err error) error {
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// IsRetryable reports whether the coordinator should retry the call.
// Context cancellation is never retryable: the lap has moved on.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrTransient)
}

// RetryableStatus reports whether an HTTP status from a provider is in the
// rate-limit class worth backing off for.
func RetryableStatus(status int) bool {
	return status == 429 || status == 408 || status >= 500
}
