package backend

import (
	"context"
	"net/http"
	"time"
)

// BackoffFunc returns how long to wait after the failed attempt with the
// given zero-based index.
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff waits 2^attempt seconds (1s, 2s, 4s, ...).
func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// FixedBackoff returns a BackoffFunc that always waits d.
func FixedBackoff(d time.Duration) BackoffFunc {
	return func(int) time.Duration { return d }
}

// Policy controls retry behavior for a backend client, independent of any
// particular transport. The zero value performs a single attempt.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// StatusBackoff computes the wait after a retryable HTTP status.
	StatusBackoff BackoffFunc

	// NetworkBackoff computes the wait after a network-level failure.
	NetworkBackoff BackoffFunc

	// RetryableStatus reports whether an HTTP status code is transient and
	// worth retrying. Any other non-OK status fails immediately.
	RetryableStatus func(code int) bool

	// Sleep is the wait implementation. Tests substitute a recorder to
	// avoid real waiting. Defaults to a context-aware time.Sleep.
	Sleep func(ctx context.Context, d time.Duration)
}

// DefaultPolicy mirrors the hosted inference API's behavior: 3 attempts,
// exponential backoff while the model is loading (503), a fixed 1-second
// backoff on network failure.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		StatusBackoff:   ExponentialBackoff,
		NetworkBackoff:  FixedBackoff(time.Second),
		RetryableStatus: func(code int) bool { return code == http.StatusServiceUnavailable },
	}
}

// Attempts returns the attempt budget, never less than one.
func (p Policy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Wait sleeps for d, returning early if ctx is canceled.
func (p Policy) Wait(ctx context.Context, d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(ctx, d)
		return
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Retryable reports whether the policy retries the given HTTP status code.
func (p Policy) Retryable(code int) bool {
	return p.RetryableStatus != nil && p.RetryableStatus(code)
}
