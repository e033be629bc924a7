package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

// DefaultMaxRetries is used when the configured retry ceiling is negative
const DefaultMaxRetries = 3

// StatusError is a non-2xx reply from a provider API
type StatusError struct {
	StatusCode int
	// Body is kept for logs only; it is never shown to callers
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Retryable reports whether the status is worth retrying (429 or 5xx)
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// permanentError marks a failure that must not be retried
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so RetryPolicy gives up immediately
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryPolicy retries an operation with backoff while Retryable holds.
// The zero value is not usable; build one with NewRetryPolicy.
type RetryPolicy struct {
	// MaxAttempts counts the first try, so MaxAttempts=4 means 3 retries
	MaxAttempts int

	// Backoff returns the delay after the given failed attempt (0-based)
	Backoff func(attempt int) time.Duration

	// Retryable decides whether an error is transient
	Retryable func(err error) bool

	// AttemptTimeout bounds each attempt; zero means no per-attempt bound
	AttemptTimeout time.Duration

	// Sleep waits for d or until ctx is done
	Sleep func(ctx context.Context, d time.Duration) error

	// OnRetry is called before each backoff sleep
	OnRetry func(attempt int, delay time.Duration, err error)
}

// NewRetryPolicy returns the standard provider policy: up to maxRetries
// retries on transport errors, 429 and 5xx, sleeping 2^attempt seconds between tries
func NewRetryPolicy(maxRetries int, attemptTimeout time.Duration) RetryPolicy {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return RetryPolicy{
		MaxAttempts:    maxRetries + 1,
		Backoff:        ExponentialBackoff,
		Retryable:      IsRetryable,
		AttemptTimeout: attemptTimeout,
		Sleep:          SleepContext,
	}
}

// ExponentialBackoff waits 2^attempt seconds
func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

// IsRetryable treats transport failures, per-attempt timeouts, 429 and 5xx
// as transient. Cancellation and permanent errors are never retried.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrMalformedResponse) {
		return false
	}

	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}

	var status *StatusError
	if errors.As(err, &status) {
		return status.Retryable()
	}

	return true
}

// SleepContext sleeps for d, returning early with ctx.Err() if ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs op until it succeeds, fails permanently, or attempts run out.
// It returns the last error, or ctx.Err() if the caller's context ended.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := max(1, p.MaxAttempts)

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = p.runAttempt(ctx, op)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if attempt == attempts-1 || !p.retryable(err) {
			return err
		}

		delay := p.backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}
		if sleepErr := p.sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}

	return err
}

// Once runs op a single time under the per-attempt timeout, without retries
func (p RetryPolicy) Once(ctx context.Context, op func(ctx context.Context) error) error {
	return p.runAttempt(ctx, op)
}

func (p RetryPolicy) runAttempt(ctx context.Context, op func(ctx context.Context) error) error {
	if p.AttemptTimeout <= 0 {
		return op(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
	defer cancel()
	return op(attemptCtx)
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable == nil {
		return IsRetryable(err)
	}
	return p.Retryable(err)
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.Backoff == nil {
		return ExponentialBackoff(attempt)
	}
	return p.Backoff(attempt)
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep == nil {
		return SleepContext(ctx, d)
	}
	return p.Sleep(ctx, d)
}
