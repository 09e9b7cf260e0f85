package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is a reusable retry schedule shared by I/O call sites.
// The zero value retries nothing; use Default() for the standard
// file-access policy.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// InitialInterval is the delay before the second attempt.
	InitialInterval time.Duration
	// MaxInterval caps the exponential growth of the delay.
	MaxInterval time.Duration
	// Retryable decides whether an error is worth another attempt.
	// A nil predicate retries every error.
	Retryable func(error) bool
}

// Default returns the policy used for transient file-access failures:
// a few quick attempts with short exponential backoff, suitable for
// files briefly held by antivirus scanners or sync tools.
func Default() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}
}

// Do runs op, retrying per the policy. Non-retryable errors and context
// cancellation end the attempts immediately; the last error is returned.
func (p Policy) Do(ctx context.Context, op func() error) error {
	if p.MaxAttempts <= 1 {
		return op()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(wrapped, backoff.WithContext(
		backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx))
}
