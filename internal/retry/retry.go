// Package retry runs an operation again when it fails, under an explicit
// policy.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first.
	// Values below 1 mean a single attempt.
	MaxAttempts int
	// Backoff is the wait before the second attempt. Zero retries
	// immediately.
	Backoff time.Duration
	// Multiplier scales Backoff after every failed attempt. Values
	// below 1 keep the delay constant.
	Multiplier float64
}

// Once is the member-fetch policy: one immediate retry, then give up.
var Once = Policy{MaxAttempts: 2}

// PermanentError marks an error that must not be retried.
type PermanentError struct{ Err error }

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so that Do returns it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Do calls fn until it succeeds, returns a permanent error, or the policy
// runs out of attempts. The last error is returned. Context cancellation
// stops the loop between attempts.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)
	delay := p.Backoff
	var lastErr error

	for i := range attempts {
		if err := fn(ctx); err == nil {
			return nil
		} else if lastErr = err; isPermanent(err) || ctx.Err() != nil {
			return err
		}

		if i == attempts-1 {
			break
		}
		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			if p.Multiplier > 1 {
				delay = time.Duration(float64(delay) * p.Multiplier)
			}
		}
	}
	return lastErr
}

func isPermanent(err error) bool {
	return errors.As(err, new(*PermanentError))
}
