// ABOUTME: Bounded retry policy with exponential backoff for backend calls
// ABOUTME: Shared by the segmentation gateway, the LLM clients, and the script engine
package util

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Retrier is a bounded retry policy. An operation runs up to MaxRetries+1
// times with exponential backoff between attempts. Permanent classifies
// errors that must not be retried; a nil Permanent treats every error as
// transient. A zero BaseDelay retries without sleeping.
type Retrier struct {
	MaxRetries int
	BaseDelay  time.Duration
	Permanent  func(error) bool
}

// Do runs op until it succeeds or the policy gives up. It stops early when
// Permanent classifies the failure or when ctx is done, returning that error
// unwrapped so callers can still classify it. The attempt passed to op is
// 1-based.
func (r Retrier) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	attempts := r.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			time.Sleep(CalculateBackoff(r.BaseDelay, attempt-1))
		}

		err := op(ctx, attempt)
		if err == nil {
			return nil
		}
		if r.Permanent != nil && r.Permanent(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
	}

	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

// CalculateBackoff returns exponential backoff with jitter
// Base delay is doubled each attempt, with random jitter up to 25%
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift (max 30 for safety)
	if attempt > 30 {
		attempt = 30
	}
	// Exponential: 2^attempt * base
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	// Cap at 30 seconds
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	// Add jitter: -25% to +25% using auto-seeded math/rand/v2
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
