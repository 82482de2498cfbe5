// ABOUTME: Tests for the bounded retry policy and backoff calculation
// ABOUTME: Validates attempt counting, permanent short-circuits, cancellation, and jitter bounds
package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrier_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	r := Retrier{MaxRetries: 3}

	err := r.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("op calls = %d, want 1", calls)
	}
}

func TestRetrier_RetriesTransientFailures(t *testing.T) {
	calls := 0
	r := Retrier{MaxRetries: 3, BaseDelay: time.Millisecond}

	err := r.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("op calls = %d, want 3", calls)
	}
}

func TestRetrier_ExhaustsAttempts(t *testing.T) {
	calls := 0
	sentinel := errors.New("still broken")
	r := Retrier{MaxRetries: 2, BaseDelay: time.Millisecond}

	err := r.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return sentinel
	})

	if err == nil {
		t.Fatal("Do() expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("op calls = %d, want 3", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("error chain should include the last failure, got %v", err)
	}
}

func TestRetrier_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	fatal := errors.New("unauthorized")
	r := Retrier{
		MaxRetries: 5,
		Permanent:  func(err error) bool { return errors.Is(err, fatal) },
	}

	err := r.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return fatal
	})

	if !errors.Is(err, fatal) {
		t.Fatalf("Do() error = %v, want the permanent error unwrapped", err)
	}
	if calls != 1 {
		t.Errorf("op calls = %d, want 1 (no retries for permanent errors)", calls)
	}
}

func TestRetrier_ContextCancellationStopsRetries(t *testing.T) {
	calls := 0
	ctx, cancel := context.WithCancel(context.Background())
	r := Retrier{MaxRetries: 5}

	err := r.Do(ctx, func(ctx context.Context, attempt int) error {
		calls++
		cancel()
		return errors.New("interrupted")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("op calls = %d, want 1", calls)
	}
}

func TestRetrier_PassesAttemptNumbers(t *testing.T) {
	var seen []int
	r := Retrier{MaxRetries: 2}

	_ = r.Do(context.Background(), func(ctx context.Context, attempt int) error {
		seen = append(seen, attempt)
		return errors.New("transient")
	})

	want := []int{1, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("attempts seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("attempt %d = %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestRetrier_NegativeMaxRetriesStillRunsOnce(t *testing.T) {
	calls := 0
	r := Retrier{MaxRetries: -1}

	err := r.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return errors.New("transient")
	})

	if err == nil {
		t.Fatal("Do() expected error")
	}
	if calls != 1 {
		t.Errorf("op calls = %d, want 1", calls)
	}
}

func TestCalculateBackoff_ZeroAttempt(t *testing.T) {
	result := CalculateBackoff(time.Second, 0)
	if result != 0 {
		t.Errorf("expected 0 for attempt 0, got %v", result)
	}
}

func TestCalculateBackoff_ZeroBaseDelay(t *testing.T) {
	result := CalculateBackoff(0, 3)
	if result != 0 {
		t.Errorf("expected 0 for zero base delay, got %v", result)
	}
}

func TestCalculateBackoff_FirstAttempt(t *testing.T) {
	baseDelay := 100 * time.Millisecond
	result := CalculateBackoff(baseDelay, 1)

	// First attempt: 2^1 * 100ms = 200ms, with ±25% jitter = 150ms to 250ms
	minExpected := 150 * time.Millisecond
	maxExpected := 250 * time.Millisecond

	if result < minExpected || result > maxExpected {
		t.Errorf("expected backoff between %v and %v, got %v", minExpected, maxExpected, result)
	}
}

func TestCalculateBackoff_ExponentialGrowth(t *testing.T) {
	baseDelay := 100 * time.Millisecond

	for attempt := 1; attempt <= 5; attempt++ {
		// Expected base: 2^attempt * 100ms
		expectedBase := baseDelay * time.Duration(1<<uint(attempt))
		minExpected := expectedBase * 3 / 4 // -25%
		maxExpected := expectedBase * 5 / 4 // +25%

		result := CalculateBackoff(baseDelay, attempt)

		if result < minExpected || result > maxExpected {
			t.Errorf("attempt %d: expected backoff between %v and %v, got %v",
				attempt, minExpected, maxExpected, result)
		}
	}
}

func TestCalculateBackoff_CapsAt30Seconds(t *testing.T) {
	baseDelay := time.Second

	// Attempt 10 would give 2^10 * 1s = 1024s without cap
	result := CalculateBackoff(baseDelay, 10)

	// Should be capped at 30s with ±25% jitter = 22.5s to 37.5s
	maxAllowed := 37500 * time.Millisecond

	if result > maxAllowed {
		t.Errorf("expected backoff <= %v (30s + 25%% jitter), got %v", maxAllowed, result)
	}
}

func TestCalculateBackoff_AttemptCappedAt30(t *testing.T) {
	baseDelay := time.Millisecond

	// Very high attempt values should not overflow or panic
	result := CalculateBackoff(baseDelay, 100)

	maxAllowed := 37500 * time.Millisecond

	if result > maxAllowed {
		t.Errorf("expected backoff <= %v for high attempt, got %v", maxAllowed, result)
	}
	if result < 0 {
		t.Error("backoff should never be negative")
	}
}

func TestCalculateBackoff_JitterDistribution(t *testing.T) {
	baseDelay := time.Second
	attempt := 2 // 2^2 * 1s = 4s base

	var results []time.Duration
	for i := 0; i < 100; i++ {
		results = append(results, CalculateBackoff(baseDelay, attempt))
	}

	// Check that we get some variation (not all the same value)
	allSame := true
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			allSame = false
			break
		}
	}

	if allSame {
		t.Error("jitter should produce varying results, but all 100 samples were identical")
	}

	// Check all results are within expected bounds (4s ± 25% = 3s to 5s)
	for i, r := range results {
		if r < 3*time.Second || r > 5*time.Second {
			t.Errorf("sample %d: expected between 3s and 5s, got %v", i, r)
		}
	}
}

func TestCalculateBackoff_NegativeAttemptReturnsZero(t *testing.T) {
	result := CalculateBackoff(time.Second, -1)

	if result != 0 {
		t.Errorf("expected 0 for negative attempt, got %v", result)
	}

	result = CalculateBackoff(time.Second, -100)
	if result != 0 {
		t.Errorf("expected 0 for very negative attempt, got %v", result)
	}
}
