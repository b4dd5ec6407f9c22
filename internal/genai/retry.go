package genai

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// Backoff returns the delay before retry number attempt (1-based), using
// full-jitter exponential backoff: random(0, min(max, initial*2^(attempt-1))).
// Full jitter spreads concurrent retries better than equal jitter and keeps
// worst-case completion time low.
func Backoff(attempt int, initial, max time.Duration) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
	if delay > max {
		delay = max
	}
	if delay <= 0 {
		return 0
	}

	jitter, err := rand.Int(rand.Reader, big.NewInt(int64(delay)))
	if err != nil {
		return delay / 2
	}
	return time.Duration(jitter.Int64())
}

// sleep waits for d, returning early with ctx.Err() on cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// hasBudget reports whether the context deadline leaves at least required
// time. No deadline means unlimited budget.
func hasBudget(ctx context.Context, required time.Duration) bool {
	deadline, ok := ctx.Deadline()
	if !ok {
		return true
	}
	return time.Until(deadline) >= required
}
