package genai

import (
	"context"
	"time"
)

// WithTimeout bounds every Narrate call to d, covering the full retry and
// fallback chain of the wrapped narrator. A nil narrator or non-positive
// timeout returns the input unchanged.
func WithTimeout(n Narrator, d time.Duration) Narrator {
	if n == nil || d <= 0 {
		return n
	}
	return &timeoutNarrator{inner: n, timeout: d}
}

type timeoutNarrator struct {
	inner   Narrator
	timeout time.Duration
}

func (t *timeoutNarrator) Narrate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Narrate(ctx, prompt)
}

func (t *timeoutNarrator) IsEnabled() bool { return t.inner.IsEnabled() }

func (t *timeoutNarrator) Provider() Provider { return t.inner.Provider() }

func (t *timeoutNarrator) Close() error { return t.inner.Close() }
