package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/gradelens/gradelens-go/internal/errors"
	"github.com/gradelens/gradelens-go/internal/logger"
	"github.com/gradelens/gradelens-go/internal/metrics"
)

// FallbackNarrator chains providers with per-provider retry:
//  1. retry the current provider with jittered backoff on transient errors,
//  2. move to the next provider on persistent or quota errors,
//  3. surface the last error once the chain is exhausted (the response
//     assembler degrades to the deterministic dump).
//
// Successful narratives are cached per prompt for the configured TTL.
type FallbackNarrator struct {
	chain   []Narrator
	retry   RetryConfig
	cache   *narrativeCache
	metrics *metrics.Metrics
	log     *logger.Logger
}

var _ Narrator = (*FallbackNarrator)(nil)

// NewFallbackNarrator builds a chain from the non-nil narrators in order.
// A nil metrics disables recording.
func NewFallbackNarrator(retry RetryConfig, cacheTTL time.Duration, log *logger.Logger, m *metrics.Metrics, narrators ...Narrator) *FallbackNarrator {
	chain := make([]Narrator, 0, len(narrators))
	for _, n := range narrators {
		if n != nil && n.IsEnabled() {
			chain = append(chain, n)
		}
	}
	return &FallbackNarrator{
		chain:   chain,
		retry:   retry,
		cache:   newNarrativeCache(cacheTTL),
		metrics: m,
		log:     log.WithModule("genai"),
	}
}

// Narrate runs the provider chain for one prompt.
func (f *FallbackNarrator) Narrate(ctx context.Context, prompt string) (string, error) {
	if f == nil || len(f.chain) == 0 {
		return "", errors.New("no narrator configured")
	}

	if text, ok := f.cache.get(prompt); ok {
		return text, nil
	}

	var lastErr error
	for i, narrator := range f.chain {
		text, err := f.narrateWithRetry(ctx, narrator, prompt)
		if err == nil {
			f.recordNarrative(narrator.Provider(), "success")
			f.cache.put(prompt, text)
			return text, nil
		}
		f.recordNarrative(narrator.Provider(), "error")
		lastErr = err

		if IsPermanent(err) {
			return "", err
		}
		if i < len(f.chain)-1 {
			f.log.WithError(err).WithFields(map[string]any{
				"from": narrator.Provider().String(),
				"to":   f.chain[i+1].Provider().String(),
			}).Info("falling back to next narrator provider")
		}
	}

	return "", fmt.Errorf("%w: all providers failed: %w", apperrors.ErrNarrativeUnavailable, lastErr)
}

func (f *FallbackNarrator) recordNarrative(p Provider, status string) {
	if f.metrics == nil {
		return
	}
	f.metrics.NarrativeRequestsTotal.WithLabelValues(p.String(), status).Inc()
}

func (f *FallbackNarrator) narrateWithRetry(ctx context.Context, narrator Narrator, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < f.retry.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		text, err := narrator.Narrate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ClassifyError(err) != ActionRetry {
			return "", err
		}
		if attempt == f.retry.MaxAttempts-1 {
			break
		}

		backoff := Backoff(attempt+1, f.retry.InitialDelay, f.retry.MaxDelay)
		if !hasBudget(ctx, backoff) {
			return "", fmt.Errorf("timeout during retry: %w", lastErr)
		}
		if err := sleep(ctx, backoff); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

// IsEnabled reports whether any provider in the chain is usable.
func (f *FallbackNarrator) IsEnabled() bool {
	return f != nil && len(f.chain) > 0
}

// Provider returns the primary provider, or empty when the chain is empty.
func (f *FallbackNarrator) Provider() Provider {
	if f == nil || len(f.chain) == 0 {
		return ""
	}
	return f.chain[0].Provider()
}

// Close closes every narrator in the chain, returning the first error.
func (f *FallbackNarrator) Close() error {
	if f == nil {
		return nil
	}
	var first error
	for _, n := range f.chain {
		if err := n.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CreateNarrator builds the narrator chain from configuration: Gemini
// primary, Groq fallback, in that order. Returns nil without error when no
// provider has an API key; the caller treats a nil narrator as "always use
// the deterministic path".
func CreateNarrator(ctx context.Context, cfg Config, log *logger.Logger) (Narrator, error) {
	var chain []Narrator

	gemini, err := newGeminiNarrator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		log.WithError(err).Warn("failed to create gemini narrator")
	} else if gemini != nil {
		chain = append(chain, gemini)
	}

	groq, err := newGroqNarrator(cfg.GroqAPIKey, cfg.GroqModel, log)
	if err != nil {
		log.WithError(err).Warn("failed to create groq narrator")
	} else if groq != nil {
		chain = append(chain, groq)
	}

	if len(chain) == 0 {
		log.Info("no narrative provider configured, deterministic summaries only")
		return nil, nil
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryConfig()
	}

	fb := NewFallbackNarrator(retry, cfg.CacheTTL, log, cfg.Metrics, chain...)
	log.WithFields(map[string]any{
		"primary":    fb.Provider().String(),
		"chain_size": len(chain),
	}).Info("narrator configured")
	return fb, nil
}
