// Package genai generates the prose summaries for chat replies using LLM
// APIs (Gemini native, Groq via the OpenAI-compatible API). Callers get a
// single Narrator interface; retry, provider fallback and response caching
// live behind it.
package genai

import (
	"context"
	"time"

	"github.com/gradelens/gradelens-go/internal/metrics"
)

// Provider identifies an LLM provider.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderGroq   Provider = "groq"
)

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// groqBaseURL is the OpenAI-compatible endpoint for Groq.
const groqBaseURL = "https://api.groq.com/openai/v1/"

// Narrator phrases one prepared prompt into prose.
type Narrator interface {
	// Narrate returns the generated text for the prompt.
	Narrate(ctx context.Context, prompt string) (string, error)
	// IsEnabled reports whether the narrator is properly initialized.
	IsEnabled() bool
	// Provider returns the provider type for logging and metrics.
	Provider() Provider
	// Close releases any held resources.
	Close() error
}

// RetryConfig defines retry behavior for one provider before falling back.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// InitialDelay is the base delay before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration
}

// Config holds everything needed to build the narrator chain.
type Config struct {
	GeminiAPIKey string
	GeminiModel  string

	GroqAPIKey string
	GroqModel  string

	// CacheTTL is how long an identical prompt may reuse a previous
	// narrative. Zero disables caching.
	CacheTTL time.Duration

	Retry RetryConfig

	// Metrics records per-provider attempt outcomes. Nil disables recording.
	Metrics *metrics.Metrics
}

// Default models. Narratives are short and latency-sensitive, so both
// defaults favor the fast tiers.
const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultGroqModel   = "llama-3.1-8b-instant"
)

// Generation parameters shared by both providers. Low temperature keeps
// summaries consistent across near-identical data.
const (
	narrativeTemperature = 0.3
	narrativeMaxTokens   = 300
)

// DefaultRetryConfig returns the retry defaults: one retry with a short
// jittered backoff, anything longer is better spent on the fallback.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     3 * time.Second,
	}
}
