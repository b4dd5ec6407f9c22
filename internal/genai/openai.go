package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/gradelens/gradelens-go/internal/logger"
)

// openaiNarrator phrases grade summaries through an OpenAI-compatible API.
// Groq is the only such provider wired up today, but the implementation is
// provider-agnostic given a base URL.
type openaiNarrator struct {
	client   openai.Client
	model    string
	provider Provider
	log      *logger.Logger
}

// newGroqNarrator creates a Groq-backed narrator. Returns nil when apiKey is
// empty (provider disabled).
func newGroqNarrator(apiKey, model string, log *logger.Logger) (*openaiNarrator, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // provider disabled without an API key
	}
	if model == "" {
		model = DefaultGroqModel
	}

	client := openai.NewClient(
		option.WithBaseURL(groqBaseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiNarrator{
		client:   client,
		model:    model,
		provider: ProviderGroq,
		log:      log.WithModule("genai").WithField("provider", ProviderGroq),
	}, nil
}

func (n *openaiNarrator) Narrate(ctx context.Context, prompt string) (string, error) {
	if n == nil {
		return "", fmt.Errorf("narrator not configured")
	}

	params := openai.ChatCompletionNewParams{
		Model: n.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(narrativeTemperature),
		MaxTokens:   openai.Int(narrativeMaxTokens),
	}

	start := time.Now()
	resp, err := n.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		n.log.WithError(err).WithFields(map[string]any{
			"model":       n.model,
			"duration_ms": duration.Milliseconds(),
		}).Warn("narrative generation failed")
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty %s response", n.provider)
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", fmt.Errorf("empty %s response", n.provider)
	}

	if resp.Usage.TotalTokens > 0 {
		n.log.WithFields(map[string]any{
			"model":         n.model,
			"input_tokens":  resp.Usage.PromptTokens,
			"output_tokens": resp.Usage.CompletionTokens,
			"duration_ms":   duration.Milliseconds(),
		}).Debug("narrative generated")
	}

	return result, nil
}

func (n *openaiNarrator) IsEnabled() bool {
	return n != nil
}

func (n *openaiNarrator) Provider() Provider {
	return n.provider
}

// Close is a no-op; the openai client holds no resources needing cleanup.
func (n *openaiNarrator) Close() error {
	return nil
}
