package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/gradelens/gradelens-go/internal/logger"
)

// geminiNarrator phrases grade summaries through the Gemini API.
type geminiNarrator struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// newGeminiNarrator creates a Gemini-backed narrator. Returns nil when
// apiKey is empty (provider disabled).
func newGeminiNarrator(ctx context.Context, apiKey, model string, log *logger.Logger) (*geminiNarrator, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // provider disabled without an API key
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiNarrator{
		client: client,
		model:  model,
		log:    log.WithModule("genai").WithField("provider", ProviderGemini),
	}, nil
}

func (n *geminiNarrator) Narrate(ctx context.Context, prompt string) (string, error) {
	if n == nil || n.client == nil {
		return "", fmt.Errorf("gemini narrator not configured")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](narrativeTemperature),
		MaxOutputTokens: narrativeMaxTokens,
	}

	start := time.Now()
	resp, err := n.client.Models.GenerateContent(ctx, n.model, genai.Text(prompt), config)
	duration := time.Since(start)

	if err != nil {
		n.log.WithError(err).WithFields(map[string]any{
			"model":       n.model,
			"duration_ms": duration.Milliseconds(),
		}).Warn("narrative generation failed")
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty gemini response")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(text.String())
	if result == "" {
		return "", fmt.Errorf("empty gemini response")
	}

	if resp.UsageMetadata != nil {
		n.log.WithFields(map[string]any{
			"model":         n.model,
			"input_tokens":  resp.UsageMetadata.PromptTokenCount,
			"output_tokens": resp.UsageMetadata.CandidatesTokenCount,
			"duration_ms":   duration.Milliseconds(),
		}).Debug("narrative generated")
	}

	return result, nil
}

func (n *geminiNarrator) IsEnabled() bool {
	return n != nil && n.client != nil
}

func (n *geminiNarrator) Provider() Provider {
	return ProviderGemini
}

// Close is a no-op; the genai client holds no resources needing cleanup.
func (n *geminiNarrator) Close() error {
	return nil
}
