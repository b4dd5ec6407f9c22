package genai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingNarrator never returns until the context is done.
type blockingNarrator struct{}

func (b *blockingNarrator) Narrate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (b *blockingNarrator) IsEnabled() bool    { return true }
func (b *blockingNarrator) Provider() Provider { return ProviderGemini }
func (b *blockingNarrator) Close() error       { return nil }

func TestWithTimeoutCutsOffSlowNarrator(t *testing.T) {
	n := WithTimeout(&blockingNarrator{}, 20*time.Millisecond)

	start := time.Now()
	_, err := n.Narrate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWithTimeoutPassesThrough(t *testing.T) {
	inner := &stubNarrator{provider: ProviderGroq, text: "summary"}
	n := WithTimeout(inner, time.Minute)

	text, err := n.Narrate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "summary", text)
	assert.Equal(t, ProviderGroq, n.Provider())
	assert.True(t, n.IsEnabled())
	require.NoError(t, n.Close())
}

func TestWithTimeoutNilAndDisabled(t *testing.T) {
	assert.Nil(t, WithTimeout(nil, time.Second))

	inner := &stubNarrator{provider: ProviderGemini, text: "ok"}
	assert.Equal(t, Narrator(inner), WithTimeout(inner, 0))
}
