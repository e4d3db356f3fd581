package hash

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return sum
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService("", 0)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService("", 64)

	a, err := svc.Embed(context.Background(), "The cat sat on the mat")
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), "the CAT sat on the mat!")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
}

func TestEmbed_UnitLength(t *testing.T) {
	svc := NewEmbeddingService("", 32)
	vec, err := svc.Embed(context.Background(), "alpha beta gamma")
	require.NoError(t, err)

	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbed_SharedWordsAreCloser(t *testing.T) {
	svc := NewEmbeddingService("", 256)
	ctx := context.Background()

	query, err := svc.Embed(ctx, "vector index search")
	require.NoError(t, err)
	related, err := svc.Embed(ctx, "exact vector index search over embeddings")
	require.NoError(t, err)
	unrelated, err := svc.Embed(ctx, "baking sourdough bread at home")
	require.NoError(t, err)

	assert.Less(t, squaredL2(query, related), squaredL2(query, unrelated))
}

func TestEmbed_EmptyInput(t *testing.T) {
	svc := NewEmbeddingService("", 16)
	for _, text := range []string{"", "   ", "!!! ---"} {
		_, err := svc.Embed(context.Background(), text)
		assert.ErrorIs(t, err, domain.ErrEmptyInput, "text %q", text)
	}
}

func TestEmbedBatch(t *testing.T) {
	svc := NewEmbeddingService("", 256)
	vecs, err := svc.EmbedBatch(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.NotEqual(t, vecs[0], vecs[1])

	_, err = svc.EmbedBatch(context.Background(), []string{"one", ""})
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestEmbed_CancelledContext(t *testing.T) {
	svc := NewEmbeddingService("", 16)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Embed(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}
