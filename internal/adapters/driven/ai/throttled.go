package ai

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/logger"
)

// Ensure Throttled implements the interface.
var _ driven.EmbeddingService = (*Throttled)(nil)

// Throttled wraps an embedding service with a request rate limit.
// EmbedBatch splits its input into batches and embeds up to Concurrency
// batches at once, each batch waiting on the limiter before its request.
type Throttled struct {
	inner       driven.EmbeddingService
	limiter     *rate.Limiter
	batchSize   int
	concurrency int
}

// NewThrottled wraps inner using settings. A zero request rate disables the limit.
func NewThrottled(inner driven.EmbeddingService, settings domain.RateLimitSettings) *Throttled {
	batchSize := settings.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	concurrency := settings.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	limit := rate.Inf
	if settings.RequestsPerSecond > 0 {
		limit = rate.Limit(settings.RequestsPerSecond)
	}

	return &Throttled{
		inner:       inner,
		limiter:     rate.NewLimiter(limit, concurrency),
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

// Embed waits for the limiter and embeds one text.
func (t *Throttled) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.Embed(ctx, text)
}

// EmbedBatch embeds texts in batches and returns vectors in input order.
// The first failing batch cancels the rest.
func (t *Throttled) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	defer logger.Timed(fmt.Sprintf("embed %d texts", len(texts)))()

	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)

	for start := 0; start < len(texts); start += t.batchSize {
		end := min(start+t.batchSize, len(texts))
		g.Go(func() error {
			if err := t.limiter.Wait(gctx); err != nil {
				return err
			}
			vecs, err := t.inner.EmbedBatch(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("batch %d-%d: %w", start, end, err)
			}
			if len(vecs) != end-start {
				return &domain.CountMismatchError{Vectors: len(vecs), Records: end - start}
			}
			copy(out[start:end], vecs)
			logger.Debug("Embedded texts %d-%d", start, end)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Dimensions returns the wrapped service's vector size.
func (t *Throttled) Dimensions() int {
	return t.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (t *Throttled) ModelName() string {
	return t.inner.ModelName()
}

// Ping checks the wrapped service without consuming a rate token.
func (t *Throttled) Ping(ctx context.Context) error {
	return t.inner.Ping(ctx)
}

// Close is a no-op. The wrapped service is owned by the Cache.
func (t *Throttled) Close() error {
	return nil
}
