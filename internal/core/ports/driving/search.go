package driving

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// SearchService provides similarity search to external actors.
type SearchService interface {
	// Search embeds query and returns the k nearest chunks with their metadata.
	// An empty store or a blank query yields an empty result.
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// Retriever returns the chunks most relevant to a query.
// It is the single retrieval contract used by answer composition and every driving adapter.
type Retriever interface {
	// Retrieve returns up to k chunks ordered nearest first.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)
}
