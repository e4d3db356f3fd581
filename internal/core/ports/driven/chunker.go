package driven

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// Chunker splits documents into overlapping chunks with derived identities.
type Chunker interface {
	// Chunk returns the chunks of all documents, in document order.
	// Blank documents produce no chunks.
	Chunk(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error)
}
