package driving

import "github.com/custodia-labs/ragstore/internal/core/domain"

// DocumentService exposes the indexed documents and chunks.
type DocumentService interface {
	// ListDocuments returns a summary of every indexed document, ordered by ID.
	ListDocuments() []domain.DocumentSummary

	// DocumentChunks returns a document's chunks ordered by chunk index.
	// Returns domain.ErrNotFound for an unknown document.
	DocumentChunks(documentID string) ([]domain.ChunkInfo, error)

	// Chunk returns a single chunk by ID.
	// Returns domain.ErrNotFound for an unknown chunk.
	Chunk(chunkID string) (*domain.ChunkDetails, error)

	// Status describes the store.
	Status() domain.StoreStatus
}
