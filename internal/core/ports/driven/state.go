package driven

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// PersistedState is the pair of index and metadata written together.
type PersistedState struct {
	// Dimension is the vector width.
	Dimension int

	// Vectors are the index rows in position order.
	Vectors [][]float32

	// Records are the metadata records in position order.
	Records []domain.MetadataRecord
}

// StateStore persists the vector store between runs.
// Implementations store the index and metadata as two separate files or objects.
type StateStore interface {
	// Load reads both parts. It returns (nil, nil) when either part is missing.
	Load(ctx context.Context) (*PersistedState, error)

	// Save writes both parts.
	Save(ctx context.Context, state *PersistedState) error

	// Location describes where the state lives (directory or bucket path).
	Location() string
}
