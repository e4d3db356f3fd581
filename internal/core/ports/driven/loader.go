package driven

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// DocumentLoader reads documents from a file or directory.
type DocumentLoader interface {
	// Load reads every supported file under path.
	// Per-file failures are collected in the result and are not fatal.
	Load(ctx context.Context, path string) (*LoadResult, error)

	// Watch calls fn with the paths of files created or written under dir
	// until ctx is cancelled.
	Watch(ctx context.Context, dir string, fn func(paths []string)) error
}

// LoadResult contains the output of a load.
type LoadResult struct {
	// Documents are the successfully normalised documents.
	Documents []domain.Document

	// Failures lists files that could not be read or normalised.
	Failures []domain.IngestFailure
}
