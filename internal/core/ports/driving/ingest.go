package driving

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// IngestService adds documents to the store.
type IngestService interface {
	// IngestPath loads and indexes a file or directory.
	IngestPath(ctx context.Context, path string) (*domain.IngestResult, error)

	// IngestFiles indexes uploaded files.
	IngestFiles(ctx context.Context, files []domain.UploadedFile) (*domain.IngestResult, error)

	// History returns recorded ingest runs and sources.
	History(ctx context.Context, limit int) (*domain.IngestHistory, error)
}
