package driven

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// Ledger records ingestion history.
type Ledger interface {
	// StartRun records the start of an ingest run.
	StartRun(ctx context.Context, run *domain.IngestRun) error

	// FinishRun updates a run's counters and finish time.
	FinishRun(ctx context.Context, run *domain.IngestRun) error

	// RecordSource upserts an indexed source.
	RecordSource(ctx context.Context, src *domain.SourceRecord) error

	// GetSource returns a source record or domain.ErrNotFound.
	GetSource(ctx context.Context, source string) (*domain.SourceRecord, error)

	// ListSources returns all recorded sources ordered by path.
	ListSources(ctx context.Context) ([]domain.SourceRecord, error)

	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]domain.IngestRun, error)

	// Close releases resources.
	Close() error
}
