package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// setupTestLedger creates a temporary SQLite ledger for testing.
func setupTestLedger(t *testing.T) *Ledger {
	t.Helper()

	ledger, err := NewLedger(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, ledger)

	t.Cleanup(func() {
		assert.NoError(t, ledger.Close())
	})
	return ledger
}

func TestNewLedger_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	ledger, err := NewLedger(dir)
	require.NoError(t, err)
	defer ledger.Close()

	assert.FileExists(t, ledger.Path())
	assert.Contains(t, ledger.Path(), DatabaseFile)
}

func TestNewLedger_ReopenKeepsMigrationVersion(t *testing.T) {
	dir := t.TempDir()

	first, err := NewLedger(dir)
	require.NoError(t, err)
	require.NoError(t, first.RecordSource(context.Background(), &domain.SourceRecord{
		Source: "a.txt", DocumentID: "doc_a", ContentHash: "h", Chunks: 1, IndexedAt: time.Now(),
	}))
	require.NoError(t, first.Close())

	second, err := NewLedger(dir)
	require.NoError(t, err)
	defer second.Close()

	var version int
	require.NoError(t, second.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	got, err := second.GetSource(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "doc_a", got.DocumentID)
}

func TestLedger_Runs(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	start := time.Unix(1700000000, 0)
	older := &domain.IngestRun{ID: "run-1", Path: "/data", StartedAt: start}
	newer := &domain.IngestRun{ID: "run-2", Path: "/more", StartedAt: start.Add(time.Hour)}
	require.NoError(t, ledger.StartRun(ctx, older))
	require.NoError(t, ledger.StartRun(ctx, newer))

	older.FinishedAt = start.Add(time.Minute)
	older.ChunksAdded = 12
	older.Documents = 3
	older.Skipped = 1
	older.Failed = 2
	require.NoError(t, ledger.FinishRun(ctx, older))

	runs, err := ledger.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].ID)
	assert.True(t, runs[0].FinishedAt.IsZero())

	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, "/data", runs[1].Path)
	assert.Equal(t, 12, runs[1].ChunksAdded)
	assert.Equal(t, 3, runs[1].Documents)
	assert.Equal(t, 1, runs[1].Skipped)
	assert.Equal(t, 2, runs[1].Failed)
	assert.True(t, runs[1].StartedAt.Equal(start))
	assert.True(t, runs[1].FinishedAt.Equal(start.Add(time.Minute)))
}

func TestLedger_ListRunsLimit(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, ledger.StartRun(ctx, &domain.IngestRun{
			ID: id, Path: "/p", StartedAt: time.Unix(int64(i), 0),
		}))
	}

	runs, err := ledger.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestLedger_FinishUnknownRun(t *testing.T) {
	ledger := setupTestLedger(t)

	err := ledger.FinishRun(context.Background(), &domain.IngestRun{ID: "missing", FinishedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedger_Sources(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	indexed := time.Unix(1700000000, 500)
	require.NoError(t, ledger.RecordSource(ctx, &domain.SourceRecord{
		Source: "/data/b.txt", DocumentID: "doc_b", ContentHash: "h1", Chunks: 2, IndexedAt: indexed,
	}))
	require.NoError(t, ledger.RecordSource(ctx, &domain.SourceRecord{
		Source: "/data/a.txt", DocumentID: "doc_a", ContentHash: "h2", Chunks: 5, IndexedAt: indexed,
	}))

	got, err := ledger.GetSource(ctx, "/data/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.ContentHash)
	assert.Equal(t, 2, got.Chunks)
	assert.True(t, got.IndexedAt.Equal(indexed))

	list, err := ledger.ListSources(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "/data/a.txt", list[0].Source)
	assert.Equal(t, "/data/b.txt", list[1].Source)
}

func TestLedger_RecordSourceUpserts(t *testing.T) {
	ledger := setupTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RecordSource(ctx, &domain.SourceRecord{
		Source: "x", DocumentID: "doc_x", ContentHash: "old", Chunks: 1, IndexedAt: time.Now(),
	}))
	require.NoError(t, ledger.RecordSource(ctx, &domain.SourceRecord{
		Source: "x", DocumentID: "doc_x", ContentHash: "new", Chunks: 4, IndexedAt: time.Now(),
	}))

	got, err := ledger.GetSource(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "new", got.ContentHash)
	assert.Equal(t, 4, got.Chunks)

	list, err := ledger.ListSources(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLedger_GetSourceNotFound(t *testing.T) {
	ledger := setupTestLedger(t)

	_, err := ledger.GetSource(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
