package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.Ledger = (*Ledger)(nil)

// DatabaseFile is the ledger file name inside the data directory.
const DatabaseFile = "ledger.db"

// Ledger is the SQLite implementation of driven.Ledger.
type Ledger struct {
	db   *sql.DB
	path string
}

// NewLedger opens or creates the ledger database in dataDir.
func NewLedger(dataDir string) (*Ledger, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	l := &Ledger{
		db:   db,
		path: dbPath,
	}

	if err := l.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

// migrate runs all pending migrations, recording each applied version.
func (l *Ledger) migrate(fsys fs.FS) error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := l.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_ledger.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := l.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Runs ====================

// StartRun records the start of an ingest run.
func (l *Ledger) StartRun(ctx context.Context, run *domain.IngestRun) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (id, path, started_at)
		VALUES (?, ?, ?)
	`, run.ID, run.Path, run.StartedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("inserting ingest run: %w", err)
	}
	return nil
}

// FinishRun updates a run's counters and finish time.
func (l *Ledger) FinishRun(ctx context.Context, run *domain.IngestRun) error {
	result, err := l.db.ExecContext(ctx, `
		UPDATE ingest_runs
		SET finished_at = ?, chunks_added = ?, documents = ?, skipped = ?, failed = ?
		WHERE id = ?
	`, run.FinishedAt.UnixNano(), run.ChunksAdded, run.Documents, run.Skipped, run.Failed, run.ID)
	if err != nil {
		return fmt.Errorf("updating ingest run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating ingest run: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListRuns returns up to limit runs, most recent first. A limit <= 0 returns all runs.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]domain.IngestRun, error) {
	query := `
		SELECT id, path, started_at, finished_at, chunks_added, documents, skipped, failed
		FROM ingest_runs
		ORDER BY started_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IngestRun
	for rows.Next() {
		var (
			run      domain.IngestRun
			started  int64
			finished sql.NullInt64
		)
		if err := rows.Scan(&run.ID, &run.Path, &started, &finished,
			&run.ChunksAdded, &run.Documents, &run.Skipped, &run.Failed); err != nil {
			return nil, fmt.Errorf("scanning ingest run: %w", err)
		}
		run.StartedAt = time.Unix(0, started)
		if finished.Valid {
			run.FinishedAt = time.Unix(0, finished.Int64)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ==================== Sources ====================

// RecordSource upserts an indexed source.
func (l *Ledger) RecordSource(ctx context.Context, src *domain.SourceRecord) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO sources (source, document_id, content_hash, chunks, indexed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			document_id = excluded.document_id,
			content_hash = excluded.content_hash,
			chunks = excluded.chunks,
			indexed_at = excluded.indexed_at
	`, src.Source, src.DocumentID, src.ContentHash, src.Chunks, src.IndexedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("upserting source: %w", err)
	}
	return nil
}

// GetSource returns a source record or domain.ErrNotFound.
func (l *Ledger) GetSource(ctx context.Context, source string) (*domain.SourceRecord, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT source, document_id, content_hash, chunks, indexed_at
		FROM sources WHERE source = ?
	`, source)

	rec, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying source: %w", err)
	}
	return rec, nil
}

// ListSources returns all recorded sources ordered by path.
func (l *Ledger) ListSources(ctx context.Context) ([]domain.SourceRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT source, document_id, content_hash, chunks, indexed_at
		FROM sources ORDER BY source
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.SourceRecord
	for rows.Next() {
		rec, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, *rec)
	}
	return sources, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSource(s scanner) (*domain.SourceRecord, error) {
	var (
		rec     domain.SourceRecord
		indexed int64
	)
	if err := s.Scan(&rec.Source, &rec.DocumentID, &rec.ContentHash, &rec.Chunks, &indexed); err != nil {
		return nil, err
	}
	rec.IndexedAt = time.Unix(0, indexed)
	return &rec, nil
}
