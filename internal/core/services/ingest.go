package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
	"github.com/custodia-labs/ragstore/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultMaxDocumentBytes caps the content of a single ingested document.
const DefaultMaxDocumentBytes = 50 * 1024 * 1024

// DocumentIndexer is the part of the vector store ingestion writes to.
type DocumentIndexer interface {
	Index(ctx context.Context, docs []domain.Document) (*domain.IngestResult, error)
	Sources() []string
	DocumentChunks(documentID string) ([]domain.ChunkInfo, error)
}

// IngestService loads files into the vector store and records what it indexed.
// Runs are serialised, so a source is never indexed twice and concurrent
// uploads never overwrite each other's files.
type IngestService struct {
	mu sync.Mutex

	loader    driven.DocumentLoader
	store     DocumentIndexer
	ledger    driven.Ledger
	uploadDir string
	maxBytes  int64
	now       func() time.Time
}

// NewIngestService creates an ingest service.
// The ledger may be nil, in which case history is empty.
// Uploaded files are kept in uploadDir so their sources stay stable.
func NewIngestService(
	loader driven.DocumentLoader,
	store DocumentIndexer,
	ledger driven.Ledger,
	uploadDir string,
	maxBytes int64,
) *IngestService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}
	return &IngestService{
		loader:    loader,
		store:     store,
		ledger:    ledger,
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
		now:       time.Now,
	}
}

// IngestPath ingests a file or every supported file under a directory.
// Sources that are already indexed are skipped.
func (s *IngestService) IngestPath(ctx context.Context, path string) (*domain.IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ingest(ctx, path, []string{path})
}

// IngestFiles stores uploaded files and ingests them as one run.
func (s *IngestService) IngestFiles(ctx context.Context, files []domain.UploadedFile) (*domain.IngestResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files: %w", domain.ErrEmptyInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.uploadDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "ragstore-upload-")
		if err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	var rejected []domain.IngestFailure
	paths := make([]string, 0, len(files))
	names := make(map[string]struct{}, len(files))
	for _, f := range files {
		name := filepath.Base(f.Name)
		_, repeated := names[name]
		switch {
		case name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, "."):
			rejected = append(rejected, domain.IngestFailure{Source: f.Name, Error: "invalid file name"})
			continue
		case repeated:
			rejected = append(rejected, domain.IngestFailure{Source: f.Name, Error: "duplicate file name in upload"})
			continue
		case len(f.Content) == 0:
			rejected = append(rejected, domain.IngestFailure{Source: f.Name, Error: "empty file"})
			continue
		case int64(len(f.Content)) > s.maxBytes:
			rejected = append(rejected, domain.IngestFailure{
				Source: f.Name,
				Error:  fmt.Sprintf("file exceeds %d bytes", s.maxBytes),
			})
			continue
		}
		names[name] = struct{}{}
		dest := filepath.Join(dir, name)
		if err := os.WriteFile(dest, f.Content, 0600); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		paths = append(paths, dest)
	}

	result := &domain.IngestResult{}
	if len(paths) > 0 {
		var err error
		result, err = s.ingest(ctx, dir, paths)
		if result == nil {
			return nil, err
		}
		if err != nil {
			result.FailedSources = append(result.FailedSources, rejected...)
			return result, err
		}
	}
	result.FailedSources = append(result.FailedSources, rejected...)
	return result, nil
}

// History returns recent ingest runs and every recorded source.
// A limit of zero or less returns all runs.
func (s *IngestService) History(ctx context.Context, limit int) (*domain.IngestHistory, error) {
	history := &domain.IngestHistory{
		Runs:    []domain.IngestRun{},
		Sources: []domain.SourceRecord{},
	}
	if s.ledger == nil {
		return history, nil
	}

	runs, err := s.ledger.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	sources, err := s.ledger.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	if runs != nil {
		history.Runs = runs
	}
	if sources != nil {
		history.Sources = sources
	}
	return history, nil
}

func (s *IngestService) ingest(ctx context.Context, label string, paths []string) (*domain.IngestResult, error) {
	logger.Section("Ingest")
	run := &domain.IngestRun{ID: uuid.New().String(), Path: label, StartedAt: s.now()}
	if s.ledger != nil {
		if err := s.ledger.StartRun(ctx, run); err != nil {
			logger.Warn("Failed to record ingest run: %v", err)
		}
	}

	result := &domain.IngestResult{}
	var docs []domain.Document
	for _, p := range paths {
		loaded, err := s.loader.Load(ctx, p)
		if err != nil {
			s.finish(ctx, run, result)
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		docs = append(docs, loaded.Documents...)
		result.FailedSources = append(result.FailedSources, loaded.Failures...)
	}

	// existing also collects sources accepted earlier in this run.
	existing := make(map[string]struct{})
	for _, src := range s.store.Sources() {
		existing[src] = struct{}{}
	}

	pending := make([]domain.Document, 0, len(docs))
	hashes := make(map[string]string, len(docs))
	for _, doc := range docs {
		hash := contentHash(doc.Content)
		if _, ok := existing[doc.Source]; ok {
			s.warnIfChanged(ctx, doc.Source, hash)
			result.SkippedSources = append(result.SkippedSources, doc.Source)
			continue
		}
		if reason := s.reject(doc); reason != "" {
			result.FailedSources = append(result.FailedSources, domain.IngestFailure{Source: doc.Source, Error: reason})
			continue
		}
		existing[doc.Source] = struct{}{}
		hashes[doc.Source] = hash
		pending = append(pending, doc)
	}
	logger.Debug("%d to index, %d skipped, %d failed",
		len(pending), len(result.SkippedSources), len(result.FailedSources))

	var indexErr error
	if len(pending) > 0 {
		indexed, err := s.store.Index(ctx, pending)
		if indexed == nil {
			s.finish(ctx, run, result)
			return nil, fmt.Errorf("index: %w", err)
		}
		indexErr = err
		result.ChunksAdded = indexed.ChunksAdded
		result.DocumentsIndexed = indexed.DocumentsIndexed
		s.recordSources(ctx, pending, hashes)
	}

	s.finish(ctx, run, result)
	logger.Info("Ingested %d documents (%d chunks), skipped %d, failed %d",
		result.DocumentsIndexed, result.ChunksAdded, len(result.SkippedSources), len(result.FailedSources))
	if indexErr != nil {
		return result, fmt.Errorf("index: %w", indexErr)
	}
	return result, nil
}

// reject returns why doc cannot be indexed, or "" when it can.
func (s *IngestService) reject(doc domain.Document) string {
	switch {
	case strings.TrimSpace(doc.Content) == "":
		return "empty document"
	case int64(len(doc.Content)) > s.maxBytes:
		return fmt.Sprintf("document exceeds %d bytes", s.maxBytes)
	default:
		return ""
	}
}

// warnIfChanged flags an already indexed source whose content differs from
// what was recorded. The source stays skipped because identity is path based.
func (s *IngestService) warnIfChanged(ctx context.Context, source, hash string) {
	if s.ledger == nil {
		return
	}
	rec, err := s.ledger.GetSource(ctx, source)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Failed to read ledger for %s: %v", source, err)
		}
		return
	}
	if rec.ContentHash != hash {
		logger.Warn("%s changed since it was indexed; remove the store to re-index it", source)
	}
}

func (s *IngestService) recordSources(ctx context.Context, docs []domain.Document, hashes map[string]string) {
	if s.ledger == nil {
		return
	}
	for _, doc := range docs {
		chunks, err := s.store.DocumentChunks(doc.ID())
		if err != nil {
			continue
		}
		rec := &domain.SourceRecord{
			Source:      doc.Source,
			DocumentID:  doc.ID(),
			ContentHash: hashes[doc.Source],
			Chunks:      len(chunks),
			IndexedAt:   s.now(),
		}
		if err := s.ledger.RecordSource(ctx, rec); err != nil {
			logger.Warn("Failed to record source %s: %v", doc.Source, err)
		}
	}
}

func (s *IngestService) finish(ctx context.Context, run *domain.IngestRun, result *domain.IngestResult) {
	if s.ledger == nil {
		return
	}
	run.FinishedAt = s.now()
	run.ChunksAdded = result.ChunksAdded
	run.Documents = result.DocumentsIndexed
	run.Skipped = len(result.SkippedSources)
	run.Failed = len(result.FailedSources)
	if err := s.ledger.FinishRun(ctx, run); err != nil {
		logger.Warn("Failed to record ingest run: %v", err)
	}
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
