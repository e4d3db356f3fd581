package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
	"github.com/custodia-labs/ragstore/internal/logger"
)

// Ensure VectorStore implements the interfaces.
var (
	_ driving.SearchService   = (*VectorStore)(nil)
	_ driving.Retriever       = (*VectorStore)(nil)
	_ driving.DocumentService = (*VectorStore)(nil)
)

// VectorStore binds a vector index and a metadata store by position.
// Position i in the index is always described by record i in the metadata.
//
// A single RWMutex guards both halves: writers append to the index and the
// metadata under one write lock, and readers search and join under one read lock.
type VectorStore struct {
	mu       sync.RWMutex
	index    driven.VectorIndex
	metadata driven.MetadataStore
	loaded   bool

	// saveMu orders snapshots so a slow save never overwrites a newer one.
	saveMu sync.Mutex
	state  driven.StateStore

	chunker  driven.Chunker
	embedder driven.EmbeddingService
}

// NewVectorStore creates a vector store.
// The state store may be nil, in which case Load and Save do nothing.
// The embedder may be nil, in which case indexing and search return
// domain.ErrEmbeddingUnavailable while document lookups keep working.
func NewVectorStore(
	index driven.VectorIndex,
	metadata driven.MetadataStore,
	state driven.StateStore,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
) *VectorStore {
	return &VectorStore{
		index:    index,
		metadata: metadata,
		state:    state,
		chunker:  chunker,
		embedder: embedder,
	}
}

// Load restores persisted state. It returns false without error when no state
// has been saved yet. On any failure the in-memory state is left untouched.
func (s *VectorStore) Load(ctx context.Context) (bool, error) {
	if s.state == nil {
		return false, nil
	}
	defer logger.Timed("load state")()

	st, err := s.state.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: load %s: %w", domain.ErrPersistence, s.state.Location(), err)
	}
	if st == nil {
		logger.Info("No saved state at %s", s.state.Location())
		return false, nil
	}
	if len(st.Vectors) != len(st.Records) {
		return false, fmt.Errorf("%w: %w", domain.ErrPersistence,
			&domain.CountMismatchError{Vectors: len(st.Vectors), Records: len(st.Records)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.index.Restore(st.Dimension, st.Vectors); err != nil {
		return false, fmt.Errorf("%w: restore index: %w", domain.ErrPersistence, err)
	}
	s.metadata.Restore(st.Records)
	s.loaded = true

	logger.Info("Loaded %d vectors (dim %d) from %s", len(st.Vectors), st.Dimension, s.state.Location())
	return true, nil
}

// Index chunks, embeds and appends documents, then saves.
// A document that yields no chunks is skipped. If saving fails the chunks stay
// indexed in memory and the result is returned together with the error.
func (s *VectorStore) Index(ctx context.Context, docs []domain.Document) (*domain.IngestResult, error) {
	logger.Section("Indexing")
	result := &domain.IngestResult{}

	chunks, err := s.chunker.Chunk(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	logger.Debug("Chunked %d documents into %d chunks", len(docs), len(chunks))
	if len(chunks) == 0 {
		return result, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	texts := make([]string, len(chunks))
	records := make([]domain.MetadataRecord, len(chunks))
	documents := make(map[string]struct{})
	for i, c := range chunks {
		texts[i] = c.Text
		records[i] = c.Record()
		documents[c.DocumentID] = struct{}{}
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embed chunks: %w", domain.ErrProvider, err)
	}

	if err := s.AddEmbeddings(ctx, vectors, records); err != nil {
		return nil, err
	}
	result.ChunksAdded = len(chunks)
	result.DocumentsIndexed = len(documents)
	logger.Info("Indexed %d chunks from %d documents", result.ChunksAdded, result.DocumentsIndexed)

	if err := s.Save(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// AddEmbeddings appends vectors and their records as one unit.
// The counts must match, chunk IDs must be new to the store, and the index
// must accept every vector before any record is appended.
func (s *VectorStore) AddEmbeddings(ctx context.Context, vectors [][]float32, records []domain.MetadataRecord) error {
	if len(vectors) != len(records) {
		return &domain.CountMismatchError{Vectors: len(vectors), Records: len(records)}
	}
	if len(vectors) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		_, dup := seen[rec.ChunkID]
		if _, _, exists := s.metadata.GetByChunkID(rec.ChunkID); dup || exists {
			return fmt.Errorf("%w: duplicate chunk id %q", domain.ErrInvalidInput, rec.ChunkID)
		}
		seen[rec.ChunkID] = struct{}{}
	}
	if err := s.index.Add(vectors); err != nil {
		return fmt.Errorf("add vectors: %w", err)
	}
	s.metadata.Append(records)
	return nil
}

// Search embeds query and returns up to k nearest chunks, nearest first.
func (s *VectorStore) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	logger.Section("Vector Search")
	logger.Debug("Query: %q, k=%d", query, k)

	if strings.TrimSpace(query) == "" || k <= 0 || s.Count() == 0 {
		logger.Debug("Nothing to search")
		return []domain.SearchResult{}, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyInput) {
			return []domain.SearchResult{}, nil
		}
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrProvider, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits, err := s.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		rec, ok := s.metadata.At(h.Position)
		if !ok {
			return nil, fmt.Errorf("no metadata at position %d: %w", h.Position, domain.ErrNotFound)
		}
		results = append(results, domain.SearchResult{
			MetadataRecord: rec,
			Distance:       h.Distance,
			Position:       h.Position,
		})
	}

	logger.Info("Found %d results", len(results))
	return results, nil
}

// Retrieve returns up to k chunks for query, nearest first.
func (s *VectorStore) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	results, err := s.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.RetrievedChunk, len(results))
	for i, r := range results {
		chunks[i] = domain.RetrievedChunk{Text: r.Text, Source: r.Source, Distance: r.Distance}
	}
	return chunks, nil
}

// Save writes the index and metadata. With nothing indexed it does nothing.
func (s *VectorStore) Save(ctx context.Context) error {
	if s.state == nil {
		return nil
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	if s.index.Count() == 0 {
		s.mu.RUnlock()
		logger.Info("Nothing indexed, skipping save")
		return nil
	}
	st := &driven.PersistedState{
		Dimension: s.index.Dimension(),
		Vectors:   s.index.Vectors(),
		Records:   s.metadata.Records(),
	}
	s.mu.RUnlock()

	defer logger.Timed("save state")()
	if err := s.state.Save(ctx, st); err != nil {
		return fmt.Errorf("%w: save %s: %w", domain.ErrPersistence, s.state.Location(), err)
	}
	logger.Debug("Saved %d vectors to %s", len(st.Vectors), s.state.Location())
	return nil
}

// Count returns the number of indexed vectors.
func (s *VectorStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Count()
}

// ListDocuments returns a summary of every indexed document, ordered by ID.
func (s *VectorStore) ListDocuments() []domain.DocumentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.metadata.DocumentIDs()
	out := make([]domain.DocumentSummary, 0, len(ids))
	for _, id := range ids {
		if summary, ok := s.metadata.DocumentSummary(id); ok {
			out = append(out, summary)
		}
	}
	return out
}

// DocumentChunks returns a document's chunks ordered by chunk index.
func (s *VectorStore) DocumentChunks(documentID string) ([]domain.ChunkInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := s.metadata.ChunksOfDocument(documentID)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return chunks, nil
}

// Chunk returns a single chunk by ID.
func (s *VectorStore) Chunk(chunkID string) (*domain.ChunkDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, pos, ok := s.metadata.GetByChunkID(chunkID)
	if !ok {
		return nil, fmt.Errorf("chunk %s: %w", chunkID, domain.ErrNotFound)
	}
	return &domain.ChunkDetails{MetadataRecord: rec, Position: pos}, nil
}

// DocumentIDs returns the distinct document IDs in sorted order.
func (s *VectorStore) DocumentIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metadata.DocumentIDs()
}

// Sources returns every indexed source path, sorted.
func (s *VectorStore) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metadata.DistinctSources()
}

// Status describes the store.
func (s *VectorStore) Status() domain.StoreStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := domain.StoreStatus{
		Vectors:   s.index.Count(),
		Documents: len(s.metadata.DocumentIDs()),
		Dimension: s.index.Dimension(),
		Loaded:    s.loaded,
	}
	if s.state != nil {
		status.Location = s.state.Location()
	}
	if s.embedder != nil {
		status.EmbeddingModel = s.embedder.ModelName()
	}
	return status
}
