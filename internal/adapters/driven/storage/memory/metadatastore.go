package memory

import (
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// MetadataStore is an in-memory implementation of driven.MetadataStore.
// Records are addressed by position. Lookups by chunk and document ID are
// served from secondary indexes rebuilt on Restore.
type MetadataStore struct {
	mu      sync.RWMutex
	records []domain.MetadataRecord

	// byChunk maps a chunk ID to its first position.
	byChunk map[string]int

	// byDocument maps a document ID to the positions of its records.
	byDocument map[string]*roaring.Bitmap
}

// NewMetadataStore creates an empty metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		byChunk:    make(map[string]int),
		byDocument: make(map[string]*roaring.Bitmap),
	}
}

// Append adds records at the end, in order.
func (s *MetadataStore) Append(records []domain.MetadataRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.appendLocked(rec)
	}
}

// Len returns the number of records.
func (s *MetadataStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// At returns the record at position i.
func (s *MetadataStore) At(i int) (domain.MetadataRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.records) {
		return domain.MetadataRecord{}, false
	}
	return s.records[i], true
}

// Records returns a copy of all records in position order.
func (s *MetadataStore) Records() []domain.MetadataRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MetadataRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Restore replaces the store contents and rebuilds the lookup indexes.
func (s *MetadataStore) Restore(records []domain.MetadataRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]domain.MetadataRecord, 0, len(records))
	s.byChunk = make(map[string]int, len(records))
	s.byDocument = make(map[string]*roaring.Bitmap)
	for _, rec := range records {
		s.appendLocked(rec)
	}
}

// GetByChunkID returns the first record with the given chunk ID and its position.
func (s *MetadataStore) GetByChunkID(chunkID string) (domain.MetadataRecord, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.byChunk[chunkID]
	if !ok {
		return domain.MetadataRecord{}, 0, false
	}
	return s.records[pos], pos, true
}

// ChunksOfDocument returns the document's chunks, one per chunk ID, ordered by chunk index.
// When a chunk ID occurs more than once, the earliest position wins.
func (s *MetadataStore) ChunksOfDocument(documentID string) []domain.ChunkInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bm, ok := s.byDocument[documentID]
	if !ok {
		return nil
	}

	seen := make(map[string]struct{}, bm.GetCardinality())
	chunks := make([]domain.ChunkInfo, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		pos := int(it.Next())
		rec := s.records[pos]
		if _, dup := seen[rec.ChunkID]; dup {
			continue
		}
		seen[rec.ChunkID] = struct{}{}
		chunks = append(chunks, domain.ChunkInfo{
			ChunkID:    rec.ChunkID,
			ChunkIndex: rec.ChunkIndex,
			Text:       rec.Text,
			Source:     rec.Source,
			Position:   pos,
		})
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
	return chunks
}

// DocumentIDs returns the distinct document IDs in sorted order.
func (s *MetadataStore) DocumentIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.byDocument))
	for id := range s.byDocument {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DocumentSummary summarises one document. TotalChunks counts distinct chunk IDs.
func (s *MetadataStore) DocumentSummary(documentID string) (domain.DocumentSummary, bool) {
	chunks := s.ChunksOfDocument(documentID)
	if len(chunks) == 0 {
		return domain.DocumentSummary{}, false
	}
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ChunkID
	}
	return domain.DocumentSummary{
		DocumentID:  documentID,
		Source:      chunks[0].Source,
		TotalChunks: len(chunks),
		ChunkIDs:    ids,
	}, true
}

// DistinctSources returns every source path present, sorted.
func (s *MetadataStore) DistinctSources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(map[string]struct{})
	for _, rec := range s.records {
		set[rec.Source] = struct{}{}
	}
	sources := make([]string, 0, len(set))
	for src := range set {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	return sources
}

func (s *MetadataStore) appendLocked(rec domain.MetadataRecord) {
	pos := len(s.records)
	s.records = append(s.records, rec)

	if _, exists := s.byChunk[rec.ChunkID]; !exists {
		s.byChunk[rec.ChunkID] = pos
	}

	bm, ok := s.byDocument[rec.DocumentID]
	if !ok {
		bm = roaring.New()
		s.byDocument[rec.DocumentID] = bm
	}
	bm.Add(uint32(pos)) //nolint:gosec // Positions are bounded by slice length.
}
