package driven

import "github.com/custodia-labs/ragstore/internal/core/domain"

// MetadataStore holds one record per indexed vector, aligned by position.
type MetadataStore interface {
	// Append adds records at the end, in order.
	Append(records []domain.MetadataRecord)

	// Len returns the number of records.
	Len() int

	// At returns the record at position i.
	At(i int) (domain.MetadataRecord, bool)

	// Records returns a copy of all records in position order.
	Records() []domain.MetadataRecord

	// Restore replaces the store contents.
	Restore(records []domain.MetadataRecord)

	// GetByChunkID returns the first record with the given chunk ID and its position.
	GetByChunkID(chunkID string) (domain.MetadataRecord, int, bool)

	// ChunksOfDocument returns a document's chunks, deduplicated by chunk ID
	// and ordered by chunk index.
	ChunksOfDocument(documentID string) []domain.ChunkInfo

	// DocumentIDs returns the distinct document IDs in sorted order.
	DocumentIDs() []string

	// DocumentSummary summarises one document.
	DocumentSummary(documentID string) (domain.DocumentSummary, bool)

	// DistinctSources returns every source path present, sorted.
	DistinctSources() []string
}
