package domain

import (
	"crypto/md5" //nolint:gosec // Identity hash, not a security boundary.
	"encoding/hex"
	"fmt"
)

// documentIDPrefix prefixes every derived document identifier.
const documentIDPrefix = "doc_"

// documentIDHexLen is the number of hex characters kept from the source hash.
const documentIDHexLen = 12

// Document represents one loaded input artifact, typically a file.
// Its identity is derived from Source, never assigned.
type Document struct {
	// Source is the path or identifier the document was loaded from.
	Source string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	Content string

	// MIMEType is the detected content type.
	MIMEType string
}

// ID returns the derived document identifier for this document.
func (d Document) ID() string {
	return DocumentID(d.Source)
}

// Chunk is a contiguous text window from one Document.
// Adjacent chunks of the same document overlap.
type Chunk struct {
	// ID is "{DocumentID}_chunk_{Index:04d}".
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Source is the owning document's source.
	Source string

	// Text is the chunk text.
	Text string

	// Index is the 0-based position within the document.
	Index int

	// Total is the number of chunks produced for the document.
	Total int
}

// Record returns the metadata record describing this chunk.
func (c Chunk) Record() MetadataRecord {
	return MetadataRecord{
		Text:        c.Text,
		Source:      c.Source,
		DocumentID:  c.DocumentID,
		ChunkID:     c.ID,
		ChunkIndex:  c.Index,
		TotalChunks: c.Total,
	}
}

// MetadataRecord describes the embedding stored at the same position in the vector index.
type MetadataRecord struct {
	Text        string `json:"text"`
	Source      string `json:"source"`
	DocumentID  string `json:"document_id"`
	ChunkID     string `json:"chunk_id"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// ChunkInfo is a chunk as listed for its document.
type ChunkInfo struct {
	ChunkID    string `json:"chunk_id"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
	Source     string `json:"source"`
	Position   int    `json:"vector_index"`
}

// ChunkDetails is a single chunk looked up by its ID.
type ChunkDetails struct {
	MetadataRecord
	Position int `json:"vector_index"`
}

// DocumentSummary summarises one indexed document.
type DocumentSummary struct {
	DocumentID  string   `json:"document_id"`
	Source      string   `json:"source"`
	TotalChunks int      `json:"total_chunks"`
	ChunkIDs    []string `json:"chunk_ids"`
}

// DocumentID derives the stable document identifier for a source.
// Repeated calls with the same source always return the same ID.
func DocumentID(source string) string {
	sum := md5.Sum([]byte(source)) //nolint:gosec // See import.
	return documentIDPrefix + hex.EncodeToString(sum[:])[:documentIDHexLen]
}

// ChunkID derives the chunk identifier for the chunk at index within a document.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%04d", documentID, index)
}
