package domain

import "time"

// IngestResult reports the outcome of an indexing or ingestion call.
type IngestResult struct {
	// ChunksAdded is the number of chunks (and vectors) appended to the store.
	ChunksAdded int `json:"chunks_added"`

	// DocumentsIndexed is the number of documents that produced at least one chunk.
	DocumentsIndexed int `json:"documents_indexed"`

	// SkippedSources lists sources already present in the store.
	SkippedSources []string `json:"skipped_sources,omitempty"`

	// FailedSources lists sources that could not be loaded or were rejected.
	FailedSources []IngestFailure `json:"failed_sources,omitempty"`
}

// IngestFailure records why a source was not ingested.
type IngestFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// UploadedFile is a file received from an external caller (HTTP upload).
type UploadedFile struct {
	Name    string
	Content []byte
}

// IngestRun is one recorded ingestion run.
type IngestRun struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitzero"`
	ChunksAdded int       `json:"chunks_added"`
	Documents   int       `json:"documents"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
}

// SourceRecord is the ledger entry for an ingested source.
type SourceRecord struct {
	Source      string    `json:"source"`
	DocumentID  string    `json:"document_id"`
	ContentHash string    `json:"content_hash"`
	Chunks      int       `json:"chunks"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// IngestHistory is the ledger view of past ingestion.
type IngestHistory struct {
	Runs    []IngestRun    `json:"runs"`
	Sources []SourceRecord `json:"sources"`
}
