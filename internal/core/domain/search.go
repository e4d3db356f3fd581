package domain

// SearchResult is one vector hit joined with its metadata record.
// Results are ordered nearest first.
type SearchResult struct {
	MetadataRecord

	// Distance is the squared L2 distance to the query.
	Distance float32 `json:"distance"`

	// Position is the vector's position in the index.
	Position int `json:"position"`
}

// RetrievedChunk is the minimal retrieval record handed to consumers of a Retriever.
type RetrievedChunk struct {
	Text     string  `json:"text"`
	Source   string  `json:"source"`
	Distance float32 `json:"distance"`
}

// StoreStatus describes the current state of the vector store.
type StoreStatus struct {
	// Vectors is the number of indexed vectors (always equal to the record count).
	Vectors int `json:"vectors"`

	// Documents is the number of distinct documents.
	Documents int `json:"documents"`

	// Dimension is the fixed embedding width, or 0 before the first add.
	Dimension int `json:"dimension"`

	// Loaded reports whether a persisted state was restored.
	Loaded bool `json:"loaded"`

	// Location is where state is persisted (directory or bucket path).
	Location string `json:"location"`

	// EmbeddingModel is the model used for indexing and queries.
	EmbeddingModel string `json:"embedding_model,omitempty"`
}
