package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

// --- Mock implementations ---

// keywordEmbedder implements driven.EmbeddingService with one dimension per
// keyword: 1 when the lower-cased text contains it, 0 otherwise.
type keywordEmbedder struct {
	keywords []string

	mu        sync.Mutex
	calls     int
	short     bool // return one vector fewer than requested
	widthDiff int  // added to the vector width
	err       error
}

func (m *keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(m.keywords)+m.widthDiff)
	for i, kw := range m.keywords {
		if i < len(vec) && strings.Contains(lower, kw) {
			vec[i] = 1
		}
	}
	return vec
}

func (m *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, m.vector(t))
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *keywordEmbedder) Dimensions() int   { return len(m.keywords) }
func (m *keywordEmbedder) ModelName() string { return "keyword" }

func (m *keywordEmbedder) Ping(_ context.Context) error { return nil }

func (m *keywordEmbedder) Close() error { return nil }

func (m *keywordEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockStateStore implements driven.StateStore for testing.
type mockStateStore struct {
	state   *driven.PersistedState
	loadErr error
	saveErr error
	saves   int
	saved   *driven.PersistedState
}

func (m *mockStateStore) Load(_ context.Context) (*driven.PersistedState, error) {
	return m.state, m.loadErr
}

func (m *mockStateStore) Save(_ context.Context, state *driven.PersistedState) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = state
	return nil
}

func (m *mockStateStore) Location() string { return "mock://state" }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error
	prompts  []string
	opts     driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

// mockRetriever implements driving.Retriever for testing.
type mockRetriever struct {
	chunks []domain.RetrievedChunk
	err    error
	k      int
	query  string
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	m.query = query
	m.k = k
	if m.err != nil {
		return nil, m.err
	}
	return m.chunks, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerContext:  "CONTEXT:\n{context}\nQUESTION: {query}",
		driven.PromptAnswerFallback: "FALLBACK: {query}",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// mockIndexer implements DocumentIndexer for testing.
type mockIndexer struct {
	sources []string
	indexed []domain.Document
	result  *domain.IngestResult
	err     error
}

func (m *mockIndexer) Index(_ context.Context, docs []domain.Document) (*domain.IngestResult, error) {
	m.indexed = append(m.indexed, docs...)
	if m.result == nil && m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, m.err
	}
	return &domain.IngestResult{ChunksAdded: len(docs) * 2, DocumentsIndexed: len(docs)}, nil
}

func (m *mockIndexer) Sources() []string { return m.sources }

func (m *mockIndexer) DocumentChunks(documentID string) ([]domain.ChunkInfo, error) {
	for _, d := range m.indexed {
		if d.ID() == documentID {
			return []domain.ChunkInfo{{ChunkIndex: 0}, {ChunkIndex: 1}}, nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockLoader implements driven.DocumentLoader for testing.
type mockLoader struct {
	results map[string]*driven.LoadResult
	err     error
	paths   []string
}

func (m *mockLoader) Load(_ context.Context, path string) (*driven.LoadResult, error) {
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, m.err
	}
	if r, ok := m.results[path]; ok {
		return r, nil
	}
	return &driven.LoadResult{}, nil
}

func (m *mockLoader) Watch(_ context.Context, _ string, _ func([]string)) error { return nil }

// mapConfigStore is a driven.ConfigStore held in a map.
type mapConfigStore struct {
	values map[string]any
}

func newMapConfigStore() *mapConfigStore {
	return &mapConfigStore{values: map[string]any{}}
}

func (m *mapConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mapConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mapConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (m *mapConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (m *mapConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mapConfigStore) GetStringSlice(key string) []string {
	s, _ := m.values[key].([]string)
	return s
}

func (m *mapConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mapConfigStore) Save() error  { return nil }
func (m *mapConfigStore) Load() error  { return nil }
func (m *mapConfigStore) Path() string { return ":memory:" }
