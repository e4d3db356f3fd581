package cli

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	lastK int
	err   error
}

func (m *mockSearchService) Search(_ context.Context, _ string, k int) ([]domain.SearchResult, error) {
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return []domain.SearchResult{
		{
			MetadataRecord: domain.MetadataRecord{
				Text: "Cats sleep for most of the day.", Source: "/docs/cats.txt",
				DocumentID: "doc-1", ChunkID: "doc-1_chunk_0", ChunkIndex: 0, TotalChunks: 2,
			},
			Distance: 0.25,
		},
	}, nil
}

// mockAnswerService implements driving.AnswerService for testing.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAnswerService) Answer(_ context.Context, _ string) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{
		Text: "Cats sleep a lot.",
		Sources: []domain.AnswerSource{
			{Source: "/docs/cats.txt", Excerpt: "Cats sleep for most of the day.", Distance: 0.25, ChunkCount: 2},
		},
	}, nil
}

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	docs []domain.DocumentSummary
}

func (m *mockDocumentService) ListDocuments() []domain.DocumentSummary {
	return m.docs
}

func (m *mockDocumentService) DocumentChunks(documentID string) ([]domain.ChunkInfo, error) {
	if documentID != "doc-1" {
		return nil, domain.ErrNotFound
	}
	return []domain.ChunkInfo{
		{ChunkID: "doc-1_chunk_0", ChunkIndex: 0, Text: "Cats sleep for most of the day.", Source: "/docs/cats.txt"},
		{ChunkID: "doc-1_chunk_1", ChunkIndex: 1, Text: "They hunt at dusk.", Source: "/docs/cats.txt", Position: 1},
	}, nil
}

func (m *mockDocumentService) Chunk(chunkID string) (*domain.ChunkDetails, error) {
	if chunkID != "doc-1_chunk_1" {
		return nil, domain.ErrNotFound
	}
	return &domain.ChunkDetails{
		MetadataRecord: domain.MetadataRecord{
			Text: "They hunt at dusk.", Source: "/docs/cats.txt",
			DocumentID: "doc-1", ChunkID: "doc-1_chunk_1", ChunkIndex: 1, TotalChunks: 2,
		},
		Position: 1,
	}, nil
}

func (m *mockDocumentService) Status() domain.StoreStatus {
	return domain.StoreStatus{
		Vectors: 2, Documents: len(m.docs), Dimension: 256,
		Loaded: true, Location: "/tmp/store", EmbeddingModel: "hash-256",
	}
}

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	paths []string
	err   error
}

func (m *mockIngestService) IngestPath(_ context.Context, path string) (*domain.IngestResult, error) {
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{
		ChunksAdded:      3,
		DocumentsIndexed: 1,
		SkippedSources:   []string{"/docs/old.txt"},
		FailedSources:    []domain.IngestFailure{{Source: "/docs/bad.docx", Error: "corrupt archive"}},
	}, nil
}

func (m *mockIngestService) IngestFiles(_ context.Context, files []domain.UploadedFile) (*domain.IngestResult, error) {
	return &domain.IngestResult{DocumentsIndexed: len(files)}, nil
}

func (m *mockIngestService) History(_ context.Context, _ int) (*domain.IngestHistory, error) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.IngestHistory{
		Runs: []domain.IngestRun{
			{ID: "run-1", Path: "/docs", StartedAt: at, FinishedAt: at, ChunksAdded: 3, Documents: 1, Skipped: 1, Failed: 1},
		},
		Sources: []domain.SourceRecord{
			{Source: "/docs/cats.txt", DocumentID: "doc-1", ContentHash: "abc", Chunks: 2, IndexedAt: at},
		},
	}, nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings domain.AppSettings
	set      map[string]string
	validErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if strings.HasPrefix(key, "unknown") {
		return domain.ErrInvalidInput
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error                 { return m.validErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error        { return nil }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	search   *mockSearchService
	answer   *mockAnswerService
	document *mockDocumentService
	ingest   *mockIngestService
	settings *mockSettingsService
}

var mocks testServices

// setupTestServices installs mock services, disables wiring and returns a
// cleanup that restores the previous state and resets command flags.
func setupTestServices() func() {
	oldSearch, oldAnswer, oldDocument := searchService, answerService, documentService
	oldIngest, oldSettings, oldInjected := ingestService, settingsService, servicesInjected
	oldAppSettings, oldWatcher := appSettings, watcher

	mocks = testServices{
		search: &mockSearchService{},
		answer: &mockAnswerService{},
		document: &mockDocumentService{docs: []domain.DocumentSummary{
			{DocumentID: "doc-1", Source: "/docs/cats.txt", TotalChunks: 2, ChunkIDs: []string{"doc-1_chunk_0", "doc-1_chunk_1"}},
		}},
		ingest:   &mockIngestService{},
		settings: newMockSettingsService(),
	}
	searchService = mocks.search
	answerService = mocks.answer
	documentService = mocks.document
	ingestService = mocks.ingest
	settingsService = mocks.settings
	servicesInjected = true

	return func() {
		searchService, answerService, documentService = oldSearch, oldAnswer, oldDocument
		ingestService, settingsService, servicesInjected = oldIngest, oldSettings, oldInjected
		appSettings, watcher = oldAppSettings, oldWatcher
		resetFlags()
	}
}

// resetFlags restores flag variables, which persist across Execute calls.
func resetFlags() {
	searchLimit, searchJSON = 10, false
	askJSON, statusJSON, documentJSON = false, false, false
	historyLimit, historyJSON = 10, false
	ingestWatch = false
	serveAddr = ""
	rootCmd.SetIn(nil)
	rootCmd.SetArgs(nil)
}

// execute runs the root command with args and returns its combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
