package mcp

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	k       int
}

func (m *mockSearchService) Search(_ context.Context, _ string, k int) ([]domain.SearchResult, error) {
	m.k = k
	return m.results, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAnswerService) Answer(_ context.Context, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.DocumentSummary
	chunks    []domain.ChunkInfo
	chunk     *domain.ChunkDetails
	err       error
}

func (m *mockDocumentService) ListDocuments() []domain.DocumentSummary {
	return m.documents
}

func (m *mockDocumentService) DocumentChunks(_ string) ([]domain.ChunkInfo, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) Chunk(_ string) (*domain.ChunkDetails, error) {
	return m.chunk, m.err
}

func (m *mockDocumentService) Status() domain.StoreStatus {
	return domain.StoreStatus{Vectors: len(m.chunks)}
}
