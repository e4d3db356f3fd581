package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// MockSearchService implements driving.SearchService for testing.
type MockSearchService struct {
	SearchFunc func(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

func (m *MockSearchService) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, k)
	}
	return nil, nil
}

// MockAnswerService implements driving.AnswerService for testing.
type MockAnswerService struct {
	AnswerFunc func(ctx context.Context, query string) (*domain.Answer, error)
}

func (m *MockAnswerService) Answer(ctx context.Context, query string) (*domain.Answer, error) {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, query)
	}
	return &domain.Answer{Text: "answer"}, nil
}

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	Documents []domain.DocumentSummary
	Store     domain.StoreStatus
}

func (m *MockDocumentService) ListDocuments() []domain.DocumentSummary { return m.Documents }

func (m *MockDocumentService) DocumentChunks(string) ([]domain.ChunkInfo, error) {
	return nil, domain.ErrNotFound
}

func (m *MockDocumentService) Chunk(string) (*domain.ChunkDetails, error) {
	return nil, domain.ErrNotFound
}

func (m *MockDocumentService) Status() domain.StoreStatus { return m.Store }

func TestNewPorts(t *testing.T) {
	search := &MockSearchService{}
	answer := &MockAnswerService{}
	docs := &MockDocumentService{}

	ports := NewPorts(search, answer, docs)

	assert.Equal(t, search, ports.Search)
	assert.Equal(t, answer, ports.Answer)
	assert.Equal(t, docs, ports.Document)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"all set", NewPorts(&MockSearchService{}, &MockAnswerService{}, &MockDocumentService{}), nil},
		{"search only", &Ports{Search: &MockSearchService{}}, nil},
		{"missing search", &Ports{Answer: &MockAnswerService{}}, ErrMissingSearchService},
		{"nil ports", nil, ErrInvalidPorts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
