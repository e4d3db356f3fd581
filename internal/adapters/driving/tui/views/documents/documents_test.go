package documents

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	Documents []domain.DocumentSummary
	Chunks    map[string][]domain.ChunkInfo
}

func (m *MockDocumentService) ListDocuments() []domain.DocumentSummary {
	return m.Documents
}

func (m *MockDocumentService) DocumentChunks(documentID string) ([]domain.ChunkInfo, error) {
	chunks, ok := m.Chunks[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return chunks, nil
}

func (m *MockDocumentService) Chunk(string) (*domain.ChunkDetails, error) {
	return nil, domain.ErrNotFound
}

func (m *MockDocumentService) Status() domain.StoreStatus {
	return domain.StoreStatus{Documents: len(m.Documents)}
}

func testService() *MockDocumentService {
	return &MockDocumentService{
		Documents: []domain.DocumentSummary{
			{DocumentID: "aaa", Source: "/docs/alpha.md", TotalChunks: 2, ChunkIDs: []string{"aaa_chunk_0", "aaa_chunk_1"}},
			{DocumentID: "bbb", Source: "/docs/beta.txt", TotalChunks: 1, ChunkIDs: []string{"bbb_chunk_0"}},
		},
		Chunks: map[string][]domain.ChunkInfo{
			"aaa": {
				{ChunkID: "aaa_chunk_0", ChunkIndex: 0, Text: "alpha one", Source: "/docs/alpha.md", Position: 0},
				{ChunkID: "aaa_chunk_1", ChunkIndex: 1, Text: "alpha two", Source: "/docs/alpha.md", Position: 1},
			},
			"bbb": {
				{ChunkID: "bbb_chunk_0", ChunkIndex: 0, Text: "beta", Source: "/docs/beta.txt", Position: 2},
			},
		},
	}
}

func loadedView(t *testing.T, svc *MockDocumentService) *View {
	t.Helper()
	v := NewView(nil, svc)
	v.SetDimensions(100, 30)
	v, _ = v.Update(v.Load()())
	return v
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoad(t *testing.T) {
	v := loadedView(t, testService())

	require.NoError(t, v.Err())
	assert.Len(t, v.Documents(), 2)
	out := v.View()
	assert.Contains(t, out, "Documents (2)")
	assert.Contains(t, out, "alpha.md")
	assert.Contains(t, out, "beta.txt")
}

func TestLoad_NoService(t *testing.T) {
	v := NewView(nil, nil)

	v, _ = v.Update(v.Load()())

	assert.ErrorIs(t, v.Err(), ErrNoDocumentService)
	assert.Contains(t, v.View(), "Error")
}

func TestEmpty(t *testing.T) {
	v := loadedView(t, &MockDocumentService{})

	assert.Contains(t, v.View(), "No documents indexed")
}

func TestNavigate(t *testing.T) {
	v := loadedView(t, testService())

	v, _ = v.Update(key("j"))
	assert.Equal(t, 1, v.SelectedIndex())

	v, _ = v.Update(key("j"))
	assert.Equal(t, 1, v.SelectedIndex(), "stays on last document")

	v, _ = v.Update(key("k"))
	assert.Equal(t, 0, v.SelectedIndex())
}

func TestOpenDocumentShowsChunks(t *testing.T) {
	v := loadedView(t, testService())

	v, cmd := v.Update(key("enter"))
	require.NotNil(t, cmd)
	require.NotNil(t, v.OpenDocument())
	assert.Equal(t, "aaa", v.OpenDocument().DocumentID)

	v, _ = v.Update(cmd())
	require.Len(t, v.Chunks(), 2)
	out := v.View()
	assert.Contains(t, out, "alpha one")
	assert.Contains(t, out, "aaa_chunk_1")

	v, _ = v.Update(key("esc"))
	assert.Nil(t, v.OpenDocument())
	assert.Contains(t, v.View(), "Documents (2)")
}

func TestChunksLoadError(t *testing.T) {
	svc := testService()
	delete(svc.Chunks, "aaa")
	v := loadedView(t, svc)

	v, cmd := v.Update(key("enter"))
	v, _ = v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrNotFound)
	assert.Nil(t, v.OpenDocument())
}

func TestReload(t *testing.T) {
	svc := testService()
	v := loadedView(t, svc)
	svc.Documents = svc.Documents[:1]

	v, cmd := v.Update(key("r"))
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())

	assert.Len(t, v.Documents(), 1)
}

func TestReloadClampsSelection(t *testing.T) {
	svc := testService()
	v := loadedView(t, svc)
	v, _ = v.Update(key("j"))
	svc.Documents = svc.Documents[:1]

	v, _ = v.Update(v.Load()())

	assert.Equal(t, 0, v.SelectedIndex())
}

func TestEscReturnsToSearch(t *testing.T) {
	v := loadedView(t, testService())

	_, cmd := v.Update(key("esc"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewSearch}, cmd())
}
