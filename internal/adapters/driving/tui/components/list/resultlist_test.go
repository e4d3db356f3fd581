package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragstore/internal/core/domain"
)

func sampleResults() []domain.SearchResult {
	rec := func(source string, idx int, text string) domain.MetadataRecord {
		return domain.MetadataRecord{Source: source, ChunkIndex: idx, Text: text, ChunkID: "c"}
	}
	return []domain.SearchResult{
		{MetadataRecord: rec("/docs/maize.txt", 0, "Maize needs nitrogen"), Distance: 0.12},
		{MetadataRecord: rec("/docs/soil.md", 3, "Soil pH matters"), Distance: 0.34},
		{MetadataRecord: rec("/docs/pests.html", 1, "Scout for aphids"), Distance: 0.56},
	}
}

func TestNewResultList(t *testing.T) {
	list := NewResultList(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.True(t, list.IsEmpty())
	assert.Equal(t, 0, list.Selected())
}

func TestNewResultList_NilStyles(t *testing.T) {
	list := NewResultList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
	assert.Nil(t, list.Init())
}

func TestResultList_SetResults_ResetsSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())
	list.SetSelected(2)

	list.SetResults(sampleResults()[:1])

	assert.Equal(t, 0, list.Selected())
	assert.Equal(t, 1, list.Count())
}

func TestResultList_SetSelected(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.SetSelected(1)
	assert.Equal(t, 1, list.Selected())

	list.SetSelected(10)
	assert.Equal(t, 1, list.Selected())

	list.SetSelected(-1)
	assert.Equal(t, 1, list.Selected())
}

func TestResultList_SelectedResult(t *testing.T) {
	list := NewResultList(nil)
	assert.Nil(t, list.SelectedResult())

	list.SetResults(sampleResults())
	list.MoveDown()

	got := list.SelectedResult()
	require.NotNil(t, got)
	assert.Equal(t, "/docs/soil.md", got.Source)
}

func TestResultList_Movement(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.MoveUp()
	assert.Equal(t, 0, list.Selected())

	list.MoveDown()
	list.MoveDown()
	list.MoveDown()
	assert.Equal(t, 2, list.Selected())
}

func TestResultList_Update_Keys(t *testing.T) {
	tests := []struct {
		name     string
		msg      tea.KeyMsg
		expected int
	}{
		{"down arrow", tea.KeyMsg{Type: tea.KeyDown}, 2},
		{"up arrow", tea.KeyMsg{Type: tea.KeyUp}, 0},
		{"j", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, 2},
		{"k", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := NewResultList(nil)
			list.SetResults(sampleResults())
			list.SetSelected(1)

			list.Update(tt.msg)

			assert.Equal(t, tt.expected, list.Selected())
		})
	}
}

func TestResultList_View_Empty(t *testing.T) {
	list := NewResultList(nil)

	assert.Contains(t, list.View(), "No results")
}

func TestResultList_View_WithResults(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(100, 30)
	list.SetResults(sampleResults())

	view := list.View()

	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "maize.txt #0")
	assert.Contains(t, view, "0.1200")
	assert.Contains(t, view, "Maize needs nitrogen")
	assert.Contains(t, view, "> ")
}

func TestResultList_View_ScrollsToSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(100, 7) // room for one result
	list.SetResults(sampleResults())
	list.SetSelected(2)

	view := list.View()

	assert.Contains(t, view, "pests.html")
	assert.NotContains(t, view, "maize.txt")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, 10, len([]rune(Truncate(strings.Repeat("é", 50), 10))))
}
