package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragstore/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.ResultCount())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
	assert.Nil(t, bar.Init())
}

func TestStatusBar_Update(t *testing.T) {
	bar := NewBar(nil, nil)

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_Setters(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetState(StateSearching)
	bar.SetMessage("hello")
	bar.SetResultCount(4)
	bar.SetWidth(120)

	assert.Equal(t, StateSearching, bar.State())
	assert.Equal(t, "hello", bar.Message())
	assert.Equal(t, 4, bar.ResultCount())
	assert.Equal(t, 120, bar.Width())
}

func TestStatusBar_Clear_KeepsStore(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetStore(domain.StoreStatus{Documents: 2, Vectors: 9})
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetResultCount(3)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.ResultCount())
	assert.Contains(t, bar.View(), "2 docs, 9 vectors")
}

func TestStatusBar_View(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		count    int
		expected string
	}{
		{"ready", StateReady, "", 0, "Ready"},
		{"searching", StateSearching, "", 0, "Searching..."},
		{"answering", StateAnswering, "", 0, "Thinking..."},
		{"error", StateError, "", 0, "Error"},
		{"error with message", StateError, "disk full", 0, "Error: disk full"},
		{"results", StateResults, "", 5, "5 results"},
		{"answered", StateAnswered, "2 sources", 0, "2 sources"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetResultCount(tt.count)

			assert.Contains(t, bar.View(), tt.expected)
		})
	}
}

func TestStatusBar_View_Hints(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	assert.Contains(t, bar.View(), "enter: submit")

	bar.SetState(StateResults)
	bar.SetResultCount(1)
	assert.Contains(t, bar.View(), "n: new query")
}

func TestStatusBar_View_NoStoreSummaryBeforeStatus(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	assert.NotContains(t, bar.View(), "vectors")
}
