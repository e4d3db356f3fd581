package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/styles"
)

func TestNewQueryInput(t *testing.T) {
	input := NewQueryInput(styles.DefaultStyles())

	require.NotNil(t, input)
	assert.Equal(t, "", input.Value())
	assert.True(t, input.Focused())
	assert.Equal(t, AskLabel, input.Label())
}

func TestNewQueryInput_NilStyles(t *testing.T) {
	input := NewQueryInput(nil)

	require.NotNil(t, input)
	assert.NotNil(t, input.styles)
}

func TestQueryInput_Init(t *testing.T) {
	input := NewQueryInput(nil)

	// Blink command should be returned
	assert.NotNil(t, input.Init())
}

func TestQueryInput_Update(t *testing.T) {
	input := NewQueryInput(nil)

	updated, _ := input.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, input, updated)
	assert.Equal(t, "a", input.Value())
}

func TestQueryInput_Update_TypingAndBackspace(t *testing.T) {
	input := NewQueryInput(nil)

	for _, r := range "soil" {
		input.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, "soil", input.Value())

	input.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "soi", input.Value())
}

func TestQueryInput_SetAskMode(t *testing.T) {
	input := NewQueryInput(nil)

	input.SetAskMode(false)
	assert.Equal(t, SearchLabel, input.Label())
	assert.Contains(t, input.View(), "Search")

	input.SetAskMode(true)
	assert.Equal(t, AskLabel, input.Label())
	assert.Contains(t, input.View(), "Ask")
}

func TestQueryInput_FocusAndBlur(t *testing.T) {
	input := NewQueryInput(nil)

	input.Blur()
	assert.False(t, input.Focused())

	input.Focus()
	assert.True(t, input.Focused())
}

func TestQueryInput_SetValueAndReset(t *testing.T) {
	input := NewQueryInput(nil)

	input.SetValue("crop rotation")
	assert.Equal(t, "crop rotation", input.Value())

	input.Reset()
	assert.Equal(t, "", input.Value())
}

func TestQueryInput_SetWidth(t *testing.T) {
	input := NewQueryInput(nil)

	input.SetWidth(100)
	assert.Equal(t, 100, input.Width())
	assert.Equal(t, 88, input.textinput.Width)

	input.SetWidth(10)
	assert.Equal(t, 20, input.textinput.Width)
}
