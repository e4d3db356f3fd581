package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShowCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "[Chunker]")
	assert.Contains(t, out, "[Answer]")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_ValidationWarning(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.settings.validErr = errors.New("embedding provider not configured")

	out, err := execute("settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: embedding provider not configured")
}

func TestSettingsSetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "set", "answer.threshold", "0.8")

	require.NoError(t, err)
	assert.Equal(t, "0.8", mocks.settings.set["answer.threshold"])
	assert.Contains(t, out, "answer.threshold = 0.8")
}

func TestSettingsSetCmd_MasksSecrets(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "set", "llm.api_key", "sk-1234567890abcdef")

	require.NoError(t, err)
	assert.Contains(t, out, "llm.api_key = sk-1...cdef")
	assert.NotContains(t, out, "567890")
}

func TestSettingsSetCmd_Error(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("settings", "set", "unknown.key", "1")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsSetKeyCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("sk-secret-value\n"))

	out, err := execute("settings", "set-key", "llm.api_key")

	require.NoError(t, err)
	assert.Equal(t, "sk-secret-value", mocks.settings.set["llm.api_key"])
	assert.Contains(t, out, "llm.api_key saved.")
	assert.NotContains(t, out, "sk-secret-value")
}

func TestSettingsSetKeyCmd_RejectsPlainKeys(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("settings", "set-key", "chunker.size")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a secret key")
}

func TestSettingsSetKeyCmd_EmptyValue(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("\n"))

	_, err := execute("settings", "set-key", "llm.api_key")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no value entered")
}

func TestSettingsKeysCmd(t *testing.T) {
	out, err := execute("settings", "keys")

	require.NoError(t, err)
	assert.Contains(t, out, "chunker.size")
	assert.Contains(t, out, "llm.api_key (secret)")
}

func TestSettingsEmbeddingCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	// Provider 3 is the local hash embedder; accept the default model.
	rootCmd.SetIn(strings.NewReader("3\n\n"))

	out, err := execute("settings", "embedding")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderHash, mocks.settings.settings.Embedding.Provider)
	assert.Equal(t, "hash-256", mocks.settings.settings.Embedding.Model)
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestSettingsLLMCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("2\ngpt-4o\nsk-abcdefghijkl\n"))

	_, err := execute("settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, mocks.settings.settings.LLM.Provider)
	assert.Equal(t, "gpt-4o", mocks.settings.settings.LLM.Model)
	assert.Equal(t, "sk-abcdefghijkl", mocks.settings.settings.LLM.APIKey)
}

func TestSettingsLLMCmd_RequiresAPIKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("2\n\n\n"))

	_, err := execute("settings", "llm")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}
