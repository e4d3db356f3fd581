package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
	}{
		{AIProviderOllama, true},
		{AIProviderOpenAI, true},
		{AIProviderAnthropic, true},
		{AIProviderHash, true},
		{AIProvider(""), false},
		{AIProvider("groq"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	t.Run("openai without key", func(t *testing.T) {
		assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	})

	t.Run("openai with key", func(t *testing.T) {
		assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "k"}.IsConfigured())
	})

	t.Run("ollama without key", func(t *testing.T) {
		assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
	})

	t.Run("anthropic cannot embed", func(t *testing.T) {
		assert.False(t, EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	})

	t.Run("unset provider", func(t *testing.T) {
		assert.False(t, EmbeddingSettings{}.IsConfigured())
	})
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderHash}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 1500, s.Chunker.Size)
	assert.Equal(t, 300, s.Chunker.Overlap)
	assert.Equal(t, 4, s.Answer.TopK)
	assert.InDelta(t, 0.7, s.Answer.Threshold, 1e-9)
	assert.Equal(t, 200, s.Answer.ExcerptLength)
	assert.Equal(t, StoreBackendLocal, s.Store.Backend)
	assert.Equal(t, CompressionZstd, s.Store.Compression)
	assert.Equal(t, int64(50*1024*1024), s.Server.MaxUploadBytes)
	assert.False(t, s.Embedding.IsConfigured())
	assert.False(t, s.LLM.IsConfigured())
}

func TestCompression_IsValid(t *testing.T) {
	assert.True(t, CompressionNone.IsValid())
	assert.True(t, CompressionLZ4.IsValid())
	assert.True(t, CompressionZstd.IsValid())
	assert.False(t, Compression("gzip").IsValid())
}

func TestStoreBackend_IsValid(t *testing.T) {
	assert.True(t, StoreBackendLocal.IsValid())
	assert.True(t, StoreBackendMinio.IsValid())
	assert.False(t, StoreBackend("s3").IsValid())
}

func TestSnapshotSettings_IsConfigured(t *testing.T) {
	assert.False(t, SnapshotSettings{}.IsConfigured())
	assert.False(t, SnapshotSettings{Endpoint: "localhost:9000"}.IsConfigured())
	assert.True(t, SnapshotSettings{Endpoint: "localhost:9000", Bucket: "b"}.IsConfigured())
}

func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	assert.Equal(t, 768, dims["nomic-embed-text"])
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
	assert.Equal(t, 256, dims[DefaultEmbeddingModels()[AIProviderHash]])
}
