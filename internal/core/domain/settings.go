package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API or any OpenAI-compatible endpoint (e.g. Groq).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHash is the offline hashing embedder. It is not a semantic model.
	AIProviderHash AIProvider = "hash"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderHash:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHash
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderHash:
		return "Hashing embedder (offline)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector width when non-zero.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature controls randomness of answers.
	Temperature float64

	// MaxTokens caps the answer length.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHash {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RateLimitSettings throttles calls to the embedding provider.
type RateLimitSettings struct {
	// RequestsPerSecond is the sustained request rate. Zero disables throttling.
	RequestsPerSecond float64

	// BatchSize is the number of texts sent per embedding request.
	BatchSize int

	// Concurrency is the number of embedding requests in flight.
	Concurrency int
}

// ChunkerSettings configures document splitting.
type ChunkerSettings struct {
	// Size is the maximum chunk length in characters.
	Size int

	// Overlap is the number of characters shared by adjacent chunks.
	Overlap int
}

// Compression identifies the block compression applied to the persisted index file.
type Compression string

// Available compression options.
const (
	CompressionNone Compression = "none"
	CompressionLZ4  Compression = "lz4"
	CompressionZstd Compression = "zstd"
)

// IsValid returns true if the compression is recognised.
func (c Compression) IsValid() bool {
	switch c {
	case CompressionNone, CompressionLZ4, CompressionZstd:
		return true
	default:
		return false
	}
}

// StoreBackend selects where the index and metadata files are persisted.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendLocal persists to a directory on disk.
	StoreBackendLocal StoreBackend = "local"

	// StoreBackendMinio persists to an S3-compatible bucket.
	StoreBackendMinio StoreBackend = "minio"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	return b == StoreBackendLocal || b == StoreBackendMinio
}

// StoreSettings configures the vector store and its persistence.
type StoreSettings struct {
	// Backend selects local or remote persistence.
	Backend StoreBackend

	// Dir is the local storage directory.
	Dir string

	// Compression is applied to the index file.
	Compression Compression

	// SearchWorkers is the number of shards scanned concurrently per query.
	SearchWorkers int
}

// SnapshotSettings configures the S3-compatible backend.
type SnapshotSettings struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// IsConfigured returns true if a bucket and endpoint are set.
func (s SnapshotSettings) IsConfigured() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// AnswerSettings tunes answer composition.
type AnswerSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// Threshold discards matches whose distance is not below it.
	Threshold float64

	// ExcerptLength is the number of characters kept per source excerpt.
	ExcerptLength int
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// MaxUploadBytes rejects larger uploaded files.
	MaxUploadBytes int64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	RateLimit RateLimitSettings
	Chunker   ChunkerSettings
	Store     StoreSettings
	Snapshot  SnapshotSettings
	Answer    AnswerSettings
	Server    ServerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured and must be set explicitly.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Temperature: 0.2,
			MaxTokens:   2048,
		},
		RateLimit: RateLimitSettings{
			RequestsPerSecond: 0,
			BatchSize:         32,
			Concurrency:       4,
		},
		Chunker: ChunkerSettings{
			Size:    1500,
			Overlap: 300,
		},
		Store: StoreSettings{
			Backend:       StoreBackendLocal,
			Compression:   CompressionZstd,
			SearchWorkers: 4,
		},
		Snapshot: SnapshotSettings{
			Prefix: "ragstore",
			UseSSL: true,
		},
		Answer: AnswerSettings{
			TopK:          4,
			Threshold:     0.7,
			ExcerptLength: 200,
		},
		Server: ServerSettings{
			Addr:           ":8080",
			MaxUploadBytes: 50 * 1024 * 1024,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderHash,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderHash:   "hash-256",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Offline
		"hash-256": 256,
	}
}
