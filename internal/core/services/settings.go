package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

const defaultOllamaURL = "http://localhost:11434"

// settingField maps one config key onto a field of domain.AppSettings.
type settingField struct {
	key    string
	secret bool
	field  func(s *domain.AppSettings) any
}

// settingFields lists every persisted key in display order.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
var settingFields = []settingField{
	{key: "embedding.provider", field: func(s *domain.AppSettings) any { return &s.Embedding.Provider }},
	{key: "embedding.model", field: func(s *domain.AppSettings) any { return &s.Embedding.Model }},
	{key: "embedding.base_url", field: func(s *domain.AppSettings) any { return &s.Embedding.BaseURL }},
	{key: "embedding.api_key", secret: true, field: func(s *domain.AppSettings) any { return &s.Embedding.APIKey }},
	{key: "embedding.dimensions", field: func(s *domain.AppSettings) any { return &s.Embedding.Dimensions }},
	{key: "llm.provider", field: func(s *domain.AppSettings) any { return &s.LLM.Provider }},
	{key: "llm.model", field: func(s *domain.AppSettings) any { return &s.LLM.Model }},
	{key: "llm.base_url", field: func(s *domain.AppSettings) any { return &s.LLM.BaseURL }},
	{key: "llm.api_key", secret: true, field: func(s *domain.AppSettings) any { return &s.LLM.APIKey }},
	{key: "llm.temperature", field: func(s *domain.AppSettings) any { return &s.LLM.Temperature }},
	{key: "llm.max_tokens", field: func(s *domain.AppSettings) any { return &s.LLM.MaxTokens }},
	{key: "ratelimit.requests_per_second", field: func(s *domain.AppSettings) any { return &s.RateLimit.RequestsPerSecond }},
	{key: "ratelimit.batch_size", field: func(s *domain.AppSettings) any { return &s.RateLimit.BatchSize }},
	{key: "ratelimit.concurrency", field: func(s *domain.AppSettings) any { return &s.RateLimit.Concurrency }},
	{key: "chunker.size", field: func(s *domain.AppSettings) any { return &s.Chunker.Size }},
	{key: "chunker.overlap", field: func(s *domain.AppSettings) any { return &s.Chunker.Overlap }},
	{key: "store.backend", field: func(s *domain.AppSettings) any { return &s.Store.Backend }},
	{key: "store.dir", field: func(s *domain.AppSettings) any { return &s.Store.Dir }},
	{key: "store.compression", field: func(s *domain.AppSettings) any { return &s.Store.Compression }},
	{key: "store.search_workers", field: func(s *domain.AppSettings) any { return &s.Store.SearchWorkers }},
	{key: "snapshot.endpoint", field: func(s *domain.AppSettings) any { return &s.Snapshot.Endpoint }},
	{key: "snapshot.bucket", field: func(s *domain.AppSettings) any { return &s.Snapshot.Bucket }},
	{key: "snapshot.prefix", field: func(s *domain.AppSettings) any { return &s.Snapshot.Prefix }},
	{key: "snapshot.access_key", secret: true, field: func(s *domain.AppSettings) any { return &s.Snapshot.AccessKey }},
	{key: "snapshot.secret_key", secret: true, field: func(s *domain.AppSettings) any { return &s.Snapshot.SecretKey }},
	{key: "snapshot.use_ssl", field: func(s *domain.AppSettings) any { return &s.Snapshot.UseSSL }},
	{key: "answer.top_k", field: func(s *domain.AppSettings) any { return &s.Answer.TopK }},
	{key: "answer.threshold", field: func(s *domain.AppSettings) any { return &s.Answer.Threshold }},
	{key: "answer.excerpt_length", field: func(s *domain.AppSettings) any { return &s.Answer.ExcerptLength }},
	{key: "server.addr", field: func(s *domain.AppSettings) any { return &s.Server.Addr }},
	{key: "server.max_upload_bytes", field: func(s *domain.AppSettings) any { return &s.Server.MaxUploadBytes }},
}

// Environment variables consulted when an API key is not configured, in order.
var (
	openAIKeyEnv    = []string{"RAGSTORE_OPENAI_API_KEY", "OPENAI_API_KEY"}
	anthropicKeyEnv = []string{"RAGSTORE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"}
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Keys returns every settable key in display order.
func Keys() []string {
	keys := make([]string, len(settingFields))
	for i, f := range settingFields {
		keys[i] = f.key
	}
	return keys
}

// IsSecretKey reports whether key holds a credential that should be masked.
func IsSecretKey(key string) bool {
	for _, f := range settingFields {
		if f.key == key {
			return f.secret
		}
	}
	return false
}

// Get retrieves current application settings.
// Unset or invalid values fall back to the defaults, and empty API keys are
// filled from the environment.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()
	for _, f := range settingFields {
		if raw, ok := s.configStore.Get(f.key); ok {
			readSetting(raw, f.field(&settings))
		}
	}
	s.applyEnvKeys(&settings)
	return &settings, nil
}

// Save persists application settings.
// Empty credentials are not written so they never erase a stored key.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	for _, f := range settingFields {
		value := fieldValue(f.field(settings))
		if f.secret && value == "" {
			continue
		}
		if err := s.configStore.Set(f.key, value); err != nil {
			return fmt.Errorf("save %s: %w", f.key, err)
		}
	}
	return nil
}

// Set parses and stores a single key given as text.
func (s *SettingsService) Set(key, value string) error {
	idx := slices.IndexFunc(settingFields, func(f settingField) bool { return f.key == key })
	if idx < 0 {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	f := settingFields[idx]

	settings := domain.DefaultAppSettings()
	ptr := f.field(&settings)
	if err := parseInto(ptr, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := s.configStore.Set(key, fieldValue(ptr)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	// Only Ollama needs a base URL; cloud providers use their default endpoint.
	switch {
	case provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "":
		settings.Embedding.BaseURL = defaultOllamaURL
	case provider != domain.AIProviderOllama:
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey
	// A new model brings its own width.
	settings.Embedding.Dimensions = 0

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %s does not support text generation", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	switch {
	case provider.IsLocal() && settings.LLM.BaseURL == "":
		settings.LLM.BaseURL = defaultOllamaURL
	case !provider.IsLocal():
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the current settings can build a working store.
// An unconfigured LLM is allowed; only answering needs it.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider is not configured; run 'ragstore settings set embedding.provider <%s>'",
			providerNames(domain.AllEmbeddingProviders()))
	}
	if settings.Chunker.Size <= 0 || settings.Chunker.Overlap < 0 || settings.Chunker.Overlap >= settings.Chunker.Size {
		return fmt.Errorf("chunker.overlap (%d) must be below chunker.size (%d)",
			settings.Chunker.Overlap, settings.Chunker.Size)
	}
	if settings.Store.Backend == domain.StoreBackendMinio && !settings.Snapshot.IsConfigured() {
		return fmt.Errorf("store backend %q requires snapshot.endpoint and snapshot.bucket", settings.Store.Backend)
	}
	if settings.Answer.Threshold <= 0 {
		return fmt.Errorf("answer.threshold must be positive, got %g", settings.Answer.Threshold)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// readSetting copies a stored value into ptr. Values of the wrong type or outside an
// enumeration are ignored, leaving the default.
func readSetting(raw, ptr any) {
	switch p := ptr.(type) {
	case *string:
		if v, ok := raw.(string); ok {
			*p = v
		}
	case *int:
		if v, ok := asInt(raw); ok {
			*p = int(v)
		}
	case *int64:
		if v, ok := asInt(raw); ok {
			*p = v
		}
	case *float64:
		switch v := raw.(type) {
		case float64:
			*p = v
		case int64:
			*p = float64(v)
		case int:
			*p = float64(v)
		}
	case *bool:
		if v, ok := raw.(bool); ok {
			*p = v
		}
	case *domain.AIProvider:
		if v, ok := raw.(string); ok && domain.AIProvider(v).IsValid() {
			*p = domain.AIProvider(v)
		}
	case *domain.StoreBackend:
		if v, ok := raw.(string); ok && domain.StoreBackend(v).IsValid() {
			*p = domain.StoreBackend(v)
		}
	case *domain.Compression:
		if v, ok := raw.(string); ok && domain.Compression(v).IsValid() {
			*p = domain.Compression(v)
		}
	}
}

func asInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func (s *SettingsService) applyEnvKeys(settings *domain.AppSettings) {
	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = s.firstEnv(openAIKeyEnv)
	}
	if settings.LLM.APIKey != "" {
		return
	}
	switch settings.LLM.Provider {
	case domain.AIProviderOpenAI:
		settings.LLM.APIKey = s.firstEnv(openAIKeyEnv)
	case domain.AIProviderAnthropic:
		settings.LLM.APIKey = s.firstEnv(anthropicKeyEnv)
	}
}

func (s *SettingsService) firstEnv(names []string) string {
	for _, name := range names {
		if v := s.getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// parseInto parses text into the field behind ptr.
func parseInto(ptr any, text string) error {
	switch p := ptr.(type) {
	case *string:
		*p = text
	case *int:
		v, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("not an integer: %q", text)
		}
		*p = v
	case *int64:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return fmt.Errorf("not an integer: %q", text)
		}
		*p = v
	case *float64:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", text)
		}
		*p = v
	case *bool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return fmt.Errorf("not a boolean: %q", text)
		}
		*p = v
	case *domain.AIProvider:
		v := domain.AIProvider(text)
		if !v.IsValid() {
			return fmt.Errorf("unknown provider %q", text)
		}
		*p = v
	case *domain.StoreBackend:
		v := domain.StoreBackend(text)
		if !v.IsValid() {
			return fmt.Errorf("unknown backend %q (want local or minio)", text)
		}
		*p = v
	case *domain.Compression:
		v := domain.Compression(text)
		if !v.IsValid() {
			return fmt.Errorf("unknown compression %q (want none, lz4 or zstd)", text)
		}
		*p = v
	default:
		return fmt.Errorf("unsupported setting type %T", ptr)
	}
	return nil
}

// fieldValue returns the TOML-friendly value behind ptr.
func fieldValue(ptr any) any {
	switch p := ptr.(type) {
	case *string:
		return *p
	case *int:
		return *p
	case *int64:
		return *p
	case *float64:
		return *p
	case *bool:
		return *p
	case *domain.AIProvider:
		return p.String()
	case *domain.StoreBackend:
		return string(*p)
	case *domain.Compression:
		return string(*p)
	default:
		return nil
	}
}

func providerNames(providers []domain.AIProvider) string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.String()
	}
	return strings.Join(names, "|")
}
