package ai

import (
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

// Cache owns the AI services created for the running process.
// Services are keyed by provider, model and endpoint, so repeated lookups
// with the same settings share one client. Close releases all of them.
type Cache struct {
	mu         sync.Mutex
	embeddings map[string]driven.EmbeddingService
	llms       map[string]driven.LLMService
	closed     bool

	newEmbedding func(*domain.EmbeddingSettings) (driven.EmbeddingService, error)
	newLLM       func(*domain.LLMSettings) (driven.LLMService, error)
}

// NewCache creates an empty cache backed by the provider factories.
func NewCache() *Cache {
	return &Cache{
		embeddings:   make(map[string]driven.EmbeddingService),
		llms:         make(map[string]driven.LLMService),
		newEmbedding: CreateEmbeddingService,
		newLLM:       CreateLLMService,
	}
}

// ErrCacheClosed is returned by lookups after Close.
var ErrCacheClosed = errors.New("ai cache closed")

// GetOrCreateEmbedding returns the cached embedding service for settings,
// creating it on first use. Unconfigured settings return nil without error.
func (c *Cache) GetOrCreateEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	key := fmt.Sprintf("%s/%s@%s#%d", settings.Provider, settings.Model, settings.BaseURL, settings.Dimensions)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrCacheClosed
	}
	if svc, ok := c.embeddings[key]; ok {
		return svc, nil
	}

	svc, err := c.newEmbedding(settings)
	if err != nil {
		return nil, err
	}
	if svc != nil {
		c.embeddings[key] = svc
	}
	return svc, nil
}

// GetOrCreateLLM returns the cached LLM service for settings,
// creating it on first use. Unconfigured settings return nil without error.
func (c *Cache) GetOrCreateLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	key := fmt.Sprintf("%s/%s@%s", settings.Provider, settings.Model, settings.BaseURL)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrCacheClosed
	}
	if svc, ok := c.llms[key]; ok {
		return svc, nil
	}

	svc, err := c.newLLM(settings)
	if err != nil {
		return nil, err
	}
	if svc != nil {
		c.llms[key] = svc
	}
	return svc, nil
}

// Close closes every cached service. Later lookups fail with ErrCacheClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	for key, svc := range c.embeddings {
		if err := svc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close embedding %s: %w", key, err))
		}
	}
	for key, svc := range c.llms {
		if err := svc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close llm %s: %w", key, err))
		}
	}
	clear(c.embeddings)
	clear(c.llms)
	return errors.Join(errs...)
}
