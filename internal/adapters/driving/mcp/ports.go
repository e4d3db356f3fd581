package mcp

import (
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides nearest-chunk search.
	Search driving.SearchService

	// Answer answers questions from retrieved context.
	Answer driving.AnswerService

	// Document exposes indexed documents and chunks.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Answer and Document are optional; their tools and resources are skipped.
	return nil
}
