// Package tui provides an interactive terminal user interface for ragstore.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search runs nearest-neighbour queries. Required.
	Search driving.SearchService

	// Answer composes answers from retrieved chunks. Optional; without it
	// the TUI only searches.
	Answer driving.AnswerService

	// Document lists indexed documents and their chunks. Optional.
	Document driving.DocumentService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	search driving.SearchService,
	answer driving.AnswerService,
	document driving.DocumentService,
) *Ports {
	return &Ports{
		Search:   search,
		Answer:   answer,
		Document: document,
	}
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
