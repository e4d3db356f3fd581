// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// AnswerCompleted carries a composed answer back to the model.
type AnswerCompleted struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the ask and search view.
	ViewSearch ViewType = iota
	// ViewDocuments lists indexed documents and their chunks.
	ViewDocuments
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewDocuments:
		return "documents"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// DocumentsLoaded carries the indexed document summaries.
type DocumentsLoaded struct {
	Documents []domain.DocumentSummary
	Err       error
}

// ChunksLoaded carries the chunks of one document.
type ChunksLoaded struct {
	DocumentID string
	Chunks     []domain.ChunkInfo
	Err        error
}

// StatusLoaded carries the vector store status.
type StatusLoaded struct {
	Status domain.StoreStatus
}
