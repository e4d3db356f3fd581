package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoSearchService indicates that no search service was provided.
	ErrNoSearchService = errors.New("search service is required")

	// ErrNoAnswerService indicates that questions cannot be answered.
	ErrNoAnswerService = errors.New("answer service is not configured")
)
