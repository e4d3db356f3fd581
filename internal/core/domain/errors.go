package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyInput indicates there was nothing to chunk or embed.
	// Callers that batch work treat it as a zero-count result.
	ErrEmptyInput = errors.New("empty input")

	// ErrUnsupportedType indicates a file type no normaliser handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrDimensionMismatch indicates an embedding width differs from the fixed index width.
	// Returned errors are *DimensionMismatchError values matching this sentinel.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrCountMismatch indicates a batch pairs N vectors with M != N metadata records.
	// Returned errors are *CountMismatchError values matching this sentinel.
	ErrCountMismatch = errors.New("count mismatch")

	// ErrPersistence indicates the persisted state could not be read or written.
	ErrPersistence = errors.New("persistence error")

	// ErrProvider indicates an embedding or completion provider call failed.
	ErrProvider = errors.New("provider error")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answers cannot be composed without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and semantic search are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// DimensionMismatchError reports a vector whose width differs from the index width.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// CountMismatchError reports a batch whose vector and record counts differ.
type CountMismatchError struct {
	Vectors int
	Records int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("count mismatch: %d vectors for %d records", e.Vectors, e.Records)
}

// Is reports whether target is ErrCountMismatch.
func (e *CountMismatchError) Is(target error) bool {
	return target == ErrCountMismatch
}
