package driving

import (
	"context"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// AnswerService answers questions from indexed context.
type AnswerService interface {
	// Answer retrieves relevant chunks and asks the language model.
	// When no chunk is relevant, the answer falls back to general knowledge.
	Answer(ctx context.Context, query string) (*domain.Answer, error)
}
