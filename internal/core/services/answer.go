package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
	"github.com/custodia-labs/ragstore/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

const excerptSuffix = "..."

// AnswerService answers questions from retrieved context, falling back to the
// model's own knowledge when nothing relevant is indexed.
type AnswerService struct {
	retriever driving.Retriever
	llm       driven.LLMService
	prompts   driven.PromptStore
	settings  domain.AnswerSettings
	generate  driven.GenerateOptions
}

// NewAnswerService creates an answer service.
// Zero-valued settings fall back to the defaults.
func NewAnswerService(
	retriever driving.Retriever,
	llm driven.LLMService,
	prompts driven.PromptStore,
	settings domain.AnswerSettings,
	opts driven.GenerateOptions,
) *AnswerService {
	defaults := domain.DefaultAppSettings().Answer
	if settings.TopK <= 0 {
		settings.TopK = defaults.TopK
	}
	if settings.Threshold <= 0 {
		settings.Threshold = defaults.Threshold
	}
	if settings.ExcerptLength <= 0 {
		settings.ExcerptLength = defaults.ExcerptLength
	}
	return &AnswerService{
		retriever: retriever,
		llm:       llm,
		prompts:   prompts,
		settings:  settings,
		generate:  opts,
	}
}

// Answer retrieves context for query and asks the LLM.
func (s *AnswerService) Answer(ctx context.Context, query string) (*domain.Answer, error) {
	logger.Section("Answer")
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("question: %w", domain.ErrEmptyInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	chunks, err := s.retriever.Retrieve(ctx, query, s.settings.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	relevant := s.relevant(query, chunks)
	logger.Debug("%d of %d retrieved chunks are relevant", len(relevant), len(chunks))

	if len(relevant) == 0 {
		return s.fallback(ctx, query)
	}

	tmpl, err := s.prompts.Load(driven.PromptAnswerContext)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	prompt := render(tmpl, query, buildContext(relevant))

	text, err := s.llm.Generate(ctx, prompt, s.generate)
	if err != nil {
		return nil, fmt.Errorf("%w: generate answer: %w", domain.ErrProvider, err)
	}

	return &domain.Answer{
		Text:    strings.TrimSpace(text),
		Sources: s.sources(relevant),
	}, nil
}

func (s *AnswerService) fallback(ctx context.Context, query string) (*domain.Answer, error) {
	logger.Info("No relevant context, answering from model knowledge")

	tmpl, err := s.prompts.Load(driven.PromptAnswerFallback)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	text, err := s.llm.Generate(ctx, render(tmpl, query, ""), s.generate)
	if err != nil {
		return nil, fmt.Errorf("%w: generate fallback answer: %w", domain.ErrProvider, err)
	}
	return &domain.Answer{
		Text:         strings.TrimSpace(text),
		Sources:      []domain.AnswerSource{},
		UsedFallback: true,
	}, nil
}

// relevant keeps chunks under the distance threshold that share a keyword with
// the query. Matching is a plain lower-cased substring test.
func (s *AnswerService) relevant(query string, chunks []domain.RetrievedChunk) []domain.RetrievedChunk {
	keywords := strings.Fields(strings.ToLower(query))
	out := make([]domain.RetrievedChunk, 0, len(chunks))
	for _, c := range chunks {
		if float64(c.Distance) >= s.settings.Threshold {
			continue
		}
		text := strings.ToLower(c.Text)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// sources groups chunks by source path, keeping the first-seen order.
// The excerpt comes from the nearest chunk of each source.
func (s *AnswerService) sources(chunks []domain.RetrievedChunk) []domain.AnswerSource {
	out := make([]domain.AnswerSource, 0, len(chunks))
	seen := make(map[string]int, len(chunks))
	for _, c := range chunks {
		if i, ok := seen[c.Source]; ok {
			src := &out[i]
			src.ChunkCount++
			if c.Distance < src.Distance {
				src.Distance = c.Distance
				src.Excerpt = excerpt(c.Text, s.settings.ExcerptLength)
			}
			continue
		}
		seen[c.Source] = len(out)
		out = append(out, domain.AnswerSource{
			Source:     c.Source,
			Excerpt:    excerpt(c.Text, s.settings.ExcerptLength),
			Distance:   c.Distance,
			ChunkCount: 1,
		})
	}
	return out
}

func buildContext(chunks []domain.RetrievedChunk) string {
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		blocks[i] = fmt.Sprintf("[Source: %s]\n%s", c.Source, c.Text)
	}
	return strings.Join(blocks, "\n\n")
}

func render(tmpl, query, contextText string) string {
	return strings.NewReplacer("{query}", query, "{context}", contextText).Replace(tmpl)
}

func excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + excerptSuffix
}
