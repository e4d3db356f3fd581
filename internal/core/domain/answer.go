package domain

// Answer is a composed response to a question.
type Answer struct {
	// Text is the language model's answer.
	Text string `json:"response"`

	// Sources lists the documents that backed the answer, one entry per source.
	// Empty when UsedFallback is true.
	Sources []AnswerSource `json:"sources"`

	// UsedFallback is true when no retrieved chunk was relevant and the
	// answer came from general model knowledge.
	UsedFallback bool `json:"used_fallback"`
}

// AnswerSource summarises the chunks of one source used as context.
type AnswerSource struct {
	Source     string  `json:"source"`
	Excerpt    string  `json:"excerpt"`
	Distance   float32 `json:"distance"`
	ChunkCount int     `json:"chunk_count"`
}
