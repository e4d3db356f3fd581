package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAnswerContext answers a question from retrieved context.
	// The template expects {context} and {query} placeholders.
	PromptAnswerContext = "answer_context"

	// PromptAnswerFallback answers a question when no context is relevant.
	// The template expects a {query} placeholder.
	PromptAnswerFallback = "answer_fallback"
)
