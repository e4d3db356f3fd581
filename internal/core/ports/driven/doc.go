// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - VectorIndex: Exact L2 vector storage and search
//   - MetadataStore: Positional chunk metadata, parallel to VectorIndex
//   - StateStore: Persistence of the index and metadata files
//   - Chunker: Splits documents into chunks
//   - EmbeddingService: Generates vector embeddings
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, only retrieval is available.
//   - Ledger: Ingestion history. Without it, runs are not recorded.
//   - PromptStore: Custom prompt templates. Without it, defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
