// Package domain defines the core business entities for ragstore.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A loaded input artifact (one file) awaiting chunking
//   - Chunk: A bounded window of a document's text with a derived identity
//   - MetadataRecord: Provenance stored positionally alongside each vector
//   - SearchResult: A vector hit joined with its metadata record
//   - Answer: A composed answer with the sources that backed it
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
