// Package flat provides an exact, brute-force vector index.
//
// Vectors are kept in one contiguous row-major float32 slice and compared
// by squared Euclidean distance. Every search scans every vector, so
// results are exact and deterministic: ascending distance, ties broken by
// ascending position. Large indexes are scanned in parallel shards whose
// partial results are merged into the same ranking a single scan produces.
//
// The index is append-only. Positions are assigned in insertion order and
// are never reused, which keeps them aligned with the metadata store.
package flat
