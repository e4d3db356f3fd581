package driven

import "context"

// VectorIndex provides exact nearest neighbour search over fixed-width vectors.
// Vectors are addressed by position, assigned in insertion order.
type VectorIndex interface {
	// Add appends vectors. The first non-empty call fixes the dimension.
	// A batch containing any vector of the wrong width is rejected whole.
	Add(vectors [][]float32) error

	// Search finds the k nearest vectors to query by squared L2 distance.
	// Hits are ordered by ascending distance, ties by ascending position.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of stored vectors.
	Count() int

	// Dimension returns the fixed vector width, or 0 before the first add.
	Dimension() int

	// Vectors returns a copy of all stored vectors in position order.
	Vectors() [][]float32

	// Restore replaces the index contents.
	Restore(dim int, vectors [][]float32) error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Position is the matched vector's position in the index.
	Position int

	// Distance is the squared L2 distance to the query.
	Distance float32
}
