package flat

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	// DefaultWorkers is the number of shards scanned concurrently.
	DefaultWorkers = 4

	// DefaultShardSize is the minimum number of vectors per shard.
	// Indexes smaller than this are scanned sequentially.
	DefaultShardSize = 4096
)

// Index is an exact squared-L2 vector index.
// It is safe for concurrent use: searches share a read lock, adds take the write lock.
type Index struct {
	mu        sync.RWMutex
	dimension int
	count     int
	data      []float32

	workers   int
	shardSize int
}

// Option configures an Index.
type Option func(*Index)

// WithWorkers sets the maximum number of shards scanned in parallel.
func WithWorkers(n int) Option {
	return func(idx *Index) {
		if n > 0 {
			idx.workers = n
		}
	}
}

// WithShardSize sets the minimum number of vectors per parallel shard.
func WithShardSize(n int) Option {
	return func(idx *Index) {
		if n > 0 {
			idx.shardSize = n
		}
	}
}

// New creates an empty index. The dimension is fixed by the first non-empty Add.
func New(opts ...Option) *Index {
	idx := &Index{
		workers:   DefaultWorkers,
		shardSize: DefaultShardSize,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Add appends vectors in order. The whole batch is validated before any
// vector is stored, so a failed call leaves the index unchanged.
func (idx *Index) Add(vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	dim := idx.dimension
	if dim == 0 {
		dim = len(vectors[0])
		if dim == 0 {
			return fmt.Errorf("add vectors: %w: zero-width vector", domain.ErrInvalidInput)
		}
	}
	for _, v := range vectors {
		if len(v) != dim {
			return &domain.DimensionMismatchError{Expected: dim, Actual: len(v)}
		}
	}

	idx.dimension = dim
	idx.data = growFloats(idx.data, len(vectors)*dim)
	for _, v := range vectors {
		idx.data = append(idx.data, v...)
	}
	idx.count += len(vectors)
	return nil
}

// Search returns the min(k, Count) nearest vectors to query.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.count == 0 || k <= 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != idx.dimension {
		return nil, &domain.DimensionMismatchError{Expected: idx.dimension, Actual: len(query)}
	}
	if k > idx.count {
		k = idx.count
	}

	shards := idx.shardCount()
	if shards <= 1 {
		return idx.scan(query, k, 0, idx.count).sorted(), nil
	}

	partials := make([]*hitHeap, shards)
	per := (idx.count + shards - 1) / shards

	g, gctx := errgroup.WithContext(ctx)
	for s := 0; s < shards; s++ {
		start := s * per
		end := min(start+per, idx.count)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partials[s] = idx.scan(query, k, start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &hitHeap{}
	for _, p := range partials {
		for _, hit := range *p {
			merged.offer(hit, k)
		}
	}
	return merged.sorted(), nil
}

// Count returns the number of stored vectors.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.count
}

// Dimension returns the fixed vector width, or 0 before the first add.
func (idx *Index) Dimension() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dimension
}

// Vectors returns a copy of every stored vector in position order.
func (idx *Index) Vectors() [][]float32 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([][]float32, idx.count)
	for i := range out {
		row := make([]float32, idx.dimension)
		copy(row, idx.row(i))
		out[i] = row
	}
	return out
}

// Restore replaces the index contents with vectors of width dim.
func (idx *Index) Restore(dim int, vectors [][]float32) error {
	if dim < 0 || (len(vectors) > 0 && dim == 0) {
		return fmt.Errorf("restore index: %w: dimension %d", domain.ErrInvalidInput, dim)
	}
	data := make([]float32, 0, len(vectors)*dim)
	for _, v := range vectors {
		if len(v) != dim {
			return &domain.DimensionMismatchError{Expected: dim, Actual: len(v)}
		}
		data = append(data, v...)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.dimension = dim
	idx.data = data
	idx.count = len(vectors)
	return nil
}

// shardCount returns how many shards a search should use. Caller holds the read lock.
func (idx *Index) shardCount() int {
	if idx.workers <= 1 || idx.count < 2*idx.shardSize {
		return 1
	}
	return min(idx.workers, idx.count/idx.shardSize)
}

// scan ranks positions [start, end) and keeps the best k. Caller holds the read lock.
func (idx *Index) scan(query []float32, k, start, end int) *hitHeap {
	h := make(hitHeap, 0, k)
	for pos := start; pos < end; pos++ {
		h.offer(driven.VectorHit{Position: pos, Distance: squaredL2(query, idx.row(pos))}, k)
	}
	return &h
}

func (idx *Index) row(pos int) []float32 {
	off := pos * idx.dimension
	return idx.data[off : off+idx.dimension]
}

// squaredL2 returns the squared Euclidean distance between equal-length vectors.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func growFloats(s []float32, n int) []float32 {
	if cap(s)-len(s) >= n {
		return s
	}
	grown := make([]float32, len(s), len(s)+n+len(s)/2)
	copy(grown, s)
	return grown
}
