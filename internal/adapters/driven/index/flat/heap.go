package flat

import (
	"container/heap"

	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

// worse reports whether a ranks after b: larger distance, or equal distance and larger position.
func worse(a, b driven.VectorHit) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Position > b.Position
}

// hitHeap is a max-heap holding the best k hits seen so far.
// The root is the worst retained hit.
type hitHeap []driven.VectorHit

var _ heap.Interface = (*hitHeap)(nil)

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(x any) {
	*h = append(*h, x.(driven.VectorHit))
}

func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// offer adds hit if it ranks among the best k.
func (h *hitHeap) offer(hit driven.VectorHit, k int) {
	if h.Len() < k {
		heap.Push(h, hit)
		return
	}
	if worse((*h)[0], hit) {
		(*h)[0] = hit
		heap.Fix(h, 0)
	}
}

// sorted drains the heap into a slice ordered best first.
func (h *hitHeap) sorted() []driven.VectorHit {
	out := make([]driven.VectorHit, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(driven.VectorHit)
	}
	return out
}
