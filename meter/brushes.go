package meter

import "sync"

// BrushCache maps display colors to drawing resources of type B. Resources
// can only be created by the render loop, so a miss queues a creation request
// and hands back a fallback until the render loop drains the queue.
type BrushCache[B any] struct {
	brushes  map[RGB]B
	fallback B

	mu      sync.Mutex
	pending map[RGB]struct{}
}

func NewBrushCache[B any](fallback B) *BrushCache[B] {
	return &BrushCache[B]{
		brushes:  make(map[RGB]B),
		fallback: fallback,
		pending:  make(map[RGB]struct{}),
	}
}

// Get returns the brush for `c`. On a miss the fallback is returned with false.
// Get must only be called from the render loop.
func (bc *BrushCache[B]) Get(c RGB) (B, bool) {
	if b, ok := bc.brushes[c]; ok {
		return b, true
	}
	bc.Request(c)
	return bc.fallback, false
}

// Request queues `c` for creation. Safe to call from any goroutine.
func (bc *BrushCache[B]) Request(c RGB) {
	bc.mu.Lock()
	bc.pending[c] = struct{}{}
	bc.mu.Unlock()
}

// Pending returns the number of queued creation requests.
func (bc *BrushCache[B]) Pending() int {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return len(bc.pending)
}

// Drain creates every queued brush with `create` and clears the queue while
// holding the same lock Request uses. Returns how many brushes were created.
func (bc *BrushCache[B]) Drain(create func(RGB) B) int {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	created := 0
	for c := range bc.pending {
		if _, ok := bc.brushes[c]; !ok {
			bc.brushes[c] = create(c)
			created++
		}
	}
	clear(bc.pending)
	return created
}

// Release hands every created brush to `release` and empties the cache.
func (bc *BrushCache[B]) Release(release func(B)) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	for c, b := range bc.brushes {
		release(b)
		delete(bc.brushes, c)
	}
	clear(bc.pending)
}
