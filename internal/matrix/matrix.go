// Package matrix implements the generation-gated dense matrix cache backing
// the funnel search engine.
//
// The cache re-materializes the entry store's vectors into one contiguous
// N×D float32 block plus a parallel key list. It is a pure derived view:
// discarding it never loses data, only the amortization benefit. Validity is
// decided solely by comparing the generation it was built against with the
// store's current generation.
package matrix

import (
	"sync"
	"sync/atomic"

	"github.com/hupe1980/mrlgo/distance"
	"github.com/hupe1980/mrlgo/store"
)

// State is an immutable rebuild of the cache. Readers obtained a *State from
// EnsureFresh and may use it without locking; keys, texts and matrix always
// belong to the same generation.
type State struct {
	generation uint64
	dim        int
	keys       []string
	texts      []string
	matrix     []float32 // row-major N×dim

	// Truncated per-row norms, memoized per requested truncation length.
	normsMu sync.Mutex
	norms   map[int][]float32
}

// Generation returns the store generation this state was built against.
func (st *State) Generation() uint64 { return st.generation }

// Len returns the number of rows.
func (st *State) Len() int { return len(st.keys) }

// Dim returns the row dimensionality.
func (st *State) Dim() int { return st.dim }

// Key returns the key of row i.
func (st *State) Key(i int) string { return st.keys[i] }

// Text returns the display snippet of row i.
func (st *State) Text(i int) string { return st.texts[i] }

// Row returns row i of the matrix. Callers must treat it as read-only.
func (st *State) Row(i int) []float32 {
	return st.matrix[i*st.dim : (i+1)*st.dim]
}

// TruncatedNorms returns the per-row L2 norms at truncation length d,
// computing and memoizing them on first use for this state.
func (st *State) TruncatedNorms(d int) []float32 {
	if d > st.dim {
		d = st.dim
	}

	st.normsMu.Lock()
	defer st.normsMu.Unlock()

	if norms, ok := st.norms[d]; ok {
		return norms
	}
	norms := make([]float32, st.Len())
	for i := range norms {
		norms[i] = distance.TruncatedNorm(st.Row(i), d)
	}
	if st.norms == nil {
		st.norms = make(map[int][]float32)
	}
	st.norms[d] = norms
	return norms
}

// Cache holds the current state behind an atomic pointer so fresh-cache reads
// are lock-free. Rebuilds serialize on a mutex and swap the pointer once the
// new state is complete.
type Cache struct {
	rebuildMu sync.Mutex
	state     atomic.Pointer[State]
}

// NewCache creates an empty cache. The first EnsureFresh performs the
// initial build.
func NewCache() *Cache {
	return &Cache{}
}

// EnsureFresh returns a state whose generation matches the store's current
// generation, rebuilding if necessary. The common case (fresh cache) is a
// single atomic load and one generation comparison.
func (c *Cache) EnsureFresh(s *store.Store) *State {
	if st := c.state.Load(); st != nil && st.generation == s.Generation() {
		return st
	}

	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	// Another rebuild may have completed while we waited for the lock.
	if st := c.state.Load(); st != nil && st.generation == s.Generation() {
		return st
	}

	entries, generation := s.SnapshotWithGeneration()

	dim := s.Dimension()
	st := &State{
		generation: generation,
		dim:        dim,
		keys:       make([]string, len(entries)),
		texts:      make([]string, len(entries)),
		matrix:     make([]float32, len(entries)*dim),
	}
	for i := range entries {
		st.keys[i] = entries[i].Key
		st.texts[i] = entries[i].Text
		copy(st.matrix[i*dim:(i+1)*dim], entries[i].Vector)
	}

	c.state.Store(st)
	return st
}

// Invalidate drops the current state. The next EnsureFresh rebuilds.
func (c *Cache) Invalidate() {
	c.state.Store(nil)
}
