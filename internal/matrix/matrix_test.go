package matrix

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mrlgo/store"
)

func newStore(t *testing.T, vectors map[string][]float32) *store.Store {
	t.Helper()
	s := store.New(0)
	for key, v := range vectors {
		require.NoError(t, s.Upsert(store.Entry{Key: key, Vector: v}))
	}
	return s
}

func TestEnsureFresh(t *testing.T) {
	t.Run("FreshCacheIsReused", func(t *testing.T) {
		s := store.New(2)
		require.NoError(t, s.Upsert(store.Entry{Key: "a", Vector: []float32{1, 0}}))

		c := NewCache()
		st1 := c.EnsureFresh(s)
		st2 := c.EnsureFresh(s)
		assert.Same(t, st1, st2)
	})

	t.Run("MutationInvalidates", func(t *testing.T) {
		s := store.New(2)
		require.NoError(t, s.Upsert(store.Entry{Key: "a", Vector: []float32{1, 0}}))

		c := NewCache()
		st1 := c.EnsureFresh(s)

		require.NoError(t, s.Upsert(store.Entry{Key: "b", Vector: []float32{0, 1}}))
		st2 := c.EnsureFresh(s)

		assert.NotSame(t, st1, st2)
		assert.Equal(t, 2, st2.Len())
		assert.Equal(t, s.Generation(), st2.Generation())
	})

	t.Run("BatchOfWritesCostsOneRebuild", func(t *testing.T) {
		s := store.New(2)
		c := NewCache()

		for i := range 100 {
			require.NoError(t, s.Upsert(store.Entry{
				Key:    fmt.Sprintf("k%d", i),
				Vector: []float32{float32(i), 1},
			}))
		}

		st1 := c.EnsureFresh(s)
		st2 := c.EnsureFresh(s)
		assert.Same(t, st1, st2)
		assert.Equal(t, 100, st1.Len())
	})

	t.Run("RowsMatchStoreEntries", func(t *testing.T) {
		s := store.New(0)
		keys := []string{"a", "b", "c", "d"}
		for i, k := range keys {
			require.NoError(t, s.Upsert(store.Entry{
				Key:    k,
				Vector: []float32{float32(i), float32(i * i), 7},
			}))
		}
		// Mix in updates and a removal.
		require.NoError(t, s.Upsert(store.Entry{Key: "b", Vector: []float32{9, 9, 9}}))
		s.Remove("c")

		st := NewCache().EnsureFresh(s)
		require.Equal(t, s.Len(), st.Len())
		for i := range st.Len() {
			e, err := s.Get(st.Key(i))
			require.NoError(t, err)
			assert.Equal(t, e.Vector, st.Row(i), "row %d (%s)", i, st.Key(i))
		}
	})

	t.Run("EmptyStore", func(t *testing.T) {
		s := store.New(0)
		st := NewCache().EnsureFresh(s)
		assert.Equal(t, 0, st.Len())
	})
}

func TestTruncatedNorms(t *testing.T) {
	s := newStore(t, map[string][]float32{
		"a": {3, 4, 100, 100},
	})
	st := NewCache().EnsureFresh(s)

	norms := st.TruncatedNorms(2)
	require.Len(t, norms, 1)
	assert.InDelta(t, 5.0, norms[0], 1e-5)

	// Memoized per state.
	again := st.TruncatedNorms(2)
	assert.Same(t, &norms[0], &again[0])

	// Oversized d clamps to the full dimension.
	full := st.TruncatedNorms(99)
	clamped := st.TruncatedNorms(4)
	assert.Same(t, &clamped[0], &full[0])
}

func TestInvalidate(t *testing.T) {
	s := store.New(2)
	require.NoError(t, s.Upsert(store.Entry{Key: "a", Vector: []float32{1, 0}}))

	c := NewCache()
	st1 := c.EnsureFresh(s)
	c.Invalidate()
	st2 := c.EnsureFresh(s)

	assert.NotSame(t, st1, st2)
	assert.Equal(t, st1.Generation(), st2.Generation())
}
