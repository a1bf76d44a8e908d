package mrlgo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mrlgo"
	"github.com/hupe1980/mrlgo/blobstore"
	"github.com/hupe1980/mrlgo/corpus"
	"github.com/hupe1980/mrlgo/testutil"
)

func TestNew(t *testing.T) {
	t.Run("nil provider is rejected", func(t *testing.T) {
		_, err := mrlgo.New(nil)
		require.Error(t, err)
	})

	t.Run("empty index", func(t *testing.T) {
		ix, err := mrlgo.New(testutil.NewFakeProvider(16))
		require.NoError(t, err)

		assert.Equal(t, 0, ix.Len())
		assert.Equal(t, 16, ix.Dimension())
	})
}

func TestIndexCRUD(t *testing.T) {
	ctx := context.Background()

	ix, err := mrlgo.New(testutil.NewFakeProvider(16))
	require.NoError(t, err)

	t.Run("upsert and get", func(t *testing.T) {
		require.NoError(t, ix.Upsert(ctx, "a", "alpha content"))

		entry, err := ix.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "alpha content", entry.Text)
		assert.Equal(t, corpus.Hash("alpha content"), entry.Hash)
		assert.Len(t, entry.Vector, 16)
	})

	t.Run("get missing key", func(t *testing.T) {
		_, err := ix.Get("nope")
		assert.ErrorIs(t, err, mrlgo.ErrNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, ix.Upsert(ctx, "b", "beta content"))
		require.NoError(t, ix.Remove(ctx, "b"))

		_, err := ix.Get("b")
		assert.ErrorIs(t, err, mrlgo.ErrNotFound)
	})

	t.Run("upsert vector with wrong dimension", func(t *testing.T) {
		err := ix.UpsertVector(ctx, "c", "gamma", []float32{1, 2, 3})

		var dm *mrlgo.ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 16, dm.Expected)
		assert.Equal(t, 3, dm.Actual)
	})
}

func TestIndexSearch(t *testing.T) {
	ctx := context.Background()

	ix, err := mrlgo.New(testutil.NewFakeProvider(64))
	require.NoError(t, err)

	texts := []string{
		"rotating api credentials safely",
		"tuning garbage collector latency",
		"declarative infrastructure pipelines",
	}
	for i, text := range texts {
		require.NoError(t, ix.Upsert(ctx, fmt.Sprintf("doc-%d", i), text))
	}

	t.Run("identical text is the top hit", func(t *testing.T) {
		results, err := ix.Search(ctx, texts[1], 1)
		require.NoError(t, err)
		require.Len(t, results, 1)

		assert.Equal(t, "doc-1", results[0].Key)
		assert.InDelta(t, 1.0, results[0].Score, 1e-5)
	})

	t.Run("invalid k", func(t *testing.T) {
		_, err := ix.Search(ctx, "anything", 0)
		assert.ErrorIs(t, err, mrlgo.ErrInvalidK)
	})

	t.Run("k larger than index", func(t *testing.T) {
		results, err := ix.Search(ctx, texts[0], 10)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("empty index yields no results", func(t *testing.T) {
		empty, err := mrlgo.New(testutil.NewFakeProvider(64))
		require.NoError(t, err)

		results, err := empty.Search(ctx, "anything", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestIndexBuild(t *testing.T) {
	ctx := context.Background()

	items := make(corpus.Slice, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, corpus.Item{
			Key:  fmt.Sprintf("doc-%d", i),
			Text: fmt.Sprintf("document number %d", i),
		})
	}

	ix, err := mrlgo.New(testutil.NewFakeProvider(32))
	require.NoError(t, err)

	stats, err := ix.Build(ctx, items)
	require.NoError(t, err)

	assert.Equal(t, 10, stats.Indexed)
	assert.Equal(t, 10, ix.Len())

	results, err := ix.Search(ctx, "document number 7", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-7", results[0].Key)

	t.Run("rebuild skips unchanged content", func(t *testing.T) {
		stats, err := ix.Build(ctx, items)
		require.NoError(t, err)

		assert.Equal(t, 0, stats.Indexed)
		assert.Equal(t, 10, stats.Unchanged)
	})
}

func TestIndexPersistence(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()

	t.Run("save without blob store", func(t *testing.T) {
		ix, err := mrlgo.New(testutil.NewFakeProvider(16))
		require.NoError(t, err)

		assert.ErrorIs(t, ix.Save(ctx), mrlgo.ErrNoBlobStore)
		assert.ErrorIs(t, ix.Load(ctx), mrlgo.ErrNoBlobStore)
	})

	t.Run("open without snapshot starts empty", func(t *testing.T) {
		ix, err := mrlgo.Open(ctx, testutil.NewFakeProvider(16), mrlgo.WithBlobStore(blobs))
		require.NoError(t, err)
		assert.Equal(t, 0, ix.Len())
	})

	t.Run("save and reopen round trip", func(t *testing.T) {
		provider := testutil.NewFakeProvider(16)

		ix, err := mrlgo.New(provider, mrlgo.WithBlobStore(blobs))
		require.NoError(t, err)

		require.NoError(t, ix.Upsert(ctx, "a", "persisted content"))
		require.NoError(t, ix.Upsert(ctx, "b", "more persisted content"))
		require.NoError(t, ix.Save(ctx))

		reopened, err := mrlgo.Open(ctx, provider, mrlgo.WithBlobStore(blobs))
		require.NoError(t, err)
		assert.Equal(t, 2, reopened.Len())

		entry, err := reopened.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "persisted content", entry.Text)

		results, err := reopened.Search(ctx, "persisted content", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "a", results[0].Key)
	})

	t.Run("dimension mismatch on open", func(t *testing.T) {
		_, err := mrlgo.Open(ctx, testutil.NewFakeProvider(32), mrlgo.WithBlobStore(blobs))
		require.Error(t, err)
	})
}

func TestIndexClose(t *testing.T) {
	ctx := context.Background()

	ix, err := mrlgo.New(testutil.NewFakeProvider(16))
	require.NoError(t, err)

	require.NoError(t, ix.Upsert(ctx, "a", "alpha"))
	require.NoError(t, ix.Close())

	assert.ErrorIs(t, ix.Upsert(ctx, "b", "beta"), mrlgo.ErrClosed)

	_, err = ix.Search(ctx, "alpha", 1)
	assert.ErrorIs(t, err, mrlgo.ErrClosed)

	_, err = ix.Get("a")
	assert.ErrorIs(t, err, mrlgo.ErrClosed)

	// Idempotent.
	require.NoError(t, ix.Close())
}
