package persistence

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mrlgo/blobstore"
	"github.com/hupe1980/mrlgo/store"
)

func newManager(t *testing.T) (*Manager, *blobstore.MemoryStore) {
	t.Helper()
	blobs := blobstore.NewMemoryStore()
	m, err := NewManager(blobs, "index.mrl")
	require.NoError(t, err)
	return m, blobs
}

func populated(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(0)
	require.NoError(t, s.Upsert(store.Entry{Key: "a", Text: "alpha", Vector: []float32{1, 0, 0}, Hash: "h1"}))
	require.NoError(t, s.Upsert(store.Entry{Key: "b", Text: "beta", Vector: []float32{0, 1, 0}, Hash: "h2"}))
	require.NoError(t, s.Upsert(store.Entry{Key: "c", Text: "gamma", Vector: []float32{0, 0, 1}, Hash: "h3"}))
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	s := populated(t)

	require.NoError(t, m.Save(ctx, s))

	entries, dim, err := m.Load(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, dim)
	require.Len(t, entries, 3)

	byKey := map[string]store.Entry{}
	for _, e := range entries {
		byKey[e.Key] = e
	}
	for _, orig := range s.Snapshot() {
		loaded, ok := byKey[orig.Key]
		require.True(t, ok, "missing key %s", orig.Key)
		assert.Equal(t, orig.Text, loaded.Text)
		assert.Equal(t, orig.Vector, loaded.Vector)
		assert.Equal(t, orig.Hash, loaded.Hash)
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	m, _ := newManager(t)
	_, _, err := m.Load(context.Background(), 0)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestLoadDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	require.NoError(t, m.Save(ctx, populated(t)))

	_, _, err := m.Load(ctx, 8)
	var sm *ErrSchemaMismatch
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "dimension", sm.Field)
	assert.Equal(t, 8, sm.Expected)
	assert.Equal(t, 3, sm.Actual)
}

func TestLoadVersionMismatch(t *testing.T) {
	ctx := context.Background()
	m, blobs := newManager(t)
	require.NoError(t, m.Save(ctx, populated(t)))

	data, err := blobs.Get(ctx, "index.mrl")
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data[4:8], 99)
	require.NoError(t, blobs.Put(ctx, "index.mrl", data))

	_, _, err = m.Load(ctx, 0)
	var sm *ErrSchemaMismatch
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "schema_version", sm.Field)
}

func TestLoadInvalidMagic(t *testing.T) {
	ctx := context.Background()
	m, blobs := newManager(t)
	require.NoError(t, blobs.Put(ctx, "index.mrl", []byte("not a snapshot at all")))

	_, _, err := m.Load(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestLoadCorruptPayload(t *testing.T) {
	ctx := context.Background()
	m, blobs := newManager(t)
	require.NoError(t, m.Save(ctx, populated(t)))

	data, err := blobs.Get(ctx, "index.mrl")
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, blobs.Put(ctx, "index.mrl", data))

	_, _, err = m.Load(ctx, 0)
	var cm *ChecksumMismatchError
	assert.ErrorAs(t, err, &cm)
}

func TestSaveFailureIsIOError(t *testing.T) {
	m, err := NewManager(failingStore{}, "index.mrl")
	require.NoError(t, err)

	err = m.Save(context.Background(), populated(t))
	assert.ErrorIs(t, err, ErrIO)
}

func TestSaveEmptyStore(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	require.NoError(t, m.Save(ctx, store.New(4)))
	entries, dim, err := m.Load(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 4, dim)
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte) error { return errors.New("disk full") }
func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, blobstore.ErrNotFound
}
func (failingStore) Delete(context.Context, string) error { return nil }
func (failingStore) List(context.Context, string) ([]string, error) {
	return nil, nil
}
