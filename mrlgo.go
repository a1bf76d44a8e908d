package mrlgo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/mrlgo/blobstore"
	"github.com/hupe1980/mrlgo/corpus"
	"github.com/hupe1980/mrlgo/embedding"
	"github.com/hupe1980/mrlgo/funnel"
	"github.com/hupe1980/mrlgo/indexer"
	"github.com/hupe1980/mrlgo/persistence"
	"github.com/hupe1980/mrlgo/store"
)

// ErrNoBlobStore is returned by Save and Load when the index was created
// without a blob store.
var ErrNoBlobStore = errors.New("no blob store configured")

// Entry is a single indexed item.
type Entry = store.Entry

// SearchResult is a single search hit.
type SearchResult = funnel.Result

// Index is an embedded semantic index: an entry store, a funnel search
// engine over it, and optional snapshot persistence.
//
// All methods are safe for concurrent use.
type Index struct {
	provider embedding.Provider
	store    *store.Store
	engine   *funnel.Engine
	persist  *persistence.Manager
	logger   *Logger
	opts     options
	closed   atomic.Bool
}

// New creates an empty index using the provider's dimensionality.
func New(provider embedding.Provider, optFns ...Option) (*Index, error) {
	if provider == nil {
		return nil, errors.New("nil embedding provider")
	}

	opts := applyOptions(optFns)

	s := store.New(provider.Dimension())

	engine, err := funnel.New(s, func(o *funnel.Options) {
		o.ShortlistDimension = opts.shortlistDimension
		o.ShortlistMultiplier = opts.shortlistMultiplier
	})
	if err != nil {
		return nil, err
	}

	var persist *persistence.Manager
	if opts.blobs != nil {
		persist, err = persistence.NewManager(opts.blobs, opts.snapshotName, func(o *persistence.Options) {
			o.Codec = opts.codec
		})
		if err != nil {
			return nil, err
		}
	}

	return &Index{
		provider: provider,
		store:    s,
		engine:   engine,
		persist:  persist,
		logger:   opts.logger,
		opts:     opts,
	}, nil
}

// Open creates an index and loads the existing snapshot if one exists.
// A missing snapshot is not an error; the index starts empty.
func Open(ctx context.Context, provider embedding.Provider, optFns ...Option) (*Index, error) {
	ix, err := New(provider, optFns...)
	if err != nil {
		return nil, err
	}

	if ix.persist == nil {
		return ix, nil
	}

	if err := ix.Load(ctx); err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return ix, nil
		}
		return nil, err
	}

	return ix, nil
}

// Upsert embeds text and inserts or replaces the entry for key.
func (ix *Index) Upsert(ctx context.Context, key, text string) error {
	if ix.closed.Load() {
		return ErrClosed
	}

	vectors, err := ix.provider.Embed(ctx, []string{text})
	if err != nil {
		ix.logger.LogUpsert(ctx, key, ix.store.Dimension(), err)
		return fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != 1 {
		return fmt.Errorf("embed: got %d vectors for one text", len(vectors))
	}

	return ix.UpsertVector(ctx, key, text, vectors[0])
}

// UpsertVector inserts or replaces the entry for key with a caller-supplied
// vector. The vector must match the index dimensionality.
func (ix *Index) UpsertVector(ctx context.Context, key, text string, vector []float32) error {
	if ix.closed.Load() {
		return ErrClosed
	}

	err := ix.store.Upsert(store.Entry{
		Key:    key,
		Text:   text,
		Vector: vector,
		Hash:   corpus.Hash(text),
	})

	ix.logger.LogUpsert(ctx, key, len(vector), err)
	return translateError(err)
}

// Get returns the entry for key.
func (ix *Index) Get(key string) (Entry, error) {
	if ix.closed.Load() {
		return Entry{}, ErrClosed
	}

	entry, err := ix.store.Get(key)
	return entry, translateError(err)
}

// Remove deletes the entry for key if present.
func (ix *Index) Remove(ctx context.Context, key string) error {
	if ix.closed.Load() {
		return ErrClosed
	}

	ix.store.Remove(key)
	ix.logger.LogRemove(ctx, key)
	return nil
}

// Search embeds the query text and returns the topK most similar entries,
// sorted by descending full-precision cosine similarity.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if ix.closed.Load() {
		return nil, ErrClosed
	}

	if topK <= 0 {
		return nil, ErrInvalidK
	}

	vectors, err := ix.provider.Embed(ctx, []string{query})
	if err != nil {
		ix.logger.LogSearch(ctx, topK, 0, err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors for one text", len(vectors))
	}

	return ix.SearchVector(ctx, vectors[0], topK)
}

// SearchVector returns the topK entries most similar to a caller-supplied
// query vector.
func (ix *Index) SearchVector(ctx context.Context, query []float32, topK int) ([]SearchResult, error) {
	if ix.closed.Load() {
		return nil, ErrClosed
	}

	results, err := ix.engine.Search(ctx, query, topK)

	ix.logger.LogSearch(ctx, topK, len(results), err)
	return results, translateError(err)
}

// Build indexes every new or changed item from the source. Builds use the
// index's batch, worker, retry, and save settings; optFns may override them
// per run.
func (ix *Index) Build(ctx context.Context, src corpus.Source, optFns ...func(o *indexer.Options)) (indexer.Stats, error) {
	if ix.closed.Load() {
		return indexer.Stats{}, ErrClosed
	}

	base := func(o *indexer.Options) {
		o.BatchSize = ix.opts.batchSize
		o.SaveInterval = ix.opts.saveInterval
		o.MaxWorkers = ix.opts.maxWorkers
		o.MaxRetries = ix.opts.maxRetries
		o.RateLimit = ix.opts.rateLimit
		o.RateBurst = ix.opts.rateBurst
		o.Logger = ix.logger.Logger
	}

	b := indexer.New(ix.store, ix.provider, ix.persist, append([]func(o *indexer.Options){base}, optFns...)...)

	stats, err := b.Run(ctx, src)

	ix.logger.LogBuild(ctx, stats.Indexed, stats.Unchanged, stats.Skipped, err)
	return stats, err
}

// Save writes a snapshot of the current index state.
func (ix *Index) Save(ctx context.Context) error {
	if ix.closed.Load() {
		return ErrClosed
	}
	if ix.persist == nil {
		return ErrNoBlobStore
	}

	err := ix.persist.Save(ctx, ix.store)

	ix.logger.LogSnapshot(ctx, ix.persist.Name(), ix.store.Len(), err)
	return err
}

// Load replaces the index content with the persisted snapshot. A snapshot
// whose dimensionality disagrees with the provider fails without modifying
// the index.
func (ix *Index) Load(ctx context.Context) error {
	if ix.closed.Load() {
		return ErrClosed
	}
	if ix.persist == nil {
		return ErrNoBlobStore
	}

	entries, dim, err := ix.persist.Load(ctx, ix.provider.Dimension())
	if err != nil {
		if !errors.Is(err, blobstore.ErrNotFound) {
			ix.logger.LogSnapshot(ctx, ix.persist.Name(), 0, err)
		}
		return translateError(err)
	}

	if err := ix.store.Replace(entries, dim); err != nil {
		return translateError(err)
	}

	ix.logger.LogSnapshot(ctx, ix.persist.Name(), len(entries), nil)
	return nil
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return ix.store.Len()
}

// Dimension returns the full embedding dimensionality.
func (ix *Index) Dimension() int {
	return ix.store.Dimension()
}

// Close marks the index closed and releases the search cache. A closed
// index rejects all operations with ErrClosed. Close does not save; call
// Save first if the latest state must be persisted.
func (ix *Index) Close() error {
	if ix.closed.Swap(true) {
		return nil
	}

	ix.engine.Invalidate()
	return nil
}
