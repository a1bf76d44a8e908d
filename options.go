package mrlgo

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/hupe1980/mrlgo/blobstore"
	"github.com/hupe1980/mrlgo/codec"
	"github.com/hupe1980/mrlgo/funnel"
	"github.com/hupe1980/mrlgo/indexer"
)

type options struct {
	logger              *Logger
	codec               codec.Codec
	blobs               blobstore.BlobStore
	snapshotName        string
	shortlistDimension  int
	shortlistMultiplier int
	batchSize           int
	saveInterval        int
	maxWorkers          int
	maxRetries          int
	rateLimit           rate.Limit
	rateBurst           int
}

// Option configures Index constructor behavior.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithCodec configures the codec used for snapshot payloads.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithBlobStore configures where snapshots are persisted. Without a blob
// store the index is memory-only and Save/Load fail with ErrNoBlobStore.
func WithBlobStore(blobs blobstore.BlobStore) Option {
	return func(o *options) {
		o.blobs = blobs
	}
}

// WithSnapshotName configures the blob name snapshots are written under.
func WithSnapshotName(name string) Option {
	return func(o *options) {
		o.snapshotName = name
	}
}

// WithShortlistDimension configures the truncation length used by the
// first search stage. It should be well below the embedding dimensionality.
func WithShortlistDimension(d int) Option {
	return func(o *options) {
		o.shortlistDimension = d
	}
}

// WithShortlistMultiplier configures how many candidates survive the first
// search stage: M = min(N, max(k, k*multiplier)).
func WithShortlistMultiplier(m int) Option {
	return func(o *options) {
		o.shortlistMultiplier = m
	}
}

// WithBatchSize configures the number of texts per embedding call during
// index builds.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithSaveInterval configures how often a build saves: every N indexed
// entries. 0 disables periodic saves.
func WithSaveInterval(n int) Option {
	return func(o *options) {
		o.saveInterval = n
	}
}

// WithMaxWorkers configures the number of concurrent embedding calls during
// index builds.
func WithMaxWorkers(n int) Option {
	return func(o *options) {
		o.maxWorkers = n
	}
}

// WithMaxRetries configures how many times a transient embedding failure is
// retried before its batch is skipped.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		o.maxRetries = n
	}
}

// WithRateLimit caps embedding calls per second across all build workers.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *options) {
		o.rateLimit = limit
		o.rateBurst = burst
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:              NoopLogger(),
		codec:               codec.Default,
		snapshotName:        "index.mrl",
		shortlistDimension:  funnel.DefaultOptions.ShortlistDimension,
		shortlistMultiplier: funnel.DefaultOptions.ShortlistMultiplier,
		batchSize:           indexer.DefaultOptions.BatchSize,
		saveInterval:        indexer.DefaultOptions.SaveInterval,
		maxWorkers:          indexer.DefaultOptions.MaxWorkers,
		maxRetries:          indexer.DefaultOptions.MaxRetries,
		rateLimit:           rate.Inf,
		rateBurst:           1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
