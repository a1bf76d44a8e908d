package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/mrlgo/corpus"
	"github.com/hupe1980/mrlgo/embedding"
	"github.com/hupe1980/mrlgo/persistence"
	"github.com/hupe1980/mrlgo/store"
)

// snippetLimit caps the display text stored per entry. The content hash is
// computed over the full text, so the incremental skip is unaffected.
const snippetLimit = 200

// Stats summarizes a build run.
type Stats struct {
	// Indexed is the number of entries embedded and upserted.
	Indexed int

	// Unchanged is the number of items skipped because their content hash
	// matched the stored entry.
	Unchanged int

	// Skipped is the number of items dropped after a permanent embedding
	// failure or a corpus read error.
	Skipped int

	// Saves is the number of snapshot saves performed, the final save
	// included when it was not a no-op.
	Saves int
}

// Options configures a Builder.
type Options struct {
	// BatchSize is the number of texts per embedding call.
	BatchSize int

	// SaveInterval saves the store every N indexed entries. 0 disables
	// periodic saves; the final save still runs.
	SaveInterval int

	// MaxWorkers bounds the number of concurrent embedding calls.
	MaxWorkers int

	// MaxRetries is the number of additional attempts after a transient
	// embedding failure.
	MaxRetries int

	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration

	// RateLimit caps embedding calls per second across all workers.
	// rate.Inf disables limiting.
	RateLimit rate.Limit

	// RateBurst is the limiter burst size when RateLimit is finite.
	RateBurst int

	// Reindex disables the content-hash skip so every item is re-embedded.
	Reindex bool

	// Logger receives build progress and failure events.
	Logger *slog.Logger
}

// DefaultOptions are the default builder options.
var DefaultOptions = Options{
	BatchSize:      5,
	SaveInterval:   20,
	MaxWorkers:     4,
	MaxRetries:     5,
	RetryBaseDelay: 500 * time.Millisecond,
	RateLimit:      rate.Inf,
	RateBurst:      1,
}

// Builder indexes corpus items into a store.
//
// Embedding failures are never fatal: transient ones are retried with
// backoff, and a batch that keeps failing is logged and skipped. Persistence
// failures are fatal, a snapshot that cannot be written would silently lose
// the whole run.
type Builder struct {
	store    *store.Store
	provider embedding.Provider
	persist  *persistence.Manager
	limiter  *rate.Limiter
	opts     Options

	saveMu   sync.Mutex
	savedGen uint64
	saves    atomic.Int64

	processed atomic.Int64
}

// New creates a Builder. persist may be nil to disable saving entirely.
func New(s *store.Store, provider embedding.Provider, persist *persistence.Manager, optFns ...func(o *Options)) *Builder {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}

	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	var limiter *rate.Limiter
	if opts.RateLimit != rate.Inf {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}

		limiter = rate.NewLimiter(opts.RateLimit, burst)
	}

	return &Builder{
		store:    s,
		provider: provider,
		persist:  persist,
		limiter:  limiter,
		opts:     opts,
	}
}

// Run consumes the source and indexes every item that is new or changed.
//
// The returned Stats are complete even when an error is returned. Run fails
// only on context cancellation or a persistence error; embedding failures
// reduce to Skipped counts.
func (b *Builder) Run(ctx context.Context, src corpus.Source) (Stats, error) {
	b.processed.Store(0)
	b.saves.Store(0)

	b.saveMu.Lock()
	b.savedGen = b.store.Generation()
	b.saveMu.Unlock()

	var unchanged, skipped, indexed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.MaxWorkers)

	batch := make([]corpus.Item, 0, b.opts.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}

		items := batch
		batch = make([]corpus.Item, 0, b.opts.BatchSize)

		g.Go(func() error {
			n, err := b.processBatch(gctx, items)
			if err != nil {
				return err
			}

			indexed.Add(int64(n))
			skipped.Add(int64(len(items) - n))
			return nil
		})
	}

	for item, err := range src.Items(gctx) {
		if gctx.Err() != nil {
			break
		}

		if err != nil {
			b.opts.Logger.WarnContext(gctx, "corpus item unreadable, skipping", "error", err)
			skipped.Add(1)
			continue
		}

		if item.Text == "" {
			continue
		}

		if !b.opts.Reindex {
			if existing, err := b.store.Get(item.Key); err == nil && existing.Hash == corpus.Hash(item.Text) {
				unchanged.Add(1)
				continue
			}
		}

		batch = append(batch, item)
		if len(batch) == b.opts.BatchSize {
			flush()
		}
	}

	flush()

	err := g.Wait()

	if err == nil {
		err = ctx.Err()
	}

	if err == nil {
		// No-op when the last periodic save already covered everything.
		if saveErr := b.save(ctx); saveErr != nil {
			err = fmt.Errorf("final save: %w", saveErr)
		}
	}

	stats := Stats{
		Indexed:   int(indexed.Load()),
		Unchanged: int(unchanged.Load()),
		Skipped:   int(skipped.Load()),
		Saves:     int(b.saves.Load()),
	}

	b.opts.Logger.InfoContext(ctx, "index build finished",
		"indexed", stats.Indexed,
		"unchanged", stats.Unchanged,
		"skipped", stats.Skipped,
		"saves", stats.Saves,
		"error", err,
	)

	return stats, err
}

// processBatch embeds and upserts one batch, returning the number of entries
// indexed. A batch that fails permanently returns (0, nil); only
// cancellation and store/persistence errors propagate.
func (b *Builder) processBatch(ctx context.Context, items []corpus.Item) (int, error) {
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}

	vectors, err := b.embedWithRetry(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}

		b.opts.Logger.WarnContext(ctx, "embedding batch failed permanently, skipping",
			"batch_size", len(items),
			"first_key", items[0].Key,
			"error", err,
		)
		return 0, nil
	}

	if len(vectors) != len(items) {
		b.opts.Logger.WarnContext(ctx, "embedding batch returned wrong vector count, skipping",
			"want", len(items),
			"got", len(vectors),
		)
		return 0, nil
	}

	for i, item := range items {
		entry := store.Entry{
			Key:    item.Key,
			Text:   corpus.Snippet(item.Text, snippetLimit),
			Vector: vectors[i],
			Hash:   corpus.Hash(item.Text),
		}

		if err := b.store.Upsert(entry); err != nil {
			return 0, fmt.Errorf("upsert %q: %w", item.Key, err)
		}
	}

	if err := b.maybeSave(ctx, len(items)); err != nil {
		return 0, err
	}

	return len(items), nil
}

// embedWithRetry calls the provider, retrying transient failures with
// exponential backoff up to MaxRetries additional attempts.
func (b *Builder) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	delay := b.opts.RetryBaseDelay

	for attempt := 0; ; attempt++ {
		if b.limiter != nil {
			if err := b.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vectors, err := b.provider.Embed(ctx, texts)
		if err == nil {
			return vectors, nil
		}

		if !embedding.IsTransient(err) || attempt >= b.opts.MaxRetries {
			return nil, err
		}

		b.opts.Logger.DebugContext(ctx, "embedding batch failed, retrying",
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}

// maybeSave saves the store when the running processed count crosses a
// SaveInterval boundary.
func (b *Builder) maybeSave(ctx context.Context, added int) error {
	total := b.processed.Add(int64(added))

	if b.persist == nil || b.opts.SaveInterval <= 0 {
		return nil
	}

	interval := int64(b.opts.SaveInterval)
	if total/interval == (total-int64(added))/interval {
		return nil
	}

	if err := b.save(ctx); err != nil {
		return fmt.Errorf("periodic save: %w", err)
	}

	return nil
}

// save writes a snapshot unless the store is unchanged since the last save.
func (b *Builder) save(ctx context.Context) error {
	if b.persist == nil {
		return nil
	}

	b.saveMu.Lock()
	defer b.saveMu.Unlock()

	gen := b.store.Generation()
	if gen == b.savedGen {
		return nil
	}

	if err := b.persist.Save(ctx, b.store); err != nil {
		return err
	}

	b.savedGen = gen
	b.saves.Add(1)

	b.opts.Logger.InfoContext(ctx, "snapshot saved",
		"entries", b.store.Len(),
		"name", b.persist.Name(),
	)

	return nil
}
