package funnel

import (
	"context"
	"errors"
	"sort"

	"github.com/hupe1980/mrlgo/distance"
	"github.com/hupe1980/mrlgo/internal/matrix"
	"github.com/hupe1980/mrlgo/store"
)

// ErrInvalidK is returned when k is not positive.
var ErrInvalidK = errors.New("k must be positive")

// Result is a single search hit.
type Result struct {
	Key   string
	Text  string
	Score float32
}

// Options contains configuration options for the funnel engine.
type Options struct {
	// ShortlistDimension is the truncation length d used for the cheap
	// first stage. It should be well below the full dimensionality.
	ShortlistDimension int

	// ShortlistMultiplier controls how many candidates survive stage one:
	// M = min(N, max(k, k*ShortlistMultiplier)).
	ShortlistMultiplier int
}

// DefaultOptions contains the default configuration options for the engine.
var DefaultOptions = Options{
	ShortlistDimension:  64,
	ShortlistMultiplier: 15,
}

// Engine performs funnel search over an entry store through a
// generation-gated matrix cache.
type Engine struct {
	store *store.Store
	cache *matrix.Cache
	opts  Options
}

// New creates a funnel engine over s.
func New(s *store.Store, optFns ...func(o *Options)) (*Engine, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ShortlistDimension <= 0 {
		return nil, errors.New("shortlist dimension must be positive")
	}
	if opts.ShortlistMultiplier < 1 {
		// Clamp so M >= k always holds.
		opts.ShortlistMultiplier = 1
	}

	return &Engine{
		store: s,
		cache: matrix.NewCache(),
		opts:  opts,
	}, nil
}

// Search returns the topK entries most similar to query, sorted by
// descending full-precision cosine similarity. Ties break by insertion
// order. An empty store yields an empty result, not an error.
func (e *Engine) Search(ctx context.Context, query []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, ErrInvalidK
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st := e.cache.EnsureFresh(e.store)
	n := st.Len()
	if n == 0 {
		return []Result{}, nil
	}
	if len(query) != st.Dim() {
		return nil, &store.ErrDimensionMismatch{Expected: st.Dim(), Actual: len(query)}
	}

	// Stage 1: truncated-prefix shortlist.
	d := e.opts.ShortlistDimension
	if d > st.Dim() {
		d = st.Dim()
	}
	qd := distance.TruncateNormalize(query, d)
	norms := st.TruncatedNorms(d)

	scores := make([]float32, n)
	for i := range n {
		if norms[i] == 0 {
			continue
		}
		scores[i] = distance.Dot(qd, st.Row(i)[:d]) / norms[i]
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if scores[ia] != scores[ib] {
			return scores[ia] > scores[ib]
		}
		return ia < ib
	})

	m := topK * e.opts.ShortlistMultiplier
	if m < topK {
		m = topK
	}
	if m > n {
		m = n
	}
	shortlist := order[:m]

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: full-precision rerank of the shortlist.
	full := make([]float32, m)
	for i, row := range shortlist {
		full[i] = distance.Cosine(query, st.Row(row))
	}
	rerank := make([]int, m)
	for i := range rerank {
		rerank[i] = i
	}
	sort.Slice(rerank, func(a, b int) bool {
		if full[rerank[a]] != full[rerank[b]] {
			return full[rerank[a]] > full[rerank[b]]
		}
		return shortlist[rerank[a]] < shortlist[rerank[b]]
	})

	if topK > m {
		topK = m
	}
	results := make([]Result, 0, topK)
	for _, i := range rerank[:topK] {
		row := shortlist[i]
		results = append(results, Result{
			Key:   st.Key(row),
			Text:  st.Text(row),
			Score: full[i],
		})
	}
	return results, nil
}

// Invalidate drops the cached matrix. The next search rebuilds it. Searches
// stay correct without ever calling this; it only releases memory early.
func (e *Engine) Invalidate() {
	e.cache.Invalidate()
}
