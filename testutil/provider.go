package testutil

import (
	"context"
	"hash/fnv"
	"math/rand"
	"strings"
	"sync"
)

// FakeProvider is a deterministic in-memory embedding provider. The vector
// for a given text depends only on the text and the dimension, so repeated
// runs and incremental-skip tests behave reproducibly.
//
// Failures can be scripted per call (FailNext) or per text (FailText) to
// exercise the builder's retry and skip paths.
type FakeProvider struct {
	dim int

	mu           sync.Mutex
	calls        int
	failNext     int
	failNextErr  error
	failSubstr   string
	failTextErr  error
	batchSizes   []int
	embeddedText []string
}

// NewFakeProvider creates a fake provider producing vectors of length dim.
func NewFakeProvider(dim int) *FakeProvider {
	return &FakeProvider{dim: dim}
}

// Dimension returns the configured dimensionality.
func (p *FakeProvider) Dimension() int { return p.dim }

// FailNext makes the next n Embed calls return err.
func (p *FakeProvider) FailNext(n int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failNext = n
	p.failNextErr = err
}

// FailText makes any Embed call whose batch contains a text with the given
// substring return err.
func (p *FakeProvider) FailText(substr string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failSubstr = substr
	p.failTextErr = err
}

// Calls returns the number of Embed invocations so far.
func (p *FakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// BatchSizes returns the size of every batch embedded so far.
func (p *FakeProvider) BatchSizes() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.batchSizes))
	copy(out, p.batchSizes)
	return out
}

// EmbeddedTexts returns every text successfully embedded so far.
func (p *FakeProvider) EmbeddedTexts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.embeddedText))
	copy(out, p.embeddedText)
	return out
}

// Embed returns one deterministic vector per text.
func (p *FakeProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.calls++
	if p.failNext > 0 {
		p.failNext--
		err := p.failNextErr
		p.mu.Unlock()
		return nil, err
	}
	if p.failSubstr != "" {
		for _, text := range texts {
			if strings.Contains(text, p.failSubstr) {
				err := p.failTextErr
				p.mu.Unlock()
				return nil, err
			}
		}
	}
	p.batchSizes = append(p.batchSizes, len(texts))
	p.embeddedText = append(p.embeddedText, texts...)
	p.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = Embedding(text, p.dim)
	}
	return out, nil
}

// Embedding returns the deterministic vector FakeProvider produces for text.
func Embedding(text string, dim int) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64()))) // nolint gosec

	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = rng.Float32()*2 - 1
	}
	return vec
}
