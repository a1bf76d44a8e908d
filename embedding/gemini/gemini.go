// Package gemini provides an embedding.Provider backed by the Google Gemini
// API. Gemini's text-embedding models are matryoshka-trained, which is what
// makes truncated-prefix shortlisting meaningful.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/hupe1980/mrlgo/embedding"
)

// Options contains configuration options for the Gemini provider.
type Options struct {
	// Model is the embedding model ID.
	Model string

	// Dimension requests vectors of this length via output dimensionality.
	Dimension int
}

// DefaultOptions contains the default configuration options.
var DefaultOptions = Options{
	Model:     "text-embedding-004",
	Dimension: 768,
}

// Provider implements embedding.Provider using the Gemini API.
type Provider struct {
	client *genai.Client
	opts   Options
}

var _ embedding.Provider = (*Provider)(nil)

// New creates a Gemini embedding provider. apiKey must be non-empty.
func New(ctx context.Context, apiKey string, optFns ...func(o *Options)) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: missing API key")
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("gemini: invalid dimension %d", opts.Dimension)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	return &Provider{client: client, opts: opts}, nil
}

// Dimension returns the configured output dimensionality.
func (p *Provider) Dimension() int { return p.opts.Dimension }

// Embed returns one vector per input text, in input order.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, embedding.Permanent(errors.New("gemini: empty batch"))
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.opts.Model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(p.opts.Dimension)),
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, embedding.Permanent(fmt.Errorf("gemini: got %d embeddings for %d texts", len(resp.Embeddings), len(texts)))
	}

	out := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if len(emb.Values) != p.opts.Dimension {
			return nil, embedding.Permanent(fmt.Errorf("gemini: embedding %d has dimension %d, want %d", i, len(emb.Values), p.opts.Dimension))
		}
		out[i] = emb.Values
	}
	return out, nil
}

// classify maps API errors onto the transient/permanent taxonomy. Rate
// limits and upstream failures are retryable; malformed requests are not.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return embedding.Transient(err)
		case apiErr.Code >= 500:
			return embedding.Transient(err)
		default:
			return embedding.Permanent(err)
		}
	}
	// Network-level failures are retryable.
	return embedding.Transient(err)
}
