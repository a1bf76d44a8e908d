// Package openai provides an embedding.Provider backed by the OpenAI
// embeddings API (or any OpenAI-compatible endpoint via a custom base URL).
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/mrlgo/embedding"
)

// Options contains configuration options for the OpenAI provider.
type Options struct {
	// Model is the embedding model ID.
	Model string

	// Dimension requests vectors of this length via the dimensions
	// parameter (supported by text-embedding-3 models).
	Dimension int

	// BaseURL overrides the API endpoint, useful for OpenAI-compatible
	// servers and tests.
	BaseURL string
}

// DefaultOptions contains the default configuration options.
var DefaultOptions = Options{
	Model:     "text-embedding-3-small",
	Dimension: 768,
}

// Provider implements embedding.Provider using the OpenAI API.
type Provider struct {
	client openaisdk.Client
	opts   Options
}

var _ embedding.Provider = (*Provider)(nil)

// New creates an OpenAI embedding provider. apiKey must be non-empty.
func New(apiKey string, optFns ...func(o *Options)) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: missing API key")
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("openai: invalid dimension %d", opts.Dimension)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Provider{
		client: openaisdk.NewClient(reqOpts...),
		opts:   opts,
	}, nil
}

// Dimension returns the configured output dimensionality.
func (p *Provider) Dimension() int { return p.opts.Dimension }

// Embed returns one vector per input text, in input order.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, embedding.Permanent(errors.New("openai: empty batch"))
	}

	resp, err := p.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(p.opts.Model),
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Dimensions: openaisdk.Int(int64(p.opts.Dimension)),
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, embedding.Permanent(fmt.Errorf("openai: got %d embeddings for %d texts", len(resp.Data), len(texts)))
	}

	out := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || int(item.Index) >= len(out) {
			return nil, embedding.Permanent(fmt.Errorf("openai: embedding index %d out of range", item.Index))
		}
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		if len(vec) != p.opts.Dimension {
			return nil, embedding.Permanent(fmt.Errorf("openai: embedding has dimension %d, want %d", len(vec), p.opts.Dimension))
		}
		out[item.Index] = vec
	}
	return out, nil
}

func classify(err error) error {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return embedding.Transient(err)
		case apiErr.StatusCode >= 500:
			return embedding.Transient(err)
		default:
			return embedding.Permanent(err)
		}
	}
	return embedding.Transient(err)
}
