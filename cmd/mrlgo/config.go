package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/mrlgo"
	"github.com/hupe1980/mrlgo/blobstore"
	"github.com/hupe1980/mrlgo/embedding"
	"github.com/hupe1980/mrlgo/embedding/gemini"
	"github.com/hupe1980/mrlgo/embedding/openai"
)

// Config is the YAML configuration file schema. Every field is optional;
// zero values fall back to the defaults below.
type Config struct {
	// Provider selects the embedding backend: "gemini" or "openai".
	Provider string `yaml:"provider"`

	// Model overrides the provider's default embedding model.
	Model string `yaml:"model"`

	// Dimension is the full embedding dimensionality.
	Dimension int `yaml:"dimension"`

	// DataDir is where snapshots are stored.
	DataDir string `yaml:"data_dir"`

	// IndexName is the snapshot file name inside DataDir.
	IndexName string `yaml:"index_name"`

	ShortlistDimension  int     `yaml:"shortlist_dimension"`
	ShortlistMultiplier int     `yaml:"shortlist_multiplier"`
	BatchSize           int     `yaml:"batch_size"`
	SaveInterval        int     `yaml:"save_interval"`
	MaxWorkers          int     `yaml:"max_workers"`
	RateLimit           float64 `yaml:"rate_limit"`
}

func defaultConfig() Config {
	return Config{
		Provider:  "gemini",
		Dimension: 768,
		DataDir:   ".mrlgo",
		IndexName: "index.mrl",
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

func newProvider(ctx context.Context, cfg Config) (embedding.Provider, error) {
	switch cfg.Provider {
	case "gemini", "":
		return gemini.New(ctx, os.Getenv("GEMINI_API_KEY"), func(o *gemini.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.Dimension > 0 {
				o.Dimension = cfg.Dimension
			}
		})
	case "openai":
		return openai.New(os.Getenv("OPENAI_API_KEY"), func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.Dimension > 0 {
				o.Dimension = cfg.Dimension
			}
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func openIndex(ctx context.Context, cfg Config, verbose bool) (*mrlgo.Index, error) {
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger := mrlgo.NewTextLogger(slog.LevelWarn)
	if verbose {
		logger = mrlgo.NewTextLogger(slog.LevelDebug)
	}

	opts := []mrlgo.Option{
		mrlgo.WithBlobStore(blobstore.NewLocalStore(cfg.DataDir)),
		mrlgo.WithSnapshotName(cfg.IndexName),
		mrlgo.WithLogger(logger),
	}

	if cfg.ShortlistDimension > 0 {
		opts = append(opts, mrlgo.WithShortlistDimension(cfg.ShortlistDimension))
	}
	if cfg.ShortlistMultiplier > 0 {
		opts = append(opts, mrlgo.WithShortlistMultiplier(cfg.ShortlistMultiplier))
	}
	if cfg.BatchSize > 0 {
		opts = append(opts, mrlgo.WithBatchSize(cfg.BatchSize))
	}
	if cfg.SaveInterval > 0 {
		opts = append(opts, mrlgo.WithSaveInterval(cfg.SaveInterval))
	}
	if cfg.MaxWorkers > 0 {
		opts = append(opts, mrlgo.WithMaxWorkers(cfg.MaxWorkers))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, mrlgo.WithRateLimit(rate.Limit(cfg.RateLimit), 1))
	}

	return mrlgo.Open(ctx, provider, opts...)
}
