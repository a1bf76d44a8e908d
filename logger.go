package mrlgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with mrlgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// LogUpsert logs an upsert operation.
func (l *Logger) LogUpsert(ctx context.Context, key string, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "upsert failed",
			"key", key,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "upsert completed",
			"key", key,
			"dimension", dimension,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(ctx context.Context, key string) {
	l.DebugContext(ctx, "remove completed",
		"key", key,
	)
}

// LogBuild logs an index build run.
func (l *Logger) LogBuild(ctx context.Context, indexed, unchanged, skipped int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"indexed", indexed,
			"unchanged", unchanged,
			"skipped", skipped,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index build completed",
			"indexed", indexed,
			"unchanged", unchanged,
			"skipped", skipped,
		)
	}
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, name string, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot completed",
			"name", name,
			"entries", entries,
		)
	}
}
