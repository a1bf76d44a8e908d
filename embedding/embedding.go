// Package embedding defines the provider abstraction for turning text into
// fixed-dimensionality vectors, and the transient/permanent error
// classification the index builder's retry policy relies on.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Provider generates embeddings for batches of text.
//
// Embed returns one vector per input text, same length and order as the
// input. Implementations may block on network I/O; callers must never hold
// index locks across a call.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of produced vectors.
	Dimension() int
}

// ProviderError wraps an embedding failure with a retryability
// classification. Transient failures (rate limits, upstream hiccups) are
// retried with backoff; permanent ones are skipped and logged.
type ProviderError struct {
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("embedding provider error (%s): %v", kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Transient wraps err as a retryable provider error.
func Transient(err error) *ProviderError {
	return &ProviderError{Transient: true, Err: err}
}

// Permanent wraps err as a non-retryable provider error.
func Permanent(err error) *ProviderError {
	return &ProviderError{Transient: false, Err: err}
}

// IsTransient reports whether err is a retryable provider error.
// Unclassified errors are treated as transient so that plain network
// failures get retried.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return true
}
