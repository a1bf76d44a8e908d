package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for storing snapshot blobs.
type BlobStore interface {
	// Put writes a blob atomically. A reader must never observe a
	// partially written blob under name.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads an entire blob.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes a blob. Deleting an absent blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns all blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
