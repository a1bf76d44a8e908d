package persistence

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MagicNumber identifies mrlgo snapshot files (ASCII: "MRL1").
	MagicNumber = 0x4D524C31

	// SchemaVersion is the current snapshot schema version.
	SchemaVersion = 1
)

// ErrInvalidMagic is returned when a snapshot does not start with the
// expected magic number.
var ErrInvalidMagic = errors.New("invalid magic number")

// ErrIO marks a failed snapshot write. The previously persisted snapshot
// remains valid because writes are atomic.
var ErrIO = errors.New("snapshot write failed")

// ErrSchemaMismatch indicates a snapshot whose schema version or
// dimensionality disagrees with the running configuration. It is fatal to
// the load; the caller must rebuild the index or pick a different snapshot.
type ErrSchemaMismatch struct {
	Field    string // "schema_version" or "dimension"
	Expected int
	Actual   int
}

func (e *ErrSchemaMismatch) Error() string {
	return fmt.Sprintf("schema mismatch: %s expected %d, got %d", e.Field, e.Expected, e.Actual)
}

// ChecksumMismatchError is returned when payload checksum verification
// fails.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// snapshotPayload is the codec-encoded body of a snapshot.
type snapshotPayload struct {
	Dimension int           `json:"dimension"`
	Entries   []entryRecord `json:"entries"`
}

type entryRecord struct {
	Key       string    `json:"key"`
	Text      string    `json:"text,omitempty"`
	Vector    []float32 `json:"vector"`
	Hash      string    `json:"hash,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
