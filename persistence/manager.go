package persistence

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/mrlgo/blobstore"
	"github.com/hupe1980/mrlgo/codec"
	"github.com/hupe1980/mrlgo/store"
)

// Options contains configuration options for the Manager.
type Options struct {
	// Codec encodes the snapshot payload. Defaults to codec.Default.
	Codec codec.Codec
}

// Manager saves and loads entry-store snapshots through a blobstore.
//
// The Manager is thread-safe as long as the underlying blobstore is; callers
// serialize saves of the same snapshot name themselves (one logical owner
// per index instance).
type Manager struct {
	blobs   blobstore.BlobStore
	name    string
	codec   codec.Codec
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewManager creates a Manager persisting under the given blob name.
func NewManager(blobs blobstore.BlobStore, name string, optFns ...func(o *Options)) (*Manager, error) {
	opts := Options{Codec: codec.Default}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if name == "" {
		return nil, fmt.Errorf("persistence: empty snapshot name")
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("persistence: create encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("persistence: create decoder: %w", err)
	}

	return &Manager{
		blobs:   blobs,
		name:    name,
		codec:   opts.Codec,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Name returns the snapshot blob name.
func (m *Manager) Name() string { return m.name }

// Save serializes the store's current snapshot and writes it atomically.
// Failures are wrapped with ErrIO; the previous snapshot stays intact.
func (m *Manager) Save(ctx context.Context, s *store.Store) error {
	entries := s.Snapshot()

	payload := snapshotPayload{
		Dimension: s.Dimension(),
		Entries:   make([]entryRecord, len(entries)),
	}
	for i, e := range entries {
		payload.Entries[i] = entryRecord{
			Key:       e.Key,
			Text:      e.Text,
			Vector:    e.Vector,
			Hash:      e.Hash,
			UpdatedAt: e.UpdatedAt,
		}
	}

	encoded, err := m.codec.Marshal(payload)
	if err != nil {
		return fmt.Errorf("persistence: encode payload: %w", err)
	}
	compressed := m.encoder.EncodeAll(encoded, nil)

	var buf bytes.Buffer
	codecName := m.codec.Name()
	_ = binary.Write(&buf, binary.LittleEndian, uint32(MagicNumber))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(SchemaVersion))
	_ = binary.Write(&buf, binary.LittleEndian, crc32.ChecksumIEEE(compressed))
	_ = binary.Write(&buf, binary.LittleEndian, uint8(len(codecName)))
	buf.WriteString(codecName)
	buf.Write(compressed)

	if err := m.blobs.Put(ctx, m.name, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Load reads the snapshot and returns its entries and dimensionality.
//
// If expectDim > 0 and the snapshot's dimensionality differs, Load fails
// with *ErrSchemaMismatch. A missing snapshot returns blobstore.ErrNotFound;
// callers typically treat that as "start empty".
func (m *Manager) Load(ctx context.Context, expectDim int) ([]store.Entry, int, error) {
	data, err := m.blobs.Get(ctx, m.name)
	if err != nil {
		return nil, 0, err
	}

	r := bytes.NewReader(data)
	var magic, version, checksum uint32
	var nameLen uint8
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, 0, fmt.Errorf("persistence: read header: %w", err)
	}
	if magic != MagicNumber {
		return nil, 0, ErrInvalidMagic
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, 0, fmt.Errorf("persistence: read header: %w", err)
	}
	if version != SchemaVersion {
		return nil, 0, &ErrSchemaMismatch{Field: "schema_version", Expected: SchemaVersion, Actual: int(version)}
	}
	if err := binary.Read(r, binary.LittleEndian, &checksum); err != nil {
		return nil, 0, fmt.Errorf("persistence: read header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return nil, 0, fmt.Errorf("persistence: read header: %w", err)
	}
	codecName := make([]byte, nameLen)
	if _, err := r.Read(codecName); err != nil {
		return nil, 0, fmt.Errorf("persistence: read codec name: %w", err)
	}
	c, ok := codec.ByName(string(codecName))
	if !ok {
		return nil, 0, fmt.Errorf("persistence: unknown codec %q", codecName)
	}

	compressed := data[len(data)-r.Len():]
	if actual := crc32.ChecksumIEEE(compressed); actual != checksum {
		return nil, 0, &ChecksumMismatchError{Expected: checksum, Actual: actual}
	}

	encoded, err := m.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("persistence: decompress payload: %w", err)
	}

	var payload snapshotPayload
	if err := c.Unmarshal(encoded, &payload); err != nil {
		return nil, 0, fmt.Errorf("persistence: decode payload: %w", err)
	}

	if expectDim > 0 && payload.Dimension != expectDim {
		return nil, 0, &ErrSchemaMismatch{Field: "dimension", Expected: expectDim, Actual: payload.Dimension}
	}
	for _, e := range payload.Entries {
		if len(e.Vector) != payload.Dimension {
			return nil, 0, &ErrSchemaMismatch{Field: "dimension", Expected: payload.Dimension, Actual: len(e.Vector)}
		}
	}

	entries := make([]store.Entry, len(payload.Entries))
	for i, e := range payload.Entries {
		entries[i] = store.Entry{
			Key:       e.Key,
			Text:      e.Text,
			Vector:    e.Vector,
			Hash:      e.Hash,
			UpdatedAt: e.UpdatedAt,
		}
	}
	return entries, payload.Dimension, nil
}
