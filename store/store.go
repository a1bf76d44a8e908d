package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// ErrNotFound is returned by Get when the key has no entry.
var ErrNotFound = errors.New("entry not found")

// ErrDimensionMismatch indicates a vector whose length disagrees with the
// dimensionality already established for the store.
//
// The store is never mutated when this error is returned.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Entry is a single indexed item: a stable content key, the source snippet
// kept for result display, the full-precision vector, and a content hash used
// for incremental re-index skipping.
type Entry struct {
	Key       string
	Text      string
	Vector    []float32
	Hash      string
	UpdatedAt time.Time
}

// Store is an insertion-ordered mapping from key to Entry.
//
// Writes are serialized; reads may proceed concurrently. An Entry is either
// absent or fully populated, never partially written.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*Entry
	order      []string // insertion order, removal-compacted
	dimension  int      // 0 until established by the first upsert
	generation uint64
}

// New creates an empty store. If dimension > 0 it is fixed up front;
// otherwise the first upserted vector establishes it.
func New(dimension int) *Store {
	return &Store{
		entries:   make(map[string]*Entry),
		dimension: dimension,
	}
}

// Upsert inserts or replaces the entry for e.Key and bumps the generation.
//
// The first upsert into a store without a configured dimension establishes
// the dimensionality for its lifetime. A vector of any other length fails
// with *ErrDimensionMismatch and leaves the store untouched.
func (s *Store) Upsert(e Entry) error {
	if e.Key == "" {
		return errors.New("empty key")
	}
	if len(e.Vector) == 0 {
		return &ErrDimensionMismatch{Expected: s.Dimension(), Actual: 0}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == 0 {
		s.dimension = len(e.Vector)
	} else if len(e.Vector) != s.dimension {
		return &ErrDimensionMismatch{Expected: s.dimension, Actual: len(e.Vector)}
	}

	stored := e
	stored.Vector = slices.Clone(e.Vector)
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	if _, ok := s.entries[e.Key]; !ok {
		s.order = append(s.order, e.Key)
	}
	s.entries[e.Key] = &stored
	s.generation++
	return nil
}

// Get returns a copy of the entry for key, or ErrNotFound.
func (s *Store) Get(key string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	out := *e
	out.Vector = slices.Clone(e.Vector)
	return out, nil
}

// Remove deletes the entry for key if present.
//
// The generation is bumped even when the key was absent: removal is rare and
// an occasional needless cache rebuild is cheaper than tracking whether a
// removal took effect.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		delete(s.entries, key)
		if i := slices.Index(s.order, key); i >= 0 {
			s.order = slices.Delete(s.order, i, i+1)
		}
	}
	s.generation++
}

// Snapshot returns all entries in insertion order.
//
// The returned entries share vector backing arrays with the store; callers
// must treat them as read-only.
func (s *Store) Snapshot() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, *s.entries[key])
	}
	return out
}

// SnapshotWithGeneration returns the snapshot and the generation it
// reflects, read under a single lock acquisition. Cache rebuilds use this so
// the generation recorded for a rebuild always matches the entries copied.
func (s *Store) SnapshotWithGeneration() ([]Entry, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, *s.entries[key])
	}
	return out, s.generation
}

// Replace atomically swaps the entire store content, typically after a
// snapshot load. dimension must match every entry's vector length.
// The generation is bumped so any existing cache is invalidated.
func (s *Store) Replace(entries []Entry, dimension int) error {
	m := make(map[string]*Entry, len(entries))
	order := make([]string, 0, len(entries))
	for i := range entries {
		e := entries[i]
		if len(e.Vector) != dimension {
			return &ErrDimensionMismatch{Expected: dimension, Actual: len(e.Vector)}
		}
		if _, ok := m[e.Key]; !ok {
			order = append(order, e.Key)
		}
		m[e.Key] = &e
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = m
	s.order = order
	s.dimension = dimension
	s.generation++
	return nil
}

// Generation returns the current generation counter.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Dimension returns the established vector dimensionality, or 0 if the store
// is still empty and unconfigured.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
