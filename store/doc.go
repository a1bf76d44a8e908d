// Package store implements the entry store: the durable source of truth
// mapping content keys to full-precision embedding vectors.
//
// Every mutation bumps a monotonically increasing generation counter.
// Derived structures (the matrix cache) compare the generation they were
// built against with the store's current generation to decide staleness.
package store
