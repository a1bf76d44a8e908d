// Package indexer turns a lazy corpus sequence into stored entries: it
// batches embedding calls, runs them on a bounded worker pool, retries
// transient provider failures with exponential backoff, skips entries whose
// content hash is unchanged, and saves the store at a fixed item interval.
package indexer
