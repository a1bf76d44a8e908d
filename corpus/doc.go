// Package corpus produces the (key, text) items the index builder consumes.
//
// A Source yields a lazy, finite, forward-only sequence of items. The
// filesystem source walks a directory tree, splits file content into chunks
// on line boundaries, strips markdown image noise and collapses whitespace.
// Keys are the file path plus a chunk suffix, stable across runs so
// incremental re-indexing can skip unchanged content by hash.
package corpus
