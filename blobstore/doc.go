// Package blobstore abstracts where snapshot blobs live.
//
// The persistence layer reads and writes snapshots as whole blobs, so the
// interface is deliberately small: atomic Put, whole-blob Get, Delete and
// prefix List. Implementations exist for the local filesystem (with an
// advisory single-writer lock), in-memory (tests), MinIO/S3-compatible
// object stores, and AWS S3.
package blobstore
