// Package persistence serializes the entry store to a versioned snapshot
// container and restores it.
//
// A snapshot is a small binary header (magic, schema version, payload
// checksum, codec name) followed by a zstd-compressed, codec-encoded payload
// holding the dimensionality and all entries. Writes go through a blobstore
// whose Put is atomic, so a crashed save never corrupts the previous
// snapshot. Loads verify magic, schema version, checksum and dimensionality;
// disagreement surfaces as an error, never as a silent migration.
package persistence
