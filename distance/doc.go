// Package distance provides the vector similarity primitives used by the
// funnel search engine.
//
// All similarities are cosine over L2-normalized operands. The truncated
// helpers renormalize both operands before the dot product: a raw prefix dot
// product is not a valid cosine similarity and would bias results toward
// prefixes with larger raw magnitude.
//
// # Usage
//
//	sim := distance.Cosine(a, b)
//	q := distance.TruncateNormalize(query, 64)
package distance
