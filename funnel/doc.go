// Package funnel implements two-stage matryoshka similarity search.
//
// Stage one scores every row against a truncated, renormalized prefix of the
// query (O(N·d)) and keeps a shortlist. Stage two reranks only the shortlist
// with full-precision cosine similarity (O(M·D)). With a matryoshka-trained
// embedding model the cheap stage preserves ranking quality close to
// exhaustive full-dimension search at a fraction of the cost.
package funnel
