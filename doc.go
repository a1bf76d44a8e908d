// Package mrlgo provides an embedded semantic index built on
// Matryoshka-style embeddings.
//
// Matryoshka-trained embedding models pack coarse meaning into the leading
// coordinates of a vector, so a truncated and renormalized prefix is still a
// usable embedding. mrlgo exploits this with a two-stage funnel search: a
// cheap shortlist pass over low-dimensional prefixes, then an exact
// full-precision rerank of the survivors.
//
// # Quick Start
//
//	ctx := context.Background()
//
//	provider, err := gemini.New(ctx, os.Getenv("GEMINI_API_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ix, err := mrlgo.Open(ctx, provider,
//	    mrlgo.WithBlobStore(blobstore.NewLocalStore("./data")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stats, err := ix.Build(ctx, corpus.NewFSSource("./docs"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("indexed %d, unchanged %d\n", stats.Indexed, stats.Unchanged)
//
//	results, err := ix.Search(ctx, "how do I rotate credentials?", 5)
//	for _, r := range results {
//	    fmt.Printf("%.3f %s\n", r.Score, r.Key)
//	}
//
// Index builds are incremental: unchanged content (by hash) is skipped, and
// the store is snapshotted at a fixed interval so an interrupted build loses
// at most one interval of work.
package mrlgo
