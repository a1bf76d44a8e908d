package mrlgo_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/mrlgo"
	"github.com/hupe1980/mrlgo/blobstore"
	"github.com/hupe1980/mrlgo/corpus"
	"github.com/hupe1980/mrlgo/testutil"
)

func Example() {
	ctx := context.Background()

	// Real deployments use an embedding provider such as gemini.New or
	// openai.New; the fake keeps the example hermetic.
	provider := testutil.NewFakeProvider(64)

	ix, err := mrlgo.Open(ctx, provider,
		mrlgo.WithBlobStore(blobstore.NewMemoryStore()),
	)
	if err != nil {
		log.Fatal(err)
	}

	items := corpus.Slice{
		{Key: "notes/vault.md::main", Text: "rotating api credentials safely"},
		{Key: "notes/gc.md::main", Text: "tuning garbage collector latency"},
	}

	if _, err := ix.Build(ctx, items); err != nil {
		log.Fatal(err)
	}

	results, err := ix.Search(ctx, "rotating api credentials safely", 1)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(results[0].Key)
	// Output: notes/vault.md::main
}
