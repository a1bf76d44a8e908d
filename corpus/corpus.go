package corpus

import (
	"context"
	"crypto/md5" // nolint gosec // content fingerprint, not security
	"encoding/hex"
	"iter"
)

// Item is a single unit of indexable content.
type Item struct {
	// Key is a stable identifier, e.g. "path/to/file.go::main[2]".
	Key string

	// Text is the sanitized content to embed.
	Text string
}

// Source produces a lazy, finite sequence of items. The builder only
// consumes it forward; a yielded error applies to the item it replaces, not
// to the whole walk.
type Source interface {
	Items(ctx context.Context) iter.Seq2[Item, error]
}

// Hash returns the content fingerprint used for incremental re-index
// skipping.
func Hash(text string) string {
	sum := md5.Sum([]byte(text)) // nolint gosec
	return hex.EncodeToString(sum[:])
}

// Snippet returns the leading limit runes of text, for result display.
func Snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// Slice is an in-memory Source, mostly for tests and programmatic corpora.
type Slice []Item

// Items yields the slice in order.
func (s Slice) Items(ctx context.Context) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		for _, item := range s {
			if ctx.Err() != nil {
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}
