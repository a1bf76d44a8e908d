package corpus

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	t.Run("StripsMarkdownImages", func(t *testing.T) {
		in := "before ![alt text](http://example.com/img.png) after"
		assert.Equal(t, "before after", Sanitize(in))
	})

	t.Run("CollapsesWhitespace", func(t *testing.T) {
		in := "  a\n\n\tb   c  "
		assert.Equal(t, "a b c", Sanitize(in))
	})

	t.Run("EmptyAfterCleaning", func(t *testing.T) {
		assert.Equal(t, "", Sanitize("![](x.png)\n\n  "))
	})
}

func TestHash(t *testing.T) {
	a := Hash("same text")
	b := Hash("same text")
	c := Hash("other text")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", Snippet("short", 10))
	assert.Equal(t, "exactly", Snippet("exactly", 7))
	assert.Equal(t, "truncated ", Snippet("truncated here", 10))
	// Rune-safe: never cuts a multi-byte character.
	assert.Equal(t, "héllo", Snippet("héllo wörld", 5))
}

func TestSplit(t *testing.T) {
	t.Run("SmallTextIsSingleMainChunk", func(t *testing.T) {
		chunks := Split("hello world", 8000)
		require.Len(t, chunks, 1)
		assert.Equal(t, "main", chunks[0].ID)
		assert.Equal(t, "hello world", chunks[0].Text)
	})

	t.Run("SplitsOnLineBoundaries", func(t *testing.T) {
		lines := make([]string, 40)
		for i := range lines {
			lines[i] = strings.Repeat("x", 90)
		}
		text := strings.Join(lines, "\n")

		chunks := Split(text, 1000)
		require.Greater(t, len(chunks), 1)
		for i, c := range chunks {
			assert.Equal(t, "main["+strconv.Itoa(i)+"]", c.ID)
			// No line is ever cut.
			for _, line := range strings.Split(c.Text, "\n") {
				assert.Len(t, line, 90)
			}
		}

		// Reassembly loses nothing.
		var joined []string
		for _, c := range chunks {
			joined = append(joined, c.Text)
		}
		assert.Equal(t, text, strings.Join(joined, "\n"))
	})

	t.Run("FileDelimiters", func(t *testing.T) {
		raw := "--- FILE: a.go ---\npackage a\n--- FILE: b.go ---\npackage b\n"
		chunks := Split(raw, 8000)
		require.Len(t, chunks, 2)
		assert.Equal(t, "a.go", chunks[0].ID)
		assert.Equal(t, "package a", chunks[0].Text)
		assert.Equal(t, "b.go", chunks[1].ID)
		assert.Equal(t, "package b", chunks[1].Text)
	})

	t.Run("PreambleBeforeFirstDelimiter", func(t *testing.T) {
		raw := "intro text\n--- FILE: a.go ---\npackage a\n"
		chunks := Split(raw, 8000)
		require.Len(t, chunks, 2)
		assert.Equal(t, "preamble", chunks[0].ID)
		assert.Equal(t, "intro text", chunks[0].Text)
	})

	t.Run("OversizedLineGetsOwnChunk", func(t *testing.T) {
		text := "short\n" + strings.Repeat("y", 500) + "\nshort again"
		chunks := Split(text, 100)
		require.Len(t, chunks, 3)
	})
}
