package corpus

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	markdownImageRe = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	fileDelimiterRe = regexp.MustCompile(`(?m)^--- FILE: .*? ---$`)
)

// Sanitize strips markdown images and collapses all whitespace runs to a
// single space. Embedding models tokenize the result more economically and
// the snippet stays printable.
func Sanitize(text string) string {
	text = markdownImageRe.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Chunk is a piece of a document small enough to embed.
type Chunk struct {
	// ID distinguishes chunks of the same document, e.g. "main" or
	// "main[2]". It becomes part of the item key.
	ID string

	// Text is the raw chunk content (not yet sanitized).
	Text string
}

// Split breaks raw text into chunks of at most limit bytes.
//
// Documents that bundle multiple files behind "--- FILE: name ---"
// delimiter lines are split per file first, with the delimited name as the
// chunk ID base. Everything else splits under the "main" base. Oversized
// sections split on line boundaries so no line is ever cut mid-word.
func Split(raw string, limit int) []Chunk {
	if limit <= 0 {
		limit = 8000
	}

	delims := fileDelimiterRe.FindAllStringIndex(raw, -1)
	if len(delims) == 0 {
		return splitLines(raw, "main", limit)
	}

	var chunks []Chunk
	if head := strings.TrimSpace(raw[:delims[0][0]]); head != "" {
		chunks = append(chunks, splitLines(head, "preamble", limit)...)
	}
	for i, d := range delims {
		header := strings.TrimSpace(raw[d[0]:d[1]])
		header = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(header, "--- FILE:"), "---"))

		end := len(raw)
		if i+1 < len(delims) {
			end = delims[i+1][0]
		}
		body := strings.TrimSpace(raw[d[1]:end])
		if body == "" {
			continue
		}
		chunks = append(chunks, splitLines(body, header, limit)...)
	}
	return chunks
}

// splitLines splits text on newlines so that each chunk stays under limit.
// A single chunk keeps the plain base ID; multiple chunks get indexed IDs.
func splitLines(text, base string, limit int) []Chunk {
	if len(text) <= limit {
		return []Chunk{{ID: base, Text: text}}
	}

	var chunks []Chunk
	var current []string
	currentLen := 0
	idx := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			ID:   fmt.Sprintf("%s[%d]", base, idx),
			Text: strings.Join(current, "\n"),
		})
		idx++
		current = current[:0]
		currentLen = 0
	}

	for _, line := range strings.Split(text, "\n") {
		lineLen := len(line) + 1
		if currentLen+lineLen > limit {
			flush()
		}
		current = append(current, line)
		currentLen += lineLen
	}
	flush()

	return chunks
}
