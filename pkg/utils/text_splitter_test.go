package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInputIsSingleChunk(t *testing.T) {
	chunks := SplitText("short text", 100, 10)
	assert.Equal(t, []string{"short text"}, chunks)
}

func TestSplitTextOverlapCarriesAcrossBoundaries(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := SplitText(text, 40, 10)

	assert.True(t, len(chunks) > 1)
	for i := 1; i < len(chunks); i++ {
		// Each chunk starts with the tail of the previous one.
		prevTail := chunks[i-1][len(chunks[i-1])-10:]
		assert.True(t, strings.HasPrefix(chunks[i], prevTail),
			"chunk %d must start with the previous chunk's overlap", i)
	}
}

func TestSplitTextCoversWholeInput(t *testing.T) {
	text := strings.Repeat("x", 95)
	chunks := SplitText(text, 40, 10)

	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(text, last))

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	assert.GreaterOrEqual(t, total, len(text))
}
