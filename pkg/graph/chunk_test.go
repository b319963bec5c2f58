package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lectureText(sentences int) string {
	var b strings.Builder
	for i := range sentences {
		if i%3 == 0 {
			b.WriteString("Why does the learning rate matter so much? ")
		} else {
			b.WriteString("Gradient descent updates parameters step by step. ")
		}
	}
	return b.String()
}

func TestChunkTextConfigurationErrors(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"overlap equals size", 100, 100},
		{"overlap larger", 100, 150},
		{"zero size", 0, 0},
		{"negative overlap", 100, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ChunkText("some text.", tt.chunkSize, tt.overlap)
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}
}

func TestChunkTextEmpty(t *testing.T) {
	chunks, err := ChunkText("", 100, 10)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkTextSingleChunk(t *testing.T) {
	text := lectureText(3)
	chunks, err := ChunkText(text, len([]rune(text)), 50)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])

	chunks, err = ChunkText(text, 4000, 500)
	require.NoError(t, err)
	assert.Equal(t, []string{text}, chunks)
}

func TestChunkSpansCoverAndOverlap(t *testing.T) {
	text := lectureText(200)
	n := len([]rune(text))
	const size, overlap = 1000, 150

	spans, err := ChunkSpans(text, size, overlap)
	require.NoError(t, err)
	require.Greater(t, len(spans), 1)

	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, n, spans[len(spans)-1].End)
	for i, s := range spans {
		assert.LessOrEqual(t, s.End-s.Start, size)
		assert.Greater(t, s.End, s.Start)
		if i == 0 {
			continue
		}
		prev := spans[i-1]
		// no gaps, and the shared region is exactly the configured overlap
		assert.Equal(t, prev.End-overlap, s.Start)
		assert.Greater(t, s.Start, prev.Start)
	}
}

func TestChunkSpansEndOnSentenceBoundary(t *testing.T) {
	text := lectureText(100)
	runes := []rune(text)

	spans, err := ChunkSpans(text, 700, 100)
	require.NoError(t, err)
	for _, s := range spans[:len(spans)-1] {
		last := runes[s.End-1]
		assert.Contains(t, []rune{'.', '?', '!'}, last)
	}
}

func TestChunkSpansNoTerminatorUsesFullWindow(t *testing.T) {
	text := strings.Repeat("word ", 100)
	spans, err := ChunkSpans(text, 120, 20)
	require.NoError(t, err)
	assert.Equal(t, Span{Start: 0, End: 120}, spans[0])
	assert.Equal(t, 100, spans[1].Start)
}

func TestChunkSpansTerminatorTooEarlyIsIgnored(t *testing.T) {
	// the only terminator sits so close to the window start that cutting
	// there would stop the walk from advancing
	text := "A." + strings.Repeat("x", 300)
	spans, err := ChunkSpans(text, 100, 50)
	require.NoError(t, err)
	assert.Equal(t, 100, spans[0].End)
	for i := 1; i < len(spans); i++ {
		assert.Greater(t, spans[i].Start, spans[i-1].Start)
	}
}

func TestChunkTextMultibyte(t *testing.T) {
	text := strings.Repeat("Größe ändert sich. ", 40)
	chunks, err := ChunkText(text, 100, 10)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.True(t, strings.HasPrefix(text, c) || strings.Contains(text, c))
	}
}
