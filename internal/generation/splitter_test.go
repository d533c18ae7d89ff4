package generation_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/phrazzld/questiongen/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSplitter_ShortTextIsOneChunk(t *testing.T) {
	s := generation.NewTextSplitter(100, 10)
	assert.Equal(t, []string{"a short paragraph"}, s.SplitText("a short paragraph"))
}

func TestTextSplitter_PrefersParagraphs(t *testing.T) {
	s := generation.NewTextSplitter(30, 0)
	text := "first paragraph here\n\nsecond paragraph here\n\nthird one"

	chunks := s.SplitText(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, "first paragraph here", chunks[0])
	assert.Equal(t, "second paragraph here", chunks[1])
	assert.Equal(t, "third one", chunks[2])
}

func TestTextSplitter_ChunksRespectSizeAndOverlap(t *testing.T) {
	s := generation.NewTextSplitter(generation.ChunkSize, generation.ChunkOverlap)

	var words []string
	for i := 0; i < 3000; i++ {
		words = append(words, "word")
	}
	text := strings.Join(words, " ")

	chunks := s.SplitText(text)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), generation.ChunkSize)
	}

	// consecutive chunks share a tail/head region
	first, second := chunks[0], chunks[1]
	tail := first[len(first)-50:]
	assert.Contains(t, second[:generation.ChunkOverlap+50], strings.TrimSpace(tail))
}

func TestTextSplitter_FallsBackToCharacters(t *testing.T) {
	s := generation.NewTextSplitter(10, 0)
	chunks := s.SplitText(strings.Repeat("é", 25))

	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("é", 10), chunks[0])
	assert.Equal(t, strings.Repeat("é", 10), chunks[1])
	assert.Equal(t, strings.Repeat("é", 5), chunks[2])
}

func TestTextSplitter_Empty(t *testing.T) {
	s := generation.NewTextSplitter(10, 2)
	assert.Empty(t, s.SplitText(""))
}
