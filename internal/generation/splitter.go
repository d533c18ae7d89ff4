package generation

import (
	"strings"
	"unicode/utf8"
)

// Splitter thresholds. Lengths are measured in runes.
const (
	SplitThreshold = 8000
	ChunkSize      = 4000
	ChunkOverlap   = 200
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// TextSplitter breaks long text into overlapping chunks, preferring paragraph
// boundaries, then line boundaries, then word boundaries, and finally
// splitting between individual characters.
type TextSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// NewTextSplitter returns a splitter with the default separators.
func NewTextSplitter(chunkSize, overlap int) *TextSplitter {
	return &TextSplitter{ChunkSize: chunkSize, ChunkOverlap: overlap, Separators: defaultSeparators}
}

// SplitText splits text into chunks of at most ChunkSize runes where the
// separators allow it, with roughly ChunkOverlap runes shared between
// consecutive chunks.
func (s *TextSplitter) SplitText(text string) []string {
	return s.split(text, s.Separators)
}

func (s *TextSplitter) split(text string, separators []string) []string {
	separator := ""
	var remaining []string
	if n := len(separators); n > 0 {
		separator = separators[n-1]
	}
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	var chunks, pending []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if utf8.RuneCountInString(piece) < s.ChunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending)...)
			pending = nil
		}
		if len(remaining) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, remaining)...)
		}
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending)...)
	}
	return chunks
}

// merge greedily packs pieces into chunks, carrying trailing pieces forward
// as overlap. Separators are already attached to the pieces.
func (s *TextSplitter) merge(pieces []string) []string {
	var (
		chunks  []string
		current []string
		total   int
	)
	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if total+n > s.ChunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.ChunkOverlap || (total+n > s.ChunkSize && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitKeepingSeparator splits text on sep and prefixes every piece after the
// first with the separator that preceded it. An empty sep yields single runes.
func splitKeepingSeparator(text, sep string) []string {
	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, sep)
	for i, p := range parts {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}
