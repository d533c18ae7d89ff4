// Package materials turns uploaded documents into the plain text that
// question generation works from.
package materials

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/questiongen/internal/domain"
)

// Source records where a task's materials came from.
type Source string

// Known sources.
const (
	SourceText Source = "text"
	SourcePDF  Source = "pdf"
)

// Extractor pulls readable text out of a document. Implementations return
// an error wrapping domain.ErrExtraction when the document has no text.
type Extractor interface {
	Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, r io.ReaderAt, size int64) (string, error)

// Extract implements Extractor.
func (f ExtractorFunc) Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error) {
	return f(ctx, r, size)
}

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether the document starts with the PDF header.
func IsPDF(r io.ReaderAt) bool {
	head := make([]byte, len(pdfMagic))
	n, _ := r.ReadAt(head, 0)
	return bytes.Equal(head[:n], pdfMagic)
}

// PlainText extracts UTF-8 text documents as-is.
var PlainText = ExtractorFunc(func(_ context.Context, r io.ReaderAt, size int64) (string, error) {
	data, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read document: %v", domain.ErrExtraction, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: document is neither PDF nor UTF-8 text", domain.ErrExtraction)
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: document is empty", domain.ErrExtraction)
	}
	return text, nil
})

// Sniffing dispatches to pdf for PDF documents and to PlainText otherwise.
// The returned Source names the extractor that ran.
type Sniffing struct {
	PDF Extractor
}

// Extract implements Extractor.
func (s Sniffing) Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error) {
	text, _, err := s.ExtractWithSource(ctx, r, size)
	return text, err
}

// ExtractWithSource behaves like Extract and reports which source kind was detected.
func (s Sniffing) ExtractWithSource(ctx context.Context, r io.ReaderAt, size int64) (string, Source, error) {
	if IsPDF(r) {
		text, err := s.PDF.Extract(ctx, r, size)
		return text, SourcePDF, err
	}
	text, err := PlainText.Extract(ctx, r, size)
	return text, SourceText, err
}
