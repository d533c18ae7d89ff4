// Package pdf extracts plain text from PDF documents using ledongthuc/pdf.
package pdf

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/phrazzld/questiongen/internal/domain"
)

// DefaultMaxPages bounds how many pages are read from a single upload.
const DefaultMaxPages = 20

// Extractor reads the text layer of a PDF. It has no OCR fallback, so
// scanned documents yield domain.ErrExtraction.
type Extractor struct {
	MaxPages int
}

// NewExtractor returns an Extractor reading at most maxPages pages.
// A non-positive maxPages selects DefaultMaxPages.
func NewExtractor(maxPages int) *Extractor {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Extractor{MaxPages: maxPages}
}

// Extract implements materials.Extractor.
func (e *Extractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	// The parser panics on some malformed documents.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: malformed PDF: %v", domain.ErrExtraction, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open PDF: %v", domain.ErrExtraction, err)
	}

	pages := reader.NumPage()
	if e.MaxPages > 0 && pages > e.MaxPages {
		pages = e.MaxPages
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: failed to read page %d: %v", domain.ErrExtraction, i, err)
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(content)
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("%w: PDF has no text layer", domain.ErrExtraction)
	}
	return out, nil
}
