package loaders

import (
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// Page is one page of raw extracted text from a source document.
type Page struct {
	Number int
	Text   string
}

// Loader reads a source document into per-page raw text.
type Loader interface {
	Load(ctx context.Context, path string) ([]Page, error)
}

// PDFLoader implements Loader for PDF files.
type PDFLoader struct{}

// NewPDFLoader creates a new PDFLoader.
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

// Load extracts plain text per page. Pages whose text extraction fails
// are skipped rather than failing the whole document; scanned image-only
// pages yield empty text here (OCR is an external concern).
func (l *PDFLoader) Load(ctx context.Context, path string) ([]Page, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to sniff %s: %w", path, err)
	}
	if !mt.Is("application/pdf") {
		return nil, fmt.Errorf("unsupported file type %s for %s", mt.String(), path)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []Page
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	return pages, nil
}

var _ Loader = (*PDFLoader)(nil)
