package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/speedread/internal/doctree"
	"github.com/dgallion1/speedread/internal/pipeline"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It tries the Go library first, then falls
// back to pdftotext if enabled and available. Each page becomes a section.
type PDFParser struct {
	MaxPages          int
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "speedread-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, err := p.extractPages(tmpPath)
	if err != nil && p.FallbackPdftotext && !isPageLimit(err) {
		pages, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, err
	}
	if p.MaxPages > 0 && len(pages) > p.MaxPages {
		return nil, pageLimitError(len(pages), p.MaxPages)
	}

	b := doctree.NewBuilder(titleFromFilename(filename))
	for i, page := range pages {
		b.SetPage(i + 1)
		b.Paragraph(page)
	}
	return b.Document(), nil
}

func pageLimitError(n, limit int) error {
	return pipeline.Invalid("pdf has %d pages, the limit is %d", n, limit)
}

func isPageLimit(err error) bool {
	return errors.Is(err, pipeline.ErrInvalidInput)
}

func (p *PDFParser) extractPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	if p.MaxPages > 0 && numPages > p.MaxPages {
		return nil, pageLimitError(numPages, p.MaxPages)
	}

	pages := make([]string, 0, numPages)
	empty := true
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		if strings.TrimSpace(text) != "" {
			empty = false
		}
		pages = append(pages, text)
	}
	if empty {
		return nil, errors.New("pdf has no extractable text")
	}
	return pages, nil
}

func extractPdftotext(path string) ([]string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext separates pages with form feeds
	return strings.Split(string(out), "\f"), nil
}
