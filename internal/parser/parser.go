// Package parser extracts readable text from uploaded documents, keeping
// headings on their own lines so they can be paced as headings.
package parser

import (
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dgallion1/speedread/internal/doctree"
	"github.com/dgallion1/speedread/internal/pipeline"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// Options tunes format-specific behaviour.
type Options struct {
	PDFMaxPages   int   // 0 means no limit
	PDFFallback   bool  // shell out to pdftotext when the Go reader fails
	MaxEntryBytes int64 // cap on an EPUB entry or a decompressed .xz upload
}

// SupportedExtensions lists file extensions this service can read. Any of
// them may also be uploaded xz-compressed with an extra ".xz" suffix.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".xlsx":     true,
	".epub":     true,
}

// imageExtensions are recognised but need OCR, which is not available.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ForFile returns the parser for a filename's extension.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{MaxPages: opts.PDFMaxPages, FallbackPdftotext: opts.PDFFallback}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".xlsx":
		return &XLSXParser{}, nil
	case ".epub":
		return &EPUBParser{MaxEntryBytes: opts.MaxEntryBytes}, nil
	}
	if imageExtensions[ext] {
		return nil, pipeline.NotImplemented("text extraction from %s images requires OCR, which is not supported", ext)
	}
	if ext == "" {
		return nil, pipeline.Invalid("file must have an extension")
	}
	return nil, pipeline.Invalid("unsupported file type %s (allowed: %s)", ext, strings.Join(Extensions(), ", "))
}

// IsSupportedExtension checks if a file extension is supported, looking
// through a trailing ".xz".
func IsSupportedExtension(filename string) bool {
	name := strings.ToLower(filename)
	name = strings.TrimSuffix(name, ".xz")
	return SupportedExtensions[filepath.Ext(name)]
}

// Extensions returns the supported extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(SupportedExtensions))
	for ext := range SupportedExtensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
