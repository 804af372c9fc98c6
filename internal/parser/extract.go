package parser

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/speedread/internal/doctree"
	"github.com/dgallion1/speedread/internal/pipeline"
	"github.com/dgallion1/speedread/internal/textproc"
	"github.com/dustin/go-humanize"
	"github.com/ulikunitz/xz"
)

// Extraction is the reader text pulled out of one uploaded document.
type Extraction struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Source      string            `json:"source"`
	Format      string            `json:"format"`
	Text        string            `json:"text"`
	Headings    []string          `json:"headings"`
	Words       int               `json:"word_count"`
	ContentHash string            `json:"content_hash"`
	Document    *doctree.Document `json:"-"`
}

// Extract parses r according to filename's extension and returns its
// cleaned text. A trailing ".xz" is decompressed first, up to
// opts.MaxEntryBytes of output.
func Extract(r io.Reader, filename string, opts Options) (*Extraction, error) {
	name := filename
	if strings.EqualFold(filepath.Ext(name), ".xz") {
		data, err := decompressXZ(r, opts.MaxEntryBytes)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
		name = name[:len(name)-len(".xz")]
	}

	p, err := ForFile(name, opts)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(r, name)
	if err != nil {
		var pe *pipeline.Error
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, pipeline.Invalid("could not read %s: %v", filepath.Base(name), err)
	}
	return FromDocument(doc, name)
}

func decompressXZ(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxEntryBytes
	}
	zr, err := xz.NewReader(r)
	if err != nil {
		return nil, pipeline.Invalid("invalid xz stream: %v", err)
	}
	data, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, pipeline.Invalid("invalid xz stream: %v", err)
	}
	if int64(len(data)) > limit {
		return nil, pipeline.Invalid("decompressed file exceeds %s", humanize.IBytes(uint64(limit)))
	}
	return data, nil
}

// FromDocument finishes a parsed document into an Extraction.
func FromDocument(doc *doctree.Document, source string) (*Extraction, error) {
	doc.Source = source
	if doc.Format == "" {
		doc.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(source)), ".")
	}

	text := CleanExtractedText(doc.Text())
	if text == "" {
		return nil, pipeline.Invalid("no readable text found in %s", filepath.Base(source))
	}
	return &Extraction{
		ID:          pipeline.NewID(),
		Title:       doc.Title,
		Source:      doc.Source,
		Format:      doc.Format,
		Text:        text,
		Headings:    doc.Headings(),
		Words:       textproc.CountWords(text),
		ContentHash: pipeline.ContentHash([]byte(text)),
		Document:    doc,
	}, nil
}
