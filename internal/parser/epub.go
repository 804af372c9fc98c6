package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/dgallion1/speedread/internal/doctree"
	"golang.org/x/net/html"
)

// DefaultMaxEntryBytes caps a single archive entry when no limit is set.
const DefaultMaxEntryBytes = 16 << 20

// EPUBParser handles EPUB books. Chapters are read in spine order and each
// XHTML document is walked like an HTML page.
type EPUBParser struct {
	MaxEntryBytes int64
}

func (p *EPUBParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read epub: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open epub: %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	opfPath, err := p.rootfile(files)
	if err != nil {
		return nil, err
	}
	opf, err := p.readXML(files, opfPath)
	if err != nil {
		return nil, err
	}

	title := titleFromFilename(filename)
	if t := xmlquery.FindOne(opf, "//*[local-name()='metadata']/*[local-name()='title']"); t != nil {
		if s := strings.TrimSpace(t.InnerText()); s != "" {
			title = s
		}
	}

	manifest := make(map[string]string)
	for _, item := range xmlquery.Find(opf, "//*[local-name()='manifest']/*[local-name()='item']") {
		manifest[item.SelectAttr("id")] = item.SelectAttr("href")
	}

	b := doctree.NewBuilder(title)
	base := path.Dir(opfPath)
	for _, ref := range xmlquery.Find(opf, "//*[local-name()='spine']/*[local-name()='itemref']") {
		href, ok := manifest[ref.SelectAttr("idref")]
		if !ok {
			continue
		}
		name := path.Join(base, href)
		f, ok := files[name]
		if !ok {
			continue
		}
		body, err := p.readEntry(f)
		if err != nil {
			return nil, err
		}
		doc, err := html.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		walkHTML(b, ArticleRoot(doc))
	}
	return b.Document(), nil
}

func (p *EPUBParser) rootfile(files map[string]*zip.File) (string, error) {
	container, err := p.readXML(files, "META-INF/container.xml")
	if err != nil {
		return "", err
	}
	node := xmlquery.FindOne(container, "//*[local-name()='rootfile']")
	if node == nil {
		return "", errors.New("epub container has no rootfile")
	}
	full := node.SelectAttr("full-path")
	if full == "" {
		return "", errors.New("epub rootfile has no full-path")
	}
	return full, nil
}

func (p *EPUBParser) readXML(files map[string]*zip.File, name string) (*xmlquery.Node, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("epub is missing %s", name)
	}
	body, err := p.readEntry(f)
	if err != nil {
		return nil, err
	}
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return doc, nil
}

func (p *EPUBParser) readEntry(f *zip.File) ([]byte, error) {
	limit := p.MaxEntryBytes
	if limit <= 0 {
		limit = DefaultMaxEntryBytes
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	body, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("epub entry %s exceeds %d bytes", f.Name, limit)
	}
	return body, nil
}
