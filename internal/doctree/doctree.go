// Package doctree holds extracted documents as a tree of headed sections and
// renders them back to reader text.
package doctree

import "strings"

// Document is the root of an extracted document.
type Document struct {
	Title    string     // from metadata, first heading or filename
	Source   string     // filename or URL
	Format   string     // lowercase extension without the dot, e.g. "pdf"
	Sections []*Section // top-level sections
}

// Section is one node of the document tree. A section without a heading
// holds body text only.
type Section struct {
	Heading  string
	Level    int
	Text     string
	Page     int // 1-indexed source page, 0 if unknown
	Children []*Section
}

// Walk visits every section depth-first, in document order.
func (d *Document) Walk(fn func(s *Section, depth int)) {
	var walk func([]*Section, int)
	walk = func(secs []*Section, depth int) {
		for _, s := range secs {
			fn(s, depth)
			walk(s.Children, depth+1)
		}
	}
	walk(d.Sections, 0)
}

// Headings returns every section heading in document order.
func (d *Document) Headings() []string {
	var out []string
	d.Walk(func(s *Section, _ int) {
		if s.Heading != "" {
			out = append(out, s.Heading)
		}
	})
	return out
}

// Text renders the document as plain text. Headings sit on their own line,
// separated from the surrounding paragraphs by a blank line, so line-based
// heading detection sees them.
func (d *Document) Text() string {
	var blocks []string
	d.Walk(func(s *Section, _ int) {
		if h := strings.TrimSpace(s.Heading); h != "" {
			blocks = append(blocks, h)
		}
		if t := strings.TrimSpace(s.Text); t != "" {
			blocks = append(blocks, t)
		}
	})
	return strings.Join(blocks, "\n\n")
}

type frame struct {
	sec   *Section
	level int
}

// Builder assembles a Document from a flat stream of headings and
// paragraphs, nesting sections by heading level.
type Builder struct {
	doc   *Document
	root  *Section
	stack []frame
	text  strings.Builder
	page  int
}

// NewBuilder starts a document with the given title.
func NewBuilder(title string) *Builder {
	root := &Section{}
	return &Builder{
		doc:   &Document{Title: title},
		root:  root,
		stack: []frame{{sec: root, level: 0}},
	}
}

// SetPage records the source page for sections opened from now on.
func (b *Builder) SetPage(page int) { b.page = page }

// Heading opens a new section at level (1 = top). Sections at the same or a
// deeper level are closed first.
func (b *Builder) Heading(level int, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if level < 1 {
		level = 1
	}
	b.flush()
	sec := &Section{Heading: text, Level: level, Page: b.page}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].sec
	parent.Children = append(parent.Children, sec)
	b.stack = append(b.stack, frame{sec: sec, level: level})
}

// Paragraph appends body text to the current section. Text outside any
// heading becomes a section of its own.
func (b *Builder) Paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if len(b.stack) == 1 {
		b.root.Children = append(b.root.Children, &Section{Text: text, Page: b.page})
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(text)
}

// Section appends a finished top-level section, closing any open headings.
func (b *Builder) Section(sec *Section) {
	b.flush()
	b.stack = b.stack[:1]
	b.root.Children = append(b.root.Children, sec)
}

func (b *Builder) flush() {
	t := strings.TrimSpace(b.text.String())
	b.text.Reset()
	if t == "" {
		return
	}
	top := b.stack[len(b.stack)-1].sec
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// Document finishes and returns the document.
func (b *Builder) Document() *Document {
	b.flush()
	b.doc.Sections = b.root.Children
	return b.doc
}
