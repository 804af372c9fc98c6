package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/speedread/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files and fetched web pages. Only the main
// article is read when the page marks one up.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := titleFromFilename(filename)
	if t := findTitle(doc); t != "" {
		title = t
	}

	b := doctree.NewBuilder(title)
	walkHTML(b, ArticleRoot(doc))
	return b.Document(), nil
}

// ArticleRoot returns the element holding the page's main content: the
// first <article>, else <main>, else <body>, else the document itself.
func ArticleRoot(doc *html.Node) *html.Node {
	for _, tag := range []string{"article", "main", "body"} {
		if n := findElement(doc, tag); n != nil {
			return n
		}
	}
	return doc
}

// walkHTML feeds headings and block text under n into b.
func walkHTML(b *doctree.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.Paragraph(collapseSpace(n.Data))
		return
	case html.ElementNode:
		if level := headingLevel(n.Data); level > 0 {
			b.Heading(level, textContent(n))
			return
		}
		switch n.Data {
		case "script", "style", "noscript", "template", "nav", "footer", "header", "aside", "form", "svg":
			return
		case "p", "li", "td", "th", "blockquote", "pre", "dt", "dd", "figcaption", "caption":
			b.Paragraph(textContent(n))
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(b, c)
	}
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// textContent returns the text under n with whitespace runs collapsed.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return collapseSpace(buf.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func findTitle(n *html.Node) string {
	if t := findElement(n, "title"); t != nil {
		return textContent(t)
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
