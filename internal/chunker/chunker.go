// Package chunker divides long documents into reading sessions: runs of
// consecutive sections bounded by word count, split on heading, paragraph
// and sentence boundaries in that order of preference.
package chunker

import (
	"slices"
	"strings"

	"github.com/dgallion1/speedread/internal/doctree"
	"github.com/dgallion1/speedread/internal/textproc"
)

// Config controls chunking behavior.
type Config struct {
	TargetWords int // soft ceiling per chunk
	MinWords    int // a chunk is not closed before it reaches this size
}

// DefaultConfig returns roughly five minutes of reading at average speed.
func DefaultConfig() Config {
	return Config{
		TargetWords: 1500,
		MinWords:    150,
	}
}

// Chunk is one reading session.
type Chunk struct {
	Index      int      `json:"index"`
	Breadcrumb []string `json:"breadcrumb,omitempty"`
	Text       string   `json:"text"`
	Words      int      `json:"word_count"`
	PageStart  int      `json:"page_start,omitempty"`
	PageEnd    int      `json:"page_end,omitempty"`
}

type piece struct {
	text  string
	words int
	crumb []string
	page  int
}

// Split walks doc and packs its text into chunks. Headings travel with the
// paragraph that follows them, so a chunk never ends on a bare heading
// unless the document does.
func Split(doc *doctree.Document, cfg Config) []Chunk {
	if cfg.TargetWords <= 0 {
		cfg.TargetWords = DefaultConfig().TargetWords
	}
	if cfg.MinWords <= 0 {
		cfg.MinWords = DefaultConfig().MinWords
	}
	cfg.MinWords = min(cfg.MinWords, cfg.TargetWords)

	var (
		pieces []piece
		lead   []string
	)
	add := func(text string, crumb []string, page int) {
		if len(lead) > 0 {
			text = strings.Join(append(lead, text), "\n\n")
			lead = nil
		}
		pieces = append(pieces, piece{text: text, words: textproc.CountWords(text), crumb: crumb, page: page})
	}

	var walk func(secs []*doctree.Section, crumb []string)
	walk = func(secs []*doctree.Section, crumb []string) {
		for _, s := range secs {
			bc := crumb
			if h := strings.TrimSpace(s.Heading); h != "" {
				bc = append(slices.Clip(crumb), h)
				lead = append(lead, h)
			}
			for _, para := range paragraphs(s.Text) {
				for _, part := range splitLong(para, cfg.TargetWords) {
					add(part, bc, s.Page)
				}
			}
			walk(s.Children, bc)
		}
	}
	walk(doc.Sections, nil)
	if len(lead) > 0 {
		text := strings.Join(lead, "\n\n")
		lead = nil
		pieces = append(pieces, piece{text: text, words: textproc.CountWords(text)})
	}
	return pack(pieces, cfg)
}

func pack(pieces []piece, cfg Config) []Chunk {
	var (
		chunks []Chunk
		cur    []piece
		words  int
	)
	flush := func() {
		c := Chunk{Index: len(chunks), Breadcrumb: cur[0].crumb, Words: words}
		texts := make([]string, len(cur))
		for i, p := range cur {
			texts[i] = p.text
			if p.page > 0 {
				if c.PageStart == 0 {
					c.PageStart = p.page
				}
				c.PageEnd = p.page
			}
		}
		c.Text = strings.Join(texts, "\n\n")
		chunks = append(chunks, c)
		cur, words = nil, 0
	}

	for _, p := range pieces {
		if words >= cfg.MinWords && words+p.words > cfg.TargetWords {
			flush()
		}
		cur = append(cur, p)
		words += p.words
	}
	if len(cur) == 0 {
		return chunks
	}
	if words < cfg.MinWords && len(chunks) > 0 {
		// short tail joins the previous session
		last := &chunks[len(chunks)-1]
		for _, p := range cur {
			last.Text += "\n\n" + p.text
			if p.page > 0 {
				last.PageEnd = p.page
			}
		}
		last.Words += words
		return chunks
	}
	flush()
	return chunks
}

func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitLong breaks a paragraph over limit words into sentence runs, and a
// sentence over limit into plain word runs.
func splitLong(para string, limit int) []string {
	if textproc.CountWords(para) <= limit {
		return []string{para}
	}

	var (
		out   []string
		cur   []string
		words int
	)
	for _, sent := range sentences(para) {
		n := textproc.CountWords(sent)
		if words > 0 && words+n > limit {
			out = append(out, strings.Join(cur, " "))
			cur, words = nil, 0
		}
		if n > limit {
			out = append(out, wordRuns(sent, limit)...)
			continue
		}
		cur = append(cur, sent)
		words += n
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

// sentences splits after terminal punctuation followed by whitespace.
func sentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' || text[i+1] == '\n' {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func wordRuns(text string, limit int) []string {
	fields := strings.Fields(text)
	var out []string
	for len(fields) > 0 {
		n := min(limit, len(fields))
		out = append(out, strings.Join(fields[:n], " "))
		fields = fields[n:]
	}
	return out
}
