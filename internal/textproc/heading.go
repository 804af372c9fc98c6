package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxHeadingLen is the longest line, in runes, still considered a heading.
const maxHeadingLen = 80

// LineMeta describes the source line a token came from.
type LineMeta struct {
	IsHeading bool `json:"is_heading"`
	IsAllCaps bool `json:"is_all_caps"`
}

// Token is a word tagged with the metadata of its originating line.
type Token struct {
	Word string
	Meta LineMeta
}

// Line is one non-empty source line together with the tokens it yields when
// normalized on its own.
type Line struct {
	Text  string
	Meta  LineMeta
	Words int
}

// Lines splits raw text on newlines and classifies every non-empty line.
// Classification runs on the original text because normalization removes
// line boundaries.
func Lines(raw string) []Line {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var lines []Line
	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, Line{
			Text: l,
			Meta: LineMeta{
				IsHeading: IsLikelyHeading(l),
				IsAllCaps: IsUpper(l),
			},
			Words: len(SplitWords(Normalize(l))),
		})
	}
	return lines
}

// Align tags globally tokenized words with line metadata, consuming
// line.Words tokens per line in order. Words left over once the lines are
// exhausted (e.g. from cross-line merges) get zero metadata.
func Align(words []string, lines []Line) []Token {
	tokens := make([]Token, 0, len(words))
	idx := 0
	for _, line := range lines {
		for range line.Words {
			if idx >= len(words) {
				break
			}
			tokens = append(tokens, Token{Word: words[idx], Meta: line.Meta})
			idx++
		}
	}
	for ; idx < len(words); idx++ {
		tokens = append(tokens, Token{Word: words[idx]})
	}
	return tokens
}

// SplitWordsWithMetadata tokenizes raw text and tags each token with the
// heading/all-caps classification of the line it came from.
func SplitWordsWithMetadata(raw string) []Token {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return Align(SplitWords(Normalize(raw)), Lines(raw))
}

// IsLikelyHeading reports whether a single line looks like a title or
// section header rather than body prose.
func IsLikelyHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || utf8.RuneCountInString(line) > maxHeadingLen {
		return false
	}

	upper := IsUpper(line)
	if strings.Contains(line, ".") && !upper {
		return false
	}

	words := len(strings.Fields(line))
	if upper && (words >= 2 || utf8.RuneCountInString(line) >= 8) {
		return true
	}

	if strings.HasSuffix(line, ".") {
		return false
	}
	for _, p := range []string{"!", "?", ","} {
		if strings.HasSuffix(line, p) {
			return false
		}
	}
	first, _ := utf8.DecodeRuneInString(line)
	return unicode.IsUpper(first) && words <= 6
}

// IsUpper reports whether s has at least one cased rune and no lowercase or
// titlecase runes.
func IsUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}
