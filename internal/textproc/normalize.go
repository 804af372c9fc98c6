package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

// Step is a single pure rewrite applied by Normalize.
type Step struct {
	Name  string
	Apply func(string) string
}

// ws matches one whitespace rune the way unicode.IsSpace does.
const ws = `[\s\v\x{85}\p{Z}]`

var (
	spacedEllipsisRe = regexp.MustCompile(`\.` + ws + `*\.` + ws + `*\.`)
	whitespaceRunRe  = regexp.MustCompile(ws + `+`)
	newlineRunRe     = regexp.MustCompile(`\n+`)
	sentencePauseRe  = regexp.MustCompile(`([.?!…])` + ws)
	colonPauseRe     = regexp.MustCompile(`:` + ws)
	multiSpaceRe     = regexp.MustCompile(ws + `{2,}`)

	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
	dashReplacer = strings.NewReplacer("—", " - ", "–", " - ")
)

// Steps is the normalization pipeline. Order is significant: the sentence
// pause expansion and the final two-space collapse interact, so reordering
// "equivalent" rules changes output.
var Steps = []Step{
	{"trim", strings.TrimSpace},
	{"quotes", quoteReplacer.Replace},
	{"ellipsis", func(s string) string { return spacedEllipsisRe.ReplaceAllString(s, "…") }},
	{"dashes", dashReplacer.Replace},
	{"whitespace", func(s string) string { return whitespaceRunRe.ReplaceAllString(s, " ") }},
	{"newlines", func(s string) string { return newlineRunRe.ReplaceAllString(s, " ") }},
	{"punctuation-spacing", spacePunctuation},
	{"sentence-pauses", func(s string) string { return sentencePauseRe.ReplaceAllString(s, "$1   ") }},
	{"colon-pauses", func(s string) string { return colonPauseRe.ReplaceAllString(s, ":   ") }},
	{"collapse-spaces", func(s string) string { return multiSpaceRe.ReplaceAllString(s, "  ") }},
	{"final-trim", strings.TrimSpace},
}

// Normalize canonicalizes raw text for tokenization. It is a single-pass
// transform: running it again over its own output is not guaranteed to be a
// no-op.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	for _, step := range Steps {
		text = step.Apply(text)
	}
	return text
}

// clausePunct are the runes that must be followed by whitespace so that
// "Hello.World" does not fuse into one token.
const clausePunct = ".?!:;,"

func spacePunctuation(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)
	for i, r := range runes {
		b.WriteRune(r)
		if strings.ContainsRune(clausePunct, r) && i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
