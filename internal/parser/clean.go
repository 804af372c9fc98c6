package parser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	pageOfRe     = regexp.MustCompile(`(?i)\bpage\s+\d+\s+of\s+\d+\b`)
	pageLineRe   = regexp.MustCompile(`(?i)^\s*page\s+\d+(\s+of\s+\d+)?\s*$`)
	inlineSpace  = regexp.MustCompile(`[ \t\p{Zs}]+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	invisibleSet = runes.In(&unicode.RangeTable{
		R16: []unicode.Range16{
			{Lo: 0x00ad, Hi: 0x00ad, Stride: 1}, // soft hyphen
			{Lo: 0x200b, Hi: 0x200d, Stride: 1}, // zero-width space/joiners
			{Lo: 0x2060, Hi: 0x2060, Stride: 1}, // word joiner
			{Lo: 0xfeff, Hi: 0xfeff, Stride: 1}, // BOM
		},
	})
)

// CleanExtractedText tidies text pulled out of a document: NFC form,
// invisible characters dropped, page-number furniture removed, whitespace
// collapsed within lines and blank-line runs capped at one. Line structure
// is kept so headings stay detectable.
func CleanExtractedText(text string) string {
	t := transform.Chain(norm.NFC, runes.Remove(invisibleSet))
	if out, _, err := transform.String(t, text); err == nil {
		text = out
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\f", "\n\n")
	text = pageOfRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if pageLineRe.MatchString(line) {
			continue
		}
		line = inlineSpace.ReplaceAllString(line, " ")
		kept = append(kept, strings.TrimRightFunc(strings.TrimLeft(line, " "), unicode.IsSpace))
	}
	text = strings.Join(kept, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
