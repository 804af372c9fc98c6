package textproc

import (
	"regexp"
	"strings"
)

// SplitWords splits normalized text into display tokens. Words carrying two
// or more hyphens are broken into hyphen-joined pairs so that long compounds
// stay readable at speed.
func SplitWords(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		words = append(words, splitHyphenated(f)...)
	}
	return words
}

// splitHyphenated re-pairs "a-b-c-d-e" as ["a-b", "c-d", "e"]. Words with
// fewer than two hyphens are returned unchanged. A trailing empty fragment,
// as in "a--", is dropped.
func splitHyphenated(word string) []string {
	if strings.Count(word, "-") < 2 {
		return []string{word}
	}
	parts := strings.Split(word, "-")
	out := make([]string, 0, (len(parts)+1)/2)
	for i := 0; i < len(parts); i += 2 {
		if i+1 < len(parts) {
			out = append(out, parts[i]+"-"+parts[i+1])
		} else if parts[i] != "" {
			out = append(out, parts[i])
		}
	}
	return out
}

// CountWords returns the number of tokens the pipeline would produce for text
// before pacing.
func CountWords(text string) int {
	return len(SplitWords(Normalize(text)))
}

var sentenceEndRe = regexp.MustCompile(`[.!?]+`)

// CountSentences counts runs of terminal punctuation. A text with none still
// counts as one sentence.
func CountSentences(text string) int {
	return max(1, len(sentenceEndRe.FindAllStringIndex(text, -1)))
}

var (
	leadingNonWordRe  = regexp.MustCompile(`^[^\p{L}\p{N}_]+`)
	trailingNonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_]+$`)
)

// CleanPunctuation strips leading and trailing non-word runes, keeping
// interior punctuation such as the apostrophe in "don't".
func CleanPunctuation(word string) string {
	word = leadingNonWordRe.ReplaceAllString(word, "")
	return trailingNonWordRe.ReplaceAllString(word, "")
}
