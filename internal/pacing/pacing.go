// Package pacing expands a token stream into the display sequence flashed by
// an RSVP reader: long and comma-bearing words are held longer, and blank
// pauses follow sentence endings and headings.
package pacing

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/speedread/internal/textproc"
)

const (
	DefaultLongWordThreshold = 7
	DefaultPauseCount        = 4

	// HeadingExitPauses is the number of blanks emitted when a heading ends.
	// It does not follow PauseCount.
	HeadingExitPauses = 5

	holdRepeat = 3
)

const (
	trimForLength = `.,!?;:()[]{}"'-`
	sentenceMarks = ".!?:;)"
)

// Config tunes the pacing rules. Zero values select the defaults.
type Config struct {
	LongWordThreshold int
	PauseCount        int
}

// DisplayUnit is one entry of the display sequence. An empty Text is a blank
// pause. RepeatCount is how many consecutive slots the unit occupies until
// Expand materializes it.
type DisplayUnit struct {
	Text        string
	IsHeading   bool
	RepeatCount int
}

// IsBlank reports whether the unit is a pause.
func (u DisplayUnit) IsBlank() bool { return u.Text == "" }

// Preprocessor applies the duplication and pause rules.
type Preprocessor struct {
	threshold int
	pauses    int
}

// New returns a Preprocessor for cfg.
func New(cfg Config) *Preprocessor {
	p := &Preprocessor{
		threshold: cfg.LongWordThreshold,
		pauses:    cfg.PauseCount,
	}
	if p.threshold <= 0 {
		p.threshold = DefaultLongWordThreshold
	}
	if p.pauses <= 0 {
		p.pauses = DefaultPauseCount
	}
	return p
}

// PauseCount returns the number of blanks inserted after a sentence ending.
func (p *Preprocessor) PauseCount() int { return p.pauses }

// LongWordThreshold returns the length above which a word is held.
func (p *Preprocessor) LongWordThreshold() int { return p.threshold }

// ShouldDuplicate reports whether w is held for three slots: its length with
// surrounding punctuation removed exceeds the threshold, or it carries a comma.
func (p *Preprocessor) ShouldDuplicate(w string) bool {
	clean := strings.Trim(w, trimForLength)
	return utf8.RuneCountInString(clean) > p.threshold || strings.Contains(w, ",")
}

// IsSentenceEnding reports whether w contains any of . ! ? : ; )
func IsSentenceEnding(w string) bool {
	return strings.ContainsAny(w, sentenceMarks)
}

func (p *Preprocessor) blanks(units []DisplayUnit, n int) []DisplayUnit {
	for range n {
		units = append(units, DisplayUnit{RepeatCount: 1})
	}
	return units
}

// Preprocess paces a flat word list with no heading awareness.
func (p *Preprocessor) Preprocess(words []string) []DisplayUnit {
	units := make([]DisplayUnit, 0, len(words)+len(words)/2)
	for _, w := range words {
		repeat := 1
		if p.ShouldDuplicate(w) {
			repeat = holdRepeat
		}
		units = append(units, DisplayUnit{Text: w, RepeatCount: repeat})
		if IsSentenceEnding(w) {
			units = p.blanks(units, p.pauses)
		}
	}
	return units
}

// PreprocessWithHeadings paces tokens tagged with line metadata. Headings are
// preceded by PauseCount blanks and followed by HeadingExitPauses blanks;
// heading and all-caps words are held like long words.
func (p *Preprocessor) PreprocessWithHeadings(tokens []textproc.Token) []DisplayUnit {
	units := make([]DisplayUnit, 0, len(tokens)+len(tokens)/2)
	inHeading := false
	for i, tok := range tokens {
		heading := tok.Meta.IsHeading
		if heading && !inHeading {
			units = p.blanks(units, p.pauses)
			inHeading = true
		}

		repeat := 1
		if heading || tok.Meta.IsAllCaps || p.ShouldDuplicate(tok.Word) {
			repeat = holdRepeat
		}
		units = append(units, DisplayUnit{Text: tok.Word, IsHeading: heading, RepeatCount: repeat})

		if !heading && IsSentenceEnding(tok.Word) {
			units = p.blanks(units, p.pauses)
		}

		if inHeading {
			nextHeading := i+1 < len(tokens) && tokens[i+1].Meta.IsHeading
			if !nextHeading {
				units = p.blanks(units, HeadingExitPauses)
				inHeading = false
			}
		}
	}
	return units
}

// PreprocessWithoutPauses applies only the duplication rule.
func (p *Preprocessor) PreprocessWithoutPauses(words []string) []DisplayUnit {
	units := make([]DisplayUnit, 0, len(words))
	for _, w := range words {
		repeat := 1
		if p.ShouldDuplicate(w) {
			repeat = holdRepeat
		}
		units = append(units, DisplayUnit{Text: w, RepeatCount: repeat})
	}
	return units
}

// CustomDuplication repeats each word by its entry in counts, matched on the
// lowercased word; words without an entry appear once and a count of zero or
// less drops the word.
func (p *Preprocessor) CustomDuplication(words []string, counts map[string]int) []DisplayUnit {
	units := make([]DisplayUnit, 0, len(words))
	for _, w := range words {
		n, ok := counts[strings.ToLower(w)]
		if !ok {
			n = 1
		}
		if n <= 0 {
			continue
		}
		units = append(units, DisplayUnit{Text: w, RepeatCount: n})
	}
	return units
}

// Expand materializes repeats: each unit is replaced by RepeatCount copies
// with RepeatCount 1. Units with a count below 1 are kept once.
func Expand(units []DisplayUnit) []DisplayUnit {
	n := 0
	for _, u := range units {
		n += max(u.RepeatCount, 1)
	}
	out := make([]DisplayUnit, 0, n)
	for _, u := range units {
		repeat := max(u.RepeatCount, 1)
		u.RepeatCount = 1
		for range repeat {
			out = append(out, u)
		}
	}
	return out
}

// Words returns the display text of every slot after expansion.
func Words(units []DisplayUnit) []string {
	expanded := Expand(units)
	words := make([]string, len(expanded))
	for i, u := range expanded {
		words[i] = u.Text
	}
	return words
}
