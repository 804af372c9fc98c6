// Package orp locates the Optimal Recognition Point of a word: the letter the
// eye should fixate on when the word is flashed at a fixed screen position.
package orp

import (
	"strings"
	"unicode/utf8"
)

// Split is a word divided around its focal letter. Position is 1-indexed;
// 0 means the word had no focus (empty or whitespace-only).
type Split struct {
	Before   string `json:"before"`
	ORP      string `json:"orp"`
	After    string `json:"after"`
	Position int    `json:"orp_position"`
}

// Calculator computes focal positions from word length, with an optional
// exception table taking precedence.
type Calculator struct {
	exc *Exceptions
}

// NewCalculator returns a calculator using exc for overrides. exc may be nil.
func NewCalculator(exc *Exceptions) *Calculator {
	if exc == nil {
		exc = NewExceptions(nil)
	}
	return &Calculator{exc: exc}
}

// Exceptions returns the override table in use.
func (c *Calculator) Exceptions() *Exceptions {
	return c.exc
}

// WithException returns a new calculator whose table also maps word to
// position. The receiver is unchanged.
func (c *Calculator) WithException(word string, position int) *Calculator {
	return &Calculator{exc: c.exc.With(word, position)}
}

// Calculate returns the 1-indexed focal position for word, or 0 if empty.
func (c *Calculator) Calculate(word string) int {
	n := utf8.RuneCountInString(word)
	if n == 0 {
		return 0
	}
	if p, ok := c.exc.Lookup(word); ok {
		return p
	}
	return bucket(n)
}

func bucket(n int) int {
	switch {
	case n <= 1:
		return 1
	case n <= 5:
		return 2
	case n <= 9:
		return 3
	case n <= 13:
		return 4
	default:
		return 5
	}
}

// SplitWord divides word around its focal letter so that
// Before+ORP+After == word.
func (c *Calculator) SplitWord(word string) Split {
	if strings.TrimSpace(word) == "" {
		return Split{}
	}
	runes := []rune(word)
	p := min(max(c.Calculate(word), 1), len(runes))
	return Split{
		Before:   string(runes[:p-1]),
		ORP:      string(runes[p-1]),
		After:    string(runes[p:]),
		Position: p,
	}
}

// BatchSplit splits every word in order.
func (c *Calculator) BatchSplit(words []string) []Split {
	out := make([]Split, len(words))
	for i, w := range words {
		out[i] = c.SplitWord(w)
	}
	return out
}

// Percentage returns the focal position as a fraction of the word length.
func (c *Calculator) Percentage(word string) float64 {
	n := utf8.RuneCountInString(word)
	if n == 0 {
		return 0
	}
	return float64(c.Calculate(word)) / float64(n)
}
