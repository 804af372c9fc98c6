package orp

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Exception is one entry of an exception-words file.
type Exception struct {
	Word     string `yaml:"word"`
	Position int    `yaml:"position"` // 1-indexed
	Reason   string `yaml:"reason,omitempty"`
}

// Exceptions maps lowercase words to a fixed focal position. It is never
// mutated after construction; use With to derive a new table.
type Exceptions struct {
	positions map[string]int
}

// NewExceptions builds a table from word → position. Keys are lowercased and
// entries with an empty word or a position below 1 are ignored.
func NewExceptions(words map[string]int) *Exceptions {
	positions := make(map[string]int, len(words))
	for w, p := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || p < 1 {
			continue
		}
		positions[w] = p
	}
	return &Exceptions{positions: positions}
}

// Lookup returns the override for word, matched case-insensitively.
func (e *Exceptions) Lookup(word string) (int, bool) {
	if e == nil || len(e.positions) == 0 {
		return 0, false
	}
	p, ok := e.positions[strings.ToLower(word)]
	return p, ok
}

// Len returns the number of overrides.
func (e *Exceptions) Len() int {
	if e == nil {
		return 0
	}
	return len(e.positions)
}

// With returns a copy of the table with word set to position.
func (e *Exceptions) With(word string, position int) *Exceptions {
	words := make(map[string]int, e.Len()+1)
	if e != nil {
		for w, p := range e.positions {
			words[w] = p
		}
	}
	words[word] = position
	return NewExceptions(words)
}

// LoadExceptions reads an exception-words YAML file:
//
//	words:
//	  - word: github
//	    position: 4
//	    reason: focus on capital H
func LoadExceptions(path string) (*Exceptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exceptions: %w", err)
	}

	var file struct {
		Words []Exception `yaml:"words"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse exceptions %s: %w", path, err)
	}

	words := make(map[string]int, len(file.Words))
	for i, ex := range file.Words {
		if strings.TrimSpace(ex.Word) == "" {
			return nil, fmt.Errorf("exceptions %s: entry %d has no word", path, i)
		}
		if ex.Position < 1 {
			return nil, fmt.Errorf("exceptions %s: %q has position %d, must be >= 1", path, ex.Word, ex.Position)
		}
		words[ex.Word] = ex.Position
	}
	return NewExceptions(words), nil
}
