package textproc

import (
	"strings"
	"testing"
)

func TestIsLikelyHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"CHAPTER ONE", true},
		{"INTRODUCTION", true},
		{"Introduction", true},
		{"Getting Started", true},
		{"NOTE", true},
		{"U.S.A. TODAY", true},
		{"This is a normal sentence.", false},
		{"Dr. Smith arrives", false},
		{"Hello there,", false},
		{"Really?", false},
		{"Stop!", false},
		{"lowercase start", false},
		{"A line with far too many words to be a heading", false},
		{strings.Repeat("WORD ", 20), false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		if got := IsLikelyHeading(tt.line); got != tt.want {
			t.Errorf("IsLikelyHeading(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestIsUpper(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ABC", true},
		{"ABC 123!", true},
		{"ÉCOLE", true},
		{"123", false},
		{"AbC", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsUpper(tt.in); got != tt.want {
			t.Errorf("IsUpper(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLines(t *testing.T) {
	lines := Lines("CHAPTER ONE\n\n  The story begins here.  \n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 non-empty lines, got %d", len(lines))
	}
	if lines[0].Text != "CHAPTER ONE" || !lines[0].Meta.IsHeading || !lines[0].Meta.IsAllCaps || lines[0].Words != 2 {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[1].Text != "The story begins here." || lines[1].Meta.IsHeading || lines[1].Words != 4 {
		t.Errorf("unexpected second line: %+v", lines[1])
	}
}

func TestSplitWordsWithMetadata(t *testing.T) {
	tokens := SplitWordsWithMetadata("CHAPTER ONE\nThe story begins here.")
	want := []struct {
		word    string
		heading bool
		caps    bool
	}{
		{"CHAPTER", true, true},
		{"ONE", true, true},
		{"The", false, false},
		{"story", false, false},
		{"begins", false, false},
		{"here.", false, false},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		tok := tokens[i]
		if tok.Word != w.word || tok.Meta.IsHeading != w.heading || tok.Meta.IsAllCaps != w.caps {
			t.Errorf("token %d: got %+v, want %+v", i, tok, w)
		}
	}
}

func TestSplitWordsWithMetadata_Empty(t *testing.T) {
	if tokens := SplitWordsWithMetadata("  \n \n"); len(tokens) != 0 {
		t.Errorf("expected no tokens, got %+v", tokens)
	}
}

func TestSplitWordsWithMetadata_MatchesFlatSplit(t *testing.T) {
	raw := "Getting Started\nFirst, install the tool.\nTHEN RUN IT\nwell-known state-of-the-art ideas"
	tokens := SplitWordsWithMetadata(raw)
	flat := SplitWords(Normalize(raw))
	if len(tokens) != len(flat) {
		t.Fatalf("expected %d tokens, got %d", len(flat), len(tokens))
	}
	for i := range flat {
		if tokens[i].Word != flat[i] {
			t.Errorf("token %d: expected %q, got %q", i, flat[i], tokens[i].Word)
		}
	}
}

func TestAlign_LeftoverWordsAreBody(t *testing.T) {
	heading := LineMeta{IsHeading: true, IsAllCaps: true}
	tokens := Align([]string{"A", "b", "c"}, []Line{{Text: "A", Meta: heading, Words: 1}})
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[0].Meta != heading {
		t.Errorf("expected first token to carry heading meta, got %+v", tokens[0].Meta)
	}
	for _, tok := range tokens[1:] {
		if tok.Meta != (LineMeta{}) {
			t.Errorf("expected zero meta for leftover token %q, got %+v", tok.Word, tok.Meta)
		}
	}
}

func TestAlign_MoreLineWordsThanTokens(t *testing.T) {
	tokens := Align([]string{"only"}, []Line{{Text: "only two", Words: 2}, {Text: "more", Words: 1}})
	if len(tokens) != 1 || tokens[0].Word != "only" {
		t.Errorf("expected single token, got %+v", tokens)
	}
}
