package orp

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCalculate_LengthBuckets(t *testing.T) {
	c := NewCalculator(nil)
	tests := []struct {
		word string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"is", 2},
		{"hello", 2},
		{"reading", 3},
		{"wonderful", 3},
		{"extraordina", 4},
		{"communication", 4},
		{"extraordinarily", 5},
		{"internationalization", 5},
		{"naïveté", 3},
	}
	for _, tt := range tests {
		if got := c.Calculate(tt.word); got != tt.want {
			t.Errorf("Calculate(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}

func TestCalculate_ExceptionsOverrideCaseInsensitive(t *testing.T) {
	c := NewCalculator(NewExceptions(map[string]int{"GitHub": 4, "nasa": 2}))
	for _, w := range []string{"github", "GITHUB", "GitHub"} {
		if got := c.Calculate(w); got != 4 {
			t.Errorf("Calculate(%q) = %d, want 4", w, got)
		}
	}
	if got := c.Calculate("NASA"); got != 2 {
		t.Errorf("Calculate(NASA) = %d, want 2", got)
	}
	if got := c.Calculate("gitlab"); got != 3 {
		t.Errorf("expected bucket position for non-exception, got %d", got)
	}
}

func TestSplitWord(t *testing.T) {
	c := NewCalculator(nil)
	tests := []struct {
		word string
		want Split
	}{
		{"reading", Split{Before: "re", ORP: "a", After: "ding", Position: 3}},
		{"a", Split{Before: "", ORP: "a", After: "", Position: 1}},
		{"hello", Split{Before: "h", ORP: "e", After: "llo", Position: 2}},
		{"naïveté", Split{Before: "na", ORP: "ï", After: "veté", Position: 3}},
		{"", Split{}},
		{"   ", Split{}},
	}
	for _, tt := range tests {
		if got := c.SplitWord(tt.word); got != tt.want {
			t.Errorf("SplitWord(%q) = %+v, want %+v", tt.word, got, tt.want)
		}
	}
}

func TestSplitWord_Reconstructs(t *testing.T) {
	c := NewCalculator(NewExceptions(map[string]int{"go": 9}))
	words := []string{
		"x", "go", "the", "quick", "brown", "foxes", "jumped", "everywhere.",
		"state-of", "unbelievably", "antidisestablishment", "日本語", "Ünïcödé",
	}
	for _, w := range words {
		s := c.SplitWord(w)
		if s.Before+s.ORP+s.After != w {
			t.Errorf("SplitWord(%q) does not reconstruct: %+v", w, s)
		}
		if s.Position < 1 || s.Position > utf8.RuneCountInString(w) {
			t.Errorf("SplitWord(%q) position %d out of range", w, s.Position)
		}
		if utf8.RuneCountInString(s.ORP) != 1 {
			t.Errorf("SplitWord(%q) focal letter %q is not one rune", w, s.ORP)
		}
	}
}

func TestSplitWord_ClampsOversizedException(t *testing.T) {
	c := NewCalculator(NewExceptions(map[string]int{"go": 5}))
	got := c.SplitWord("go")
	want := Split{Before: "g", ORP: "o", After: "", Position: 2}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestBatchSplit(t *testing.T) {
	c := NewCalculator(nil)
	got := c.BatchSplit([]string{"a", "", "reading"})
	if len(got) != 3 {
		t.Fatalf("expected 3 splits, got %d", len(got))
	}
	if got[0].Position != 1 || got[1].Position != 0 || got[2].Position != 3 {
		t.Errorf("unexpected positions: %+v", got)
	}
}

func TestWithException_LeavesReceiverUnchanged(t *testing.T) {
	base := NewCalculator(nil)
	derived := base.WithException("JavaScript", 5)

	if got := base.Calculate("javascript"); got != 4 {
		t.Errorf("base calculator changed: got %d, want 4", got)
	}
	if got := derived.Calculate("javascript"); got != 5 {
		t.Errorf("derived calculator: got %d, want 5", got)
	}
	if derived.Exceptions().Len() != 1 {
		t.Errorf("expected 1 exception, got %d", derived.Exceptions().Len())
	}
}

func TestPercentage(t *testing.T) {
	c := NewCalculator(nil)
	if got := c.Percentage(""); got != 0 {
		t.Errorf("expected 0 for empty word, got %v", got)
	}
	if got := c.Percentage("test"); got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
	if got := c.Percentage(strings.Repeat("a", 10)); got != 0.4 {
		t.Errorf("expected 0.4, got %v", got)
	}
}
