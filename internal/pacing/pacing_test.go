package pacing

import (
	"slices"
	"testing"

	"github.com/dgallion1/speedread/internal/textproc"
)

func TestNew_Defaults(t *testing.T) {
	p := New(Config{})
	if p.LongWordThreshold() != DefaultLongWordThreshold {
		t.Errorf("expected threshold %d, got %d", DefaultLongWordThreshold, p.LongWordThreshold())
	}
	if p.PauseCount() != DefaultPauseCount {
		t.Errorf("expected pause count %d, got %d", DefaultPauseCount, p.PauseCount())
	}
}

func TestShouldDuplicate(t *testing.T) {
	p := New(Config{})
	tests := []struct {
		word string
		want bool
	}{
		{"reading", false},
		{"readings", true},
		{"wonderful", true},
		{`"reading"`, false},
		{"...wonderful...", true},
		{"Hello,", true},
		{"a,b", true},
		{"cat", false},
		{"naïvetés", true},
	}
	for _, tt := range tests {
		if got := p.ShouldDuplicate(tt.word); got != tt.want {
			t.Errorf("ShouldDuplicate(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestIsSentenceEnding(t *testing.T) {
	for _, w := range []string{"end.", "wow!", "why?", "note:", "list;", "(aside)", "U.S."} {
		if !IsSentenceEnding(w) {
			t.Errorf("expected %q to end a sentence", w)
		}
	}
	for _, w := range []string{"word", "comma,", "dash-", "(open", ""} {
		if IsSentenceEnding(w) {
			t.Errorf("expected %q not to end a sentence", w)
		}
	}
}

func TestPreprocess(t *testing.T) {
	p := New(Config{})
	tests := []struct {
		name  string
		words []string
		want  []string
	}{
		{"sentence end", []string{"hello."}, []string{"hello.", "", "", "", ""}},
		{"long word", []string{"wonderful"}, []string{"wonderful", "wonderful", "wonderful"}},
		{"comma", []string{"Hello,"}, []string{"Hello,", "Hello,", "Hello,"}},
		{"long sentence end", []string{"extraordinary."}, []string{
			"extraordinary.", "extraordinary.", "extraordinary.", "", "", "", "",
		}},
		{"plain", []string{"the", "cat"}, []string{"the", "cat"}},
		{"empty", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Words(p.Preprocess(tt.words))
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPreprocess_CustomConfig(t *testing.T) {
	p := New(Config{LongWordThreshold: 3, PauseCount: 2})
	got := Words(p.Preprocess([]string{"four", "end."}))
	want := []string{"four", "four", "four", "end.", "", ""}
	if !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPreprocess_NeverShrinks(t *testing.T) {
	p := New(Config{})
	words := textproc.SplitWords(textproc.Normalize("A quick, brown fox. It jumped over the extraordinarily lazy dog!"))
	got := Expand(p.Preprocess(words))
	if len(got) < len(words) {
		t.Fatalf("expanded %d words into %d slots", len(words), len(got))
	}
	for _, u := range got {
		if u.RepeatCount != 1 {
			t.Errorf("expanded unit kept repeat count %d", u.RepeatCount)
		}
	}
}

func TestPreprocessWithHeadings(t *testing.T) {
	p := New(Config{})
	tokens := textproc.SplitWordsWithMetadata("CHAPTER ONE\nThe story begins here.")
	got := Expand(p.PreprocessWithHeadings(tokens))

	var words []string
	var headings []bool
	for _, u := range got {
		words = append(words, u.Text)
		headings = append(headings, u.IsHeading)
	}
	want := []string{
		"", "", "", "",
		"CHAPTER", "CHAPTER", "CHAPTER",
		"ONE", "ONE", "ONE",
		"", "", "", "", "",
		"The", "story", "begins", "here.",
		"", "", "", "",
	}
	if !slices.Equal(words, want) {
		t.Fatalf("expected %q, got %q", want, words)
	}
	for i, h := range headings {
		wantHeading := i >= 4 && i < 10
		if h != wantHeading {
			t.Errorf("slot %d (%q): IsHeading = %v, want %v", i, words[i], h, wantHeading)
		}
	}
}

func TestPreprocessWithHeadings_HeadingSuppressesSentencePause(t *testing.T) {
	p := New(Config{})
	tokens := []textproc.Token{{Word: "INTRO.", Meta: textproc.LineMeta{IsHeading: true, IsAllCaps: true}}}
	got := Words(p.PreprocessWithHeadings(tokens))
	if len(got) != DefaultPauseCount+3+HeadingExitPauses {
		t.Errorf("expected %d slots, got %d: %q", DefaultPauseCount+3+HeadingExitPauses, len(got), got)
	}
}

func TestPreprocessWithHeadings_AllCapsBodyWordHeld(t *testing.T) {
	p := New(Config{})
	tokens := []textproc.Token{
		{Word: "Visit"},
		{Word: "NASA", Meta: textproc.LineMeta{IsAllCaps: true}},
		{Word: "today"},
	}
	got := Words(p.PreprocessWithHeadings(tokens))
	want := []string{"Visit", "NASA", "NASA", "NASA", "today"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPreprocessWithHeadings_ConsecutiveHeadingRuns(t *testing.T) {
	p := New(Config{PauseCount: 1})
	h := textproc.LineMeta{IsHeading: true}
	tokens := []textproc.Token{
		{Word: "Intro", Meta: h},
		{Word: "text"},
		{Word: "Next", Meta: h},
	}
	got := Words(p.PreprocessWithHeadings(tokens))
	want := []string{
		"", "Intro", "Intro", "Intro", "", "", "", "", "",
		"text",
		"", "Next", "Next", "Next", "", "", "", "", "",
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPreprocessWithoutPauses(t *testing.T) {
	p := New(Config{})
	got := Words(p.PreprocessWithoutPauses([]string{"Hello.", "wonderful"}))
	want := []string{"Hello.", "wonderful", "wonderful", "wonderful"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCustomDuplication(t *testing.T) {
	p := New(Config{})
	got := Words(p.CustomDuplication(
		[]string{"The", "IMPORTANT", "word"},
		map[string]int{"important": 3, "the": 0},
	))
	want := []string{"IMPORTANT", "IMPORTANT", "IMPORTANT", "word"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExpand(t *testing.T) {
	units := []DisplayUnit{
		{Text: "a", RepeatCount: 2},
		{Text: "", RepeatCount: 1},
		{Text: "b", IsHeading: true, RepeatCount: 0},
	}
	got := Expand(units)
	want := []DisplayUnit{
		{Text: "a", RepeatCount: 1},
		{Text: "a", RepeatCount: 1},
		{Text: "", RepeatCount: 1},
		{Text: "b", IsHeading: true, RepeatCount: 1},
	}
	if !slices.Equal(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if !got[2].IsBlank() || got[0].IsBlank() {
		t.Error("IsBlank mismatch")
	}
}
