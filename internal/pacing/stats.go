package pacing

import (
	"errors"
	"fmt"
	"slices"
)

// EstimateReadingTime returns seconds needed to show count slots at wpm.
func EstimateReadingTime(count, wpm int) float64 {
	if count <= 0 || wpm <= 0 {
		return 0
	}
	return float64(count) / float64(wpm) * 60
}

// Statistics summarizes how pacing expanded a word list.
type Statistics struct {
	OriginalCount   int     `json:"original_count"`
	ProcessedCount  int     `json:"processed_count"`
	DuplicatedWords int     `json:"duplicated_words"`
	SentenceEndings int     `json:"sentence_endings"`
	TotalPauses     int     `json:"total_pauses"`
	ExpansionRatio  float64 `json:"expansion_ratio"`
}

// Statistics compares the original words with their paced units. Processed
// units may be expanded or not; repeats are counted either way.
func (p *Preprocessor) Statistics(original []string, processed []DisplayUnit) Statistics {
	s := Statistics{OriginalCount: len(original)}
	for _, u := range processed {
		s.ProcessedCount += max(u.RepeatCount, 1)
	}
	for _, w := range original {
		if p.ShouldDuplicate(w) {
			s.DuplicatedWords++
		}
		if IsSentenceEnding(w) {
			s.SentenceEndings++
		}
	}
	s.TotalPauses = s.SentenceEndings * p.pauses
	s.ExpansionRatio = 1.0
	if len(original) > 0 {
		s.ExpansionRatio = float64(s.ProcessedCount) / float64(len(original))
	}
	return s
}

// ReadingSpeeds are named WPM presets.
var ReadingSpeeds = map[string]int{
	"beginner":     200,
	"average":      300,
	"advanced":     500,
	"expert":       800,
	"speed_reader": 1000,
}

// SpeedNames returns the preset names ordered by speed.
func SpeedNames() []string {
	names := make([]string, 0, len(ReadingSpeeds))
	for name := range ReadingSpeeds {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return ReadingSpeeds[a] - ReadingSpeeds[b]
	})
	return names
}

// ErrInvalidWPM is returned for a words-per-minute value outside the range.
var ErrInvalidWPM = errors.New("invalid wpm")

// WPMRange bounds accepted reading speeds, inclusive.
type WPMRange struct {
	Min int
	Max int
}

// DefaultWPMRange is the range accepted when none is configured.
var DefaultWPMRange = WPMRange{Min: 100, Max: 2000}

// Validate returns ErrInvalidWPM when wpm falls outside r.
func (r WPMRange) Validate(wpm int) error {
	if wpm < r.Min || wpm > r.Max {
		return fmt.Errorf("%w: %d not between %d and %d", ErrInvalidWPM, wpm, r.Min, r.Max)
	}
	return nil
}

// ValidateWPM checks wpm against DefaultWPMRange.
func ValidateWPM(wpm int) error {
	return DefaultWPMRange.Validate(wpm)
}
