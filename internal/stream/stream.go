// Package stream paces a display sequence in real time, one slot per tick.
package stream

import (
	"context"
	"time"

	"github.com/dgallion1/speedread/internal/pacing"
	"github.com/dgallion1/speedread/internal/pipeline"
)

// Interval returns how long each display slot stays on screen at wpm.
// Non-positive rates fall back to the average reading speed.
func Interval(wpm int) time.Duration {
	if wpm <= 0 {
		wpm = pacing.ReadingSpeeds["average"]
	}
	return time.Duration(60000/wpm) * time.Millisecond
}

// Frame is one emitted display slot.
type Frame struct {
	Type      string `json:"type"` // "word" or "complete"
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Word      string `json:"word,omitempty"`
	Before    string `json:"before,omitempty"`
	ORP       string `json:"orp,omitempty"`
	After     string `json:"after,omitempty"`
	IsHeading bool   `json:"is_heading,omitempty"`
}

// Frames converts a processing result into word frames. Blank pause slots
// become frames with no word.
func Frames(res *pipeline.Result) []Frame {
	frames := make([]Frame, len(res.ORPData))
	for i, rec := range res.ORPData {
		frames[i] = Frame{
			Type:      "word",
			Index:     i,
			Total:     len(res.ORPData),
			Word:      rec.Word,
			Before:    rec.Before,
			ORP:       rec.ORP,
			After:     rec.After,
			IsHeading: rec.IsHeading,
		}
	}
	return frames
}

// Complete is the frame sent after the last word.
func Complete(total int) Frame {
	return Frame{Type: "complete", Index: total, Total: total}
}

// Play calls emit for indices 0..n-1, one per interval, starting
// immediately. It stops at the first emit error or when ctx is done.
func Play(ctx context.Context, n int, interval time.Duration, emit func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < n; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(i); err != nil {
			return err
		}
	}
	return nil
}
