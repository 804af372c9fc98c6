package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestLatencySnapshotPercentiles(t *testing.T) {
	l := NewLatency(time.Hour)
	for _, d := range []int{100, 200, 300, 400, 500} {
		l.Record(time.Duration(d) * time.Millisecond)
	}

	snap := l.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got %v %v", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestLatencyPrunesExpiredSamples(t *testing.T) {
	l := NewLatency(10 * time.Millisecond)
	l.Record(time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if snap := l.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected expired samples to be pruned, got count=%d", snap.Count)
	}
}

func TestLatencyEmpty(t *testing.T) {
	if snap := NewLatency(0).Snapshot(); snap != (LatencySnapshot{}) {
		t.Errorf("expected zero snapshot, got %+v", snap)
	}
}

func TestContentHash(t *testing.T) {
	// BLAKE3 of empty input.
	want := "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if got := ContentHash(nil); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if ContentHash([]byte("aaa")) == ContentHash([]byte("bbb")) {
		t.Error("expected different hashes for different inputs")
	}
}

func TestNilCache(t *testing.T) {
	var c *Cache
	if c != NewCache(0, time.Minute) {
		t.Fatal("expected zero size to disable the cache")
	}
	c.Put("x", true, 0, &Result{})
	if _, ok := c.Get("x", true, 0); ok {
		t.Error("nil cache returned a hit")
	}
	c.Purge()
	if c.Stats().Enabled {
		t.Error("nil cache reports enabled")
	}
}

func TestNewID(t *testing.T) {
	prev := ""
	seen := make(map[string]bool)
	for range 100 {
		id := NewID()
		if len(id) != 26 {
			t.Fatalf("expected 26-char id, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		if id <= prev {
			t.Fatalf("ids not increasing: %q after %q", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{Invalid("text too long (maximum %d characters)", 5), "text too long (maximum 5 characters)"},
		{NotImplemented("ocr"), "ocr"},
		{&Error{Kind: ErrInternal, Message: "nil map"}, "an internal error occurred"},
		{fmt.Errorf("wrapped: %w", ErrInvalidInput), "wrapped: invalid input"},
		{errors.New("boom"), "an internal error occurred"},
		{&Error{Kind: ErrCancelled, Message: "stopped", Cause: context.Canceled}, "stopped"},
	}
	for _, tt := range tests {
		if got := Message(tt.err); got != tt.want {
			t.Errorf("Message(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
	if !errors.Is(NotImplemented("x"), ErrNotImplemented) {
		t.Error("NotImplemented does not wrap ErrNotImplemented")
	}
}
