package pipeline

import (
	"context"
	"errors"
	"testing"
)

func TestProcessBatch(t *testing.T) {
	p := newTestProcessor(Options{})
	texts := []string{"First text.", "", "Third one here", "FOURTH\nbody"}
	items := p.ProcessBatch(context.Background(), texts, true, 2)

	if len(items) != len(texts) {
		t.Fatalf("expected %d items, got %d", len(texts), len(items))
	}
	for i, it := range items {
		if it.Index != i {
			t.Errorf("item %d has index %d", i, it.Index)
		}
	}
	if !errors.Is(items[1].Err, ErrInvalidInput) {
		t.Errorf("expected invalid input for empty text, got %v", items[1].Err)
	}
	for _, i := range []int{0, 2, 3} {
		if items[i].Err != nil || items[i].Result == nil {
			t.Errorf("item %d: unexpected error %v", i, items[i].Err)
		}
	}
	if items[0].Result.Words[0] != "First" {
		t.Errorf("results out of order: %q", items[0].Result.Words)
	}
}

func TestProcessBatch_CancelledContext(t *testing.T) {
	p := newTestProcessor(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	texts := []string{"one", "two", "three", "four", "five"}
	items := p.ProcessBatch(ctx, texts, false, 1)
	if len(items) != len(texts) {
		t.Fatalf("expected %d items, got %d", len(texts), len(items))
	}
	cancelled := 0
	for i, it := range items {
		if it.Result != nil {
			continue
		}
		cancelled++
		var e *Error
		if !errors.As(it.Err, &e) || e.Kind != ErrCancelled {
			t.Errorf("item %d: expected an ErrCancelled *Error, got %v", i, it.Err)
			continue
		}
		if !errors.Is(it.Err, context.Canceled) {
			t.Errorf("item %d: cause not kept: %v", i, it.Err)
		}
		if errors.Is(it.Err, ErrInternal) || errors.Is(it.Err, ErrInvalidInput) {
			t.Errorf("item %d: wraps more than one kind: %v", i, it.Err)
		}
		if got := Message(it.Err); got != "processing cancelled before it started" {
			t.Errorf("item %d: unexpected message %q", i, got)
		}
	}
	if cancelled != len(texts) {
		t.Errorf("expected all %d items cancelled, got %d", len(texts), cancelled)
	}
}

func TestProcessBatch_Empty(t *testing.T) {
	p := newTestProcessor(Options{})
	if items := p.ProcessBatch(context.Background(), nil, true, 4); len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}
