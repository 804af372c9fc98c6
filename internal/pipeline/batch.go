package pipeline

import (
	"context"
	"log/slog"
)

// BatchItem is the outcome for one text of a batch, in input order.
type BatchItem struct {
	Index  int
	Result *Result
	Err    error
}

// ProcessBatch processes texts with at most concurrency in flight. Items not
// started before ctx is done carry an ErrCancelled error wrapping ctx.Err().
func (p *Processor) ProcessBatch(ctx context.Context, texts []string, detectHeadings bool, concurrency int) []BatchItem {
	if concurrency <= 0 {
		concurrency = 1
	}
	items := make([]BatchItem, len(texts))
	results := make(chan BatchItem, len(texts))
	sem := make(chan struct{}, concurrency)

	started := 0
	for i, text := range texts {
		if ctx.Err() == nil {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
			}
		}
		// a free slot can win the select after cancellation; nothing is
		// acquired after this point so the slot need not be returned
		if err := ctx.Err(); err != nil {
			cancelRest(items, i, err)
			break
		}
		started++
		go func() {
			defer func() { <-sem }()
			res, err := p.ProcessText(text, detectHeadings)
			results <- BatchItem{Index: i, Result: res, Err: err}
		}()
	}

	failed := 0
	for range started {
		r := <-results
		if r.Err != nil {
			failed++
		}
		items[r.Index] = r
	}
	if failed > 0 {
		p.log.Warn("batch finished with errors", slog.Int("total", len(texts)), slog.Int("failed", failed))
	}
	return items
}

func cancelRest(items []BatchItem, from int, cause error) {
	for j := from; j < len(items); j++ {
		items[j] = BatchItem{Index: j, Err: &Error{
			Kind:    ErrCancelled,
			Message: "processing cancelled before it started",
			Cause:   cause,
		}}
	}
}
