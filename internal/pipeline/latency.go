package pipeline

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at    time.Time
	micro int64
}

// LatencySnapshot aggregates processing latencies inside the window.
type LatencySnapshot struct {
	Count int     `json:"count"`
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Latency keeps processing durations for a rolling window.
type Latency struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
}

func NewLatency(window time.Duration) *Latency {
	if window <= 0 {
		window = time.Hour
	}
	return &Latency{
		samples: make([]sample, 0, 256),
		window:  window,
	}
}

func (l *Latency) Record(d time.Duration) {
	if d < 0 {
		d = 0
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)
	l.samples = append(l.samples, sample{at: now, micro: d.Microseconds()})
}

func (l *Latency) Snapshot() LatencySnapshot {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)
	if len(l.samples) == 0 {
		return LatencySnapshot{}
	}

	values := make([]int64, 0, len(l.samples))
	var sum int64
	for _, s := range l.samples {
		values = append(values, s.micro)
		sum += s.micro
	}
	slices.Sort(values)

	return LatencySnapshot{
		Count: len(values),
		MinMs: ms(float64(values[0])),
		MaxMs: ms(float64(values[len(values)-1])),
		AvgMs: ms(float64(sum) / float64(len(values))),
		P50Ms: ms(percentile(values, 50)),
		P95Ms: ms(percentile(values, 95)),
		P99Ms: ms(percentile(values, 99)),
	}
}

func (l *Latency) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	keep := 0
	for _, s := range l.samples {
		if !s.at.Before(cutoff) {
			l.samples[keep] = s
			keep++
		}
	}
	l.samples = l.samples[:keep]
}

func ms(micro float64) float64 { return micro / 1000 }

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}

	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := index - float64(lower)
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*weight
}
