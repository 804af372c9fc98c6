// Package pipeline turns raw text into a paced RSVP display sequence with a
// focal-letter split for every slot.
package pipeline

import (
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/speedread/internal/orp"
	"github.com/dgallion1/speedread/internal/pacing"
	"github.com/dgallion1/speedread/internal/textproc"
)

const (
	DefaultMinTextLength = 1
	DefaultMaxTextLength = 1_000_000
	DefaultMaxWordLength = 100
)

// Options configures a Processor. Zero values select defaults.
type Options struct {
	LongWordThreshold int
	PauseCount        int
	MinTextLength     int
	MaxTextLength     int
	MaxWordLength     int
}

// ORPRecord is the focal split of one display slot. Blank pauses carry a
// zero record.
type ORPRecord struct {
	Word      string `json:"word"`
	Before    string `json:"before"`
	ORP       string `json:"orp"`
	After     string `json:"after"`
	Position  int    `json:"position"`
	IsHeading bool   `json:"is_heading"`
}

// Stats summarizes a processing run.
type Stats struct {
	OriginalCount       int     `json:"original_count"`
	ProcessedCount      int     `json:"processed_count"`
	EstimatedTime300WPM float64 `json:"estimated_time_300wpm"`
	EstimatedTime500WPM float64 `json:"estimated_time_500wpm"`
}

// Result is the output of ProcessText. Words and ORPData have one entry per
// display slot. Results may be shared through the cache and must not be
// modified.
type Result struct {
	Success bool        `json:"success"`
	Words   []string    `json:"words"`
	ORPData []ORPRecord `json:"orp_data"`
	Stats   Stats       `json:"stats"`
}

// WordORP is the output of CalculateORP.
type WordORP struct {
	Success  bool   `json:"success"`
	Word     string `json:"word"`
	Before   string `json:"before"`
	ORP      string `json:"orp"`
	After    string `json:"after"`
	Position int    `json:"orp_position"`
}

// Processor runs the normalize, tokenize, pace and split stages.
type Processor struct {
	opts    Options
	pre     *pacing.Preprocessor
	orps    *orp.Store
	cache   *Cache
	latency *Latency
	log     *slog.Logger
}

// NewProcessor builds a processor. orps supplies the focal-point calculator
// and may be swapped at runtime; cache may be nil.
func NewProcessor(opts Options, orps *orp.Store, cache *Cache, log *slog.Logger) *Processor {
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = DefaultMinTextLength
	}
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = DefaultMaxTextLength
	}
	if opts.MaxWordLength <= 0 {
		opts.MaxWordLength = DefaultMaxWordLength
	}
	if orps == nil {
		orps = orp.NewStore(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		opts: opts,
		pre: pacing.New(pacing.Config{
			LongWordThreshold: opts.LongWordThreshold,
			PauseCount:        opts.PauseCount,
		}),
		orps:    orps,
		cache:   cache,
		latency: NewLatency(time.Hour),
		log:     log,
	}
}

// Preprocessor returns the pacing rules in use.
func (p *Processor) Preprocessor() *pacing.Preprocessor { return p.pre }

// ProcessText runs the full pipeline over text. With detectHeadings set,
// heading lines get extra pauses and a slower display.
func (p *Processor) ProcessText(text string, detectHeadings bool) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("text processing panicked", "panic", r, "stack", string(debug.Stack()))
			res, err = nil, &Error{Kind: ErrInternal, Message: fmt.Sprint(r)}
		}
	}()

	if err := p.validateText(text); err != nil {
		return nil, err
	}
	// one calculator for the whole run so a concurrent reload cannot mix
	// tables; its generation keeps a late Put from outliving the reload
	calc, gen := p.orps.Current()
	if cached, ok := p.cache.Get(text, detectHeadings, gen); ok {
		return cached, nil
	}

	start := time.Now()
	res = p.process(text, detectHeadings, calc)
	p.latency.Record(time.Since(start))
	p.cache.Put(text, detectHeadings, gen, res)

	p.log.Debug("text processed",
		"original_count", res.Stats.OriginalCount,
		"processed_count", res.Stats.ProcessedCount,
		"headings", detectHeadings,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Processor) validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return Invalid("text cannot be empty or whitespace only")
	}
	n := utf8.RuneCountInString(text)
	if n < p.opts.MinTextLength {
		return Invalid("text too short (minimum %d characters)", p.opts.MinTextLength)
	}
	if n > p.opts.MaxTextLength {
		return Invalid("text too long (maximum %d characters)", p.opts.MaxTextLength)
	}
	return nil
}

func (p *Processor) process(text string, detectHeadings bool, calc *orp.Calculator) *Result {
	var units []pacing.DisplayUnit
	var original int
	if detectHeadings {
		tokens := textproc.SplitWordsWithMetadata(text)
		original = len(tokens)
		units = pacing.Expand(p.pre.PreprocessWithHeadings(tokens))
	} else {
		words := textproc.SplitWords(textproc.Normalize(text))
		original = len(words)
		units = pacing.Expand(p.pre.Preprocess(words))
	}

	res := &Result{
		Success: true,
		Words:   make([]string, len(units)),
		ORPData: make([]ORPRecord, len(units)),
	}
	for i, u := range units {
		res.Words[i] = u.Text
		if u.IsBlank() {
			continue
		}
		s := calc.SplitWord(u.Text)
		res.ORPData[i] = ORPRecord{
			Word:      u.Text,
			Before:    s.Before,
			ORP:       s.ORP,
			After:     s.After,
			Position:  s.Position,
			IsHeading: u.IsHeading,
		}
	}

	n := len(units)
	res.Stats = Stats{
		OriginalCount:       original,
		ProcessedCount:      n,
		EstimatedTime300WPM: round1(pacing.EstimateReadingTime(n, 300)),
		EstimatedTime500WPM: round1(pacing.EstimateReadingTime(n, 500)),
	}
	return res
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// CalculateORP returns the focal split of a single word.
func (p *Processor) CalculateORP(word string) (*WordORP, error) {
	if strings.TrimSpace(word) == "" {
		return nil, Invalid("word cannot be empty")
	}
	if utf8.RuneCountInString(word) > p.opts.MaxWordLength {
		return nil, Invalid("word too long (maximum %d characters)", p.opts.MaxWordLength)
	}
	s := p.orps.Load().SplitWord(word)
	return &WordORP{
		Success:  true,
		Word:     word,
		Before:   s.Before,
		ORP:      s.ORP,
		After:    s.After,
		Position: s.Position,
	}, nil
}

// ReloadExceptions loads an exception-words file into the calculator store
// and drops cached results computed with the old table.
func (p *Processor) ReloadExceptions(path string) (int, error) {
	n, err := p.orps.ReloadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reload exceptions: %w", err)
	}
	p.cache.Purge()
	return n, nil
}

// ProcessorStats reports latency and cache usage.
type ProcessorStats struct {
	Latency    LatencySnapshot `json:"latency"`
	Cache      CacheStats      `json:"cache"`
	Exceptions int             `json:"exception_words"`
}

// Stats returns current processor statistics.
func (p *Processor) Stats() ProcessorStats {
	return ProcessorStats{
		Latency:    p.latency.Snapshot(),
		Cache:      p.cache.Stats(),
		Exceptions: p.orps.Load().Exceptions().Len(),
	}
}
