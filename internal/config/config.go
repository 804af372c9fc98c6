package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	LogLevel slog.Level

	// HTTP
	CORSOrigins     []string
	APIKey          string
	MaxRequestBytes int64
	MaxUploadBytes  int64

	// Pacing and validation
	LongWordThreshold int
	PauseCount        int
	MinTextLength     int
	MaxTextLength     int
	MaxWordLength     int

	// ORP exception words (YAML), reloaded on SIGHUP
	ExceptionWordsFile string

	// Result cache
	CacheSize int
	CacheTTL  time.Duration

	// URL extraction
	FetchTimeout      time.Duration
	FetchMaxBytes     int64
	FetchAllowPrivate bool

	// PDF
	PDFFallbackPdftotext bool
	PDFMaxPages          int

	BatchConcurrency int

	// Reading sessions for long extractions
	SessionWords    int
	SessionMinWords int

	// Websocket playback
	StreamMinWPM int
	StreamMaxWPM int
}

func Load() Config {
	cfg := Config{
		Port:     envOr("PORT", "5000"),
		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),

		CORSOrigins:     envList("CORS_ORIGINS", []string{"*"}),
		APIKey:          os.Getenv("SPEEDREAD_API_KEY"),
		MaxRequestBytes: envInt64("MAX_REQUEST_BYTES", 4<<20),
		MaxUploadBytes:  envInt64("MAX_UPLOAD_BYTES", 16<<20), // 16MB

		LongWordThreshold: envInt("LONG_WORD_THRESHOLD", 7),
		PauseCount:        envInt("PAUSE_COUNT", 4),
		MinTextLength:     envInt("MIN_TEXT_LENGTH", 1),
		MaxTextLength:     envInt("MAX_TEXT_LENGTH", 1_000_000),
		MaxWordLength:     envInt("MAX_WORD_LENGTH", 100),

		ExceptionWordsFile: os.Getenv("EXCEPTION_WORDS_FILE"),

		CacheSize: envInt("CACHE_SIZE", 256),
		CacheTTL:  envDuration("CACHE_TTL", 30*time.Minute),

		FetchTimeout:      envDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchMaxBytes:     envInt64("FETCH_MAX_BYTES", 5<<20),
		FetchAllowPrivate: envBool("FETCH_ALLOW_PRIVATE", false),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
		PDFMaxPages:          envInt("PDF_MAX_PAGES", 500),

		BatchConcurrency: envInt("BATCH_CONCURRENCY", 4),

		SessionWords:    envInt("SESSION_WORDS", 1500),
		SessionMinWords: envInt("SESSION_MIN_WORDS", 150),

		StreamMinWPM: envInt("STREAM_MIN_WPM", 100),
		StreamMaxWPM: envInt("STREAM_MAX_WPM", 2000),
	}

	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = 4 << 20
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 16 << 20
	}
	if cfg.LongWordThreshold <= 0 {
		cfg.LongWordThreshold = 7
	}
	if cfg.PauseCount <= 0 {
		cfg.PauseCount = 4
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 1
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = 1_000_000
	}
	if cfg.MaxWordLength <= 0 {
		cfg.MaxWordLength = 100
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Minute
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.FetchMaxBytes <= 0 {
		cfg.FetchMaxBytes = 5 << 20
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}
	if cfg.SessionWords <= 0 {
		cfg.SessionWords = 1500
	}
	if cfg.SessionMinWords <= 0 {
		cfg.SessionMinWords = 150
	}

	return cfg
}

// Validate rejects settings that contradict each other. A negative
// CACHE_SIZE disables the cache rather than failing.
func (c Config) Validate() error {
	var errs []error
	if c.MinTextLength > c.MaxTextLength {
		errs = append(errs, fmt.Errorf("MIN_TEXT_LENGTH (%d) exceeds MAX_TEXT_LENGTH (%d)", c.MinTextLength, c.MaxTextLength))
	}
	if c.StreamMinWPM <= 0 || c.StreamMinWPM > c.StreamMaxWPM {
		errs = append(errs, fmt.Errorf("STREAM_MIN_WPM (%d) must be positive and at most STREAM_MAX_WPM (%d)", c.StreamMinWPM, c.StreamMaxWPM))
	}
	if c.PDFMaxPages < 0 {
		errs = append(errs, fmt.Errorf("PDF_MAX_PAGES must not be negative"))
	}
	if c.ExceptionWordsFile != "" {
		if _, err := os.Stat(c.ExceptionWordsFile); err != nil {
			errs = append(errs, fmt.Errorf("EXCEPTION_WORDS_FILE: %w", err))
		}
	}
	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func envLevel(key string, fallback slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv(key))); err != nil {
		return fallback
	}
	return level
}
