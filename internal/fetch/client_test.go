package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgallion1/speedread/internal/pipeline"
)

func newTestClient(maxBytes int64) *Client {
	c := NewClient(5*time.Second, maxBytes, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.backoff = func(int) time.Duration { return time.Millisecond }
	c.AllowPrivate = true
	return c
}

const articlePage = `<html><head><title>Daily Post</title></head><body>
<nav>Menu</nav>
<article><h1>Big News</h1><p>Something happened today.</p></article>
</body></html>`

func TestExtract_HTMLArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a user agent")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, articlePage)
	}))
	defer srv.Close()

	ex, err := newTestClient(0).Extract(context.Background(), srv.URL+"/post")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.Title != "Daily Post" {
		t.Errorf("Title = %q", ex.Title)
	}
	if ex.Text != "Big News\n\nSomething happened today." {
		t.Errorf("Text = %q", ex.Text)
	}
	if ex.Source != srv.URL+"/post" || ex.Format != "html" {
		t.Errorf("Source/Format = %q/%q", ex.Source, ex.Format)
	}
}

func TestExtract_PlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "Just <b>text</b> here.")
	}))
	defer srv.Close()

	ex, err := newTestClient(0).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.Text != "Just <b>text</b> here." || ex.Format != "txt" {
		t.Errorf("got %q (%s)", ex.Text, ex.Format)
	}
	if !strings.HasPrefix(srv.URL, "http://"+ex.Title) {
		t.Errorf("expected host as title, got %q", ex.Title)
	}
}

func TestExtract_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, articlePage)
	}))
	defer srv.Close()

	if _, err := newTestClient(0).Extract(context.Background(), srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestExtract_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(0).Extract(context.Background(), srv.URL)
	if !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if calls.Load() != MaxRetries {
		t.Errorf("expected %d calls, got %d", MaxRetries, calls.Load())
	}
}

func TestExtract_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestClient(0).Extract(context.Background(), srv.URL)
	if !errors.Is(err, pipeline.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestExtract_SizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<p>"+strings.Repeat("a", 2048)+"</p>")
	}))
	defer srv.Close()

	_, err := newTestClient(1024).Extract(context.Background(), srv.URL)
	if !errors.Is(err, pipeline.ErrInvalidInput) || !strings.Contains(err.Error(), "1.0 KiB") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestExtract_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(0)
	ctx, cancel := context.WithCancel(context.Background())
	c.backoff = func(int) time.Duration {
		cancel()
		return time.Minute
	}
	_, err := c.Extract(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url string
		ok  bool
	}{
		{"https://example.com/a", true},
		{"http://example.com", true},
		{"  https://example.com  ", true},
		{"", false},
		{"ftp://example.com", false},
		{"file:///etc/passwd", false},
		{"example.com/page", false},
		{"http://", false},
	}
	for _, tt := range tests {
		_, err := ValidateURL(tt.url)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateURL(%q) error = %v, want ok=%v", tt.url, err, tt.ok)
		}
		if err != nil && !errors.Is(err, pipeline.ErrInvalidInput) {
			t.Errorf("ValidateURL(%q) error kind = %v", tt.url, err)
		}
	}
}

func TestBackoff(t *testing.T) {
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		d := Backoff(attempt)
		if d < base || d >= base+base/2 {
			t.Errorf("Backoff(%d) = %v, want [%v, %v)", attempt, d, base, base+base/2)
		}
	}
	if d := Backoff(10); d < 30*time.Second || d >= 45*time.Second {
		t.Errorf("Backoff(10) = %v, want capped near 30s", d)
	}
}

func TestExtract_RefusesPrivateAddresses(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, "internal admin page")
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := c.Extract(context.Background(), srv.URL)
	if !errors.Is(err, pipeline.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if msg := pipeline.Message(err); msg != "url must point to a public address" {
		t.Errorf("message = %q", msg)
	}
	if calls.Load() != 0 {
		t.Errorf("server was reached %d times", calls.Load())
	}
}

func TestBlockedAddr(t *testing.T) {
	tests := map[string]bool{
		"127.0.0.1":        true,
		"10.1.2.3":         true,
		"172.16.0.1":       true,
		"192.168.1.1":      true,
		"169.254.169.254":  true,
		"0.0.0.0":          true,
		"::1":              true,
		"fe80::1":          true,
		"fd00::1":          true,
		"::ffff:127.0.0.1": true,
		"93.184.216.34":    false,
		"2606:4700::1111":  false,
	}
	for addr, want := range tests {
		if got := blockedAddr(netip.MustParseAddr(addr)); got != want {
			t.Errorf("blockedAddr(%s) = %v, want %v", addr, got, want)
		}
	}
}
