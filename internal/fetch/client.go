// Package fetch downloads web pages and extracts their article text.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/dgallion1/speedread/internal/parser"
	"github.com/dgallion1/speedread/internal/pipeline"
	"github.com/dustin/go-humanize"
)

const (
	DefaultTimeout  = 15 * time.Second
	DefaultMaxBytes = 5 << 20
	userAgent       = "speedread/1.0 (+article extraction)"
)

// ErrBlockedAddress is returned when a URL resolves to a loopback, private,
// link-local or unspecified address.
var ErrBlockedAddress = errors.New("address not allowed")

// Client fetches URLs over HTTP. Connections to non-public addresses are
// refused unless AllowPrivate is set.
type Client struct {
	// AllowPrivate permits loopback and private-network targets. It is read
	// at dial time, so redirects and re-resolved hosts are checked too.
	AllowPrivate bool

	httpClient *http.Client
	maxBytes   int64
	log        *slog.Logger
	backoff    func(attempt int) time.Duration
}

func NewClient(timeout time.Duration, maxBytes int64, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	c := &Client{
		maxBytes: maxBytes,
		log:      log,
		backoff:  Backoff,
	}
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   c.checkDial,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// a proxy would be dialed instead of the target and hide it from checkDial
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	c.httpClient = &http.Client{Timeout: timeout, Transport: transport}
	return c
}

func (c *Client) checkDial(network, address string, _ syscall.RawConn) error {
	if c.AllowPrivate {
		return nil
	}
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if blockedAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ap.Addr())
	}
	return nil
}

func blockedAddr(a netip.Addr) bool {
	a = a.Unmap()
	return a.IsLoopback() || a.IsPrivate() || a.IsLinkLocalUnicast() ||
		a.IsLinkLocalMulticast() || a.IsUnspecified() || a.IsMulticast()
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, pipeline.Invalid("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, pipeline.Invalid("invalid url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, pipeline.Invalid("url must use http or https")
	}
	if u.Host == "" {
		return nil, pipeline.Invalid("url must include a host")
	}
	return u, nil
}

// Extract downloads rawURL and returns the readable text of its main
// article. Transient failures are retried with backoff.
func (c *Client) Extract(ctx context.Context, rawURL string) (*parser.Extraction, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt - 1)
			c.log.Warn("retrying fetch", "url", u.String(), "attempt", attempt+1, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		ex, err := c.fetch(ctx, u)
		if err == nil {
			return ex, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("fetch %s: giving up after %d attempts: %w", u, MaxRetries, lastErr)
}

func (c *Client) fetch(ctx context.Context, u *url.URL) (*parser.Extraction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedAddress) {
			return nil, pipeline.Invalid("url must point to a public address")
		}
		return nil, fmt.Errorf("get %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pipeline.Invalid("fetching %s returned status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, pipeline.Invalid("page is larger than %s", humanize.IBytes(uint64(c.maxBytes)))
	}

	format := "html"
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && mt == "text/plain" {
		format = "txt"
	}
	name := "page." + format
	p, err := parser.ForFile(name, parser.Options{})
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(body), name)
	if err != nil {
		return nil, pipeline.Invalid("could not read %s: %v", u, err)
	}
	if doc.Title == "page" {
		doc.Title = u.Host
	}
	doc.Format = format
	return parser.FromDocument(doc, u.String())
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
