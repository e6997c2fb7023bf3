// Package http provides the lightweight HTML fetch strategy and sitemap
// based pricing-page discovery. The fetcher does not execute JavaScript;
// it is the fast, free middle tier of the fetch cascade.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/pricelens/pricewatch"
	"github.com/pricelens/pricewatch/goquery"
	"github.com/pricelens/pricewatch/trafilatura"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 15 * time.Second

// MinContentLength is the minimum number of extracted characters for a
// fetch to count as success. Anything shorter is an EMPTY failure.
const MinContentLength = 50

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Ensure Fetcher implements pricewatch.FetchStrategy at compile time.
var _ pricewatch.FetchStrategy = (*Fetcher)(nil)

// Fetcher retrieves pricing pages over plain HTTP. Unlike the browser
// strategy it cannot render client-side content, so heavily dynamic pages
// come back EMPTY and the cascade escalates.
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	fallback *trafilatura.Extractor
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new HTTP-based fetch strategy.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		fallback: trafilatura.NewExtractor(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Name identifies the strategy in results and logs.
func (f *Fetcher) Name() string { return "http" }

// Available reports whether the strategy can run. The HTTP fetcher has no
// external requirements and is always available.
func (f *Fetcher) Available() bool { return true }

// Fetch retrieves the page and extracts a markdown-like representation.
// All failure paths return the failure variant of CrawlResult.
func (f *Fetcher) Fetch(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.CrawlResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureUnknown, "building request: %v", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", acceptLanguage(region))

	resp, err := f.client.Do(req)
	if err != nil {
		return pricewatch.CrawlFailed(f.Name(), classifyTransportError(err), "%v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureBlocked, "HTTP %d for %s", resp.StatusCode, url)
	case resp.StatusCode != http.StatusOK:
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureUnknown, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pricewatch.CrawlFailed(f.Name(), classifyTransportError(err), "reading body: %v", err)
	}

	result, err := goquery.Extract(string(body))
	if err != nil {
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureUnknown, "extracting content: %v", err)
	}

	text := result.Text
	if len(text) < MinContentLength {
		// Selector walk found almost nothing; try main-content extraction
		// before giving up on the page.
		if fallbackText, ferr := f.fallback.ExtractText(string(body)); ferr == nil && len(fallbackText) > len(text) {
			text = fallbackText
		}
	}
	if len(text) < MinContentLength {
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureEmpty,
			"extracted %d chars from %s, below minimum %d", len(text), url, MinContentLength)
	}

	return pricewatch.CrawlSuccess(f.Name(), text)
}

// Close releases resources. For the HTTP fetcher this is a no-op.
func (f *Fetcher) Close() error { return nil }

// classifyTransportError maps a client error to a failure kind.
func classifyTransportError(err error) pricewatch.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return pricewatch.FailureTimeout
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return pricewatch.FailureTimeout
	}
	return pricewatch.FailureNetwork
}

func acceptLanguage(region *pricewatch.RegionContext) string {
	if region == nil || region.AcceptLanguage == "" {
		return "en-US,en;q=0.9"
	}
	return region.AcceptLanguage
}
