// Package scrapeapi provides the managed scraping-API fetch strategy. It is
// the highest-quality and only paid tier of the cascade: the remote service
// renders the page (including JavaScript) and returns markdown, so no local
// browser is involved.
package scrapeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pricelens/pricewatch"
)

// DefaultTimeout is the request budget for one managed-API call. The
// service renders pages remotely, so it needs more headroom than a plain
// HTTP fetch.
const DefaultTimeout = 30 * time.Second

// MinContentLength mirrors the other strategies' minimum-signal gate.
const MinContentLength = 50

// Ensure Fetcher implements pricewatch.FetchStrategy at compile time.
var _ pricewatch.FetchStrategy = (*Fetcher)(nil)

// Fetcher calls a managed scraping API over HTTPS. The strategy is only
// available when an API key is configured.
type Fetcher struct {
	client   *http.Client
	endpoint string
	apiKey   string
	timeout  time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the request timeout. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHTTPClient replaces the HTTP client. Used by tests.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a managed-API fetch strategy. An empty apiKey leaves
// the strategy configured but unavailable; the orchestrator skips it.
func NewFetcher(endpoint, apiKey string, opts ...Option) *Fetcher {
	f := &Fetcher{
		endpoint: endpoint,
		apiKey:   apiKey,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	return f
}

// Name identifies the strategy in results and logs.
func (f *Fetcher) Name() string { return "scrapeapi" }

// Available reports whether credentials are configured.
func (f *Fetcher) Available() bool {
	return f.apiKey != "" && f.endpoint != ""
}

// scrapeRequest is the managed API's request body.
type scrapeRequest struct {
	URL      string `json:"url"`
	Render   bool   `json:"render"`
	Country  string `json:"country,omitempty"`
	Language string `json:"language,omitempty"`
}

// scrapeResponse is the managed API's response body.
type scrapeResponse struct {
	Success    bool   `json:"success"`
	Markdown   string `json:"markdown"`
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
}

// Fetch asks the managed API to render and scrape the page. All failure
// paths return the failure variant of CrawlResult.
func (f *Fetcher) Fetch(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.CrawlResult {
	if !f.Available() {
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureAPIError, "scraping API not configured")
	}

	reqBody := scrapeRequest{URL: url, Render: true}
	if region != nil {
		reqBody.Country = region.Key
		reqBody.Language = region.Locale
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureUnknown, "encoding request: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureUnknown, "building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		kind := pricewatch.FailureNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			kind = pricewatch.FailureTimeout
		}
		return pricewatch.CrawlFailed(f.Name(), kind, "%v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureNetwork, "reading response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureAPIError,
			"scraping API returned HTTP %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var sr scrapeResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureAPIError, "decoding response: %v", err)
	}

	switch {
	case !sr.Success && (sr.StatusCode == http.StatusForbidden || sr.StatusCode == http.StatusTooManyRequests):
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureBlocked,
			"target returned HTTP %d via scraping API", sr.StatusCode)
	case !sr.Success:
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureAPIError,
			"scraping API failure: %s", firstNonEmpty(sr.Error, fmt.Sprintf("status %d", sr.StatusCode)))
	case len(sr.Markdown) < MinContentLength:
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureEmpty,
			"scraping API returned %d chars for %s, below minimum %d", len(sr.Markdown), url, MinContentLength)
	}

	return pricewatch.CrawlSuccess(f.Name(), sr.Markdown)
}

// Close releases resources. No-op for the API client.
func (f *Fetcher) Close() error { return nil }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
