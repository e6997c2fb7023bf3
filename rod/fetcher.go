package rod

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pricelens/pricewatch"
	"github.com/pricelens/pricewatch/goquery"
	"github.com/pricelens/pricewatch/htmltomarkdown"
)

// DefaultFetchTimeout is the navigation + render budget for one page.
const DefaultFetchTimeout = 30 * time.Second

// MinContentLength mirrors the HTTP strategy's minimum-signal gate.
const MinContentLength = 50

// billingToggleSelectors match monthly/yearly switches on pricing pages.
// Clicking them surfaces prices that only render for one billing mode.
var billingToggleSelectors = []string{
	"[class*='toggle'] button",
	"[role='tab']",
	"button[class*='billing']",
	"label[class*='billing']",
	"[data-billing-period]",
}

// Ensure Fetcher implements pricewatch.FetchStrategy at compile time.
var _ pricewatch.FetchStrategy = (*Fetcher)(nil)

// Fetcher renders pricing pages in headless Chrome. It is the slowest and
// last tier of the cascade: it executes JavaScript, scrolls to trigger
// lazy-loaded content, and clicks billing toggles before extracting.
type Fetcher struct {
	manager   *BrowserManager
	converter *htmltomarkdown.Converter
	timeout   time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the per-page fetch timeout.
// Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a browser fetch strategy sharing the given manager.
func NewFetcher(manager *BrowserManager, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		manager:   manager,
		converter: htmltomarkdown.NewConverter(),
		timeout:   DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name identifies the strategy in results and logs.
func (f *Fetcher) Name() string { return "browser" }

// Available reports whether the strategy can run. The browser launches
// lazily, so the strategy is always nominally available.
func (f *Fetcher) Available() bool { return true }

// Fetch renders the page and extracts markdown. All failure paths return
// the failure variant of CrawlResult.
func (f *Fetcher) Fetch(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.CrawlResult {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.manager.NewPage(ctx, region)
	if err != nil {
		return pricewatch.CrawlFailed(f.Name(), classifyBrowserError(err), "opening page: %v", err)
	}
	defer page.Close()

	if err := page.Navigate(url); err != nil {
		return pricewatch.CrawlFailed(f.Name(), classifyBrowserError(err), "navigating to %s: %v", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return pricewatch.CrawlFailed(f.Name(), classifyBrowserError(err), "waiting for load: %v", err)
	}

	// Lazy-loaded pricing sections often only render once scrolled into
	// view. Best effort; scroll failures don't fail the fetch.
	f.scrollThrough(ctx, page)
	f.clickBillingToggles(page)

	html, err := page.HTML()
	if err != nil {
		return pricewatch.CrawlFailed(f.Name(), classifyBrowserError(err), "reading HTML: %v", err)
	}

	_, cleaned, err := goquery.CleanHTML(html)
	if err != nil {
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureUnknown, "cleaning HTML: %v", err)
	}

	markdown, err := f.converter.Convert(cleaned)
	if err != nil {
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureEmpty, "converting to markdown: %v", err)
	}

	markdown = FilterDecorativeLines(markdown)
	if len(markdown) < MinContentLength {
		return pricewatch.CrawlFailed(f.Name(), pricewatch.FailureEmpty,
			"extracted %d chars from %s, below minimum %d", len(markdown), url, MinContentLength)
	}

	return pricewatch.CrawlSuccess(f.Name(), markdown)
}

// Close releases the shared browser.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// scrollThrough scrolls the page in steps to trigger lazy content.
func (f *Fetcher) scrollThrough(ctx context.Context, page *rod.Page) {
	for i := 0; i < 4; i++ {
		if _, err := page.Eval(`() => window.scrollBy(0, window.innerHeight)`); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(300 * time.Millisecond):
		}
	}
	_, _ = page.Eval(`() => window.scrollTo(0, 0)`)
}

// clickBillingToggles clicks visible monthly/yearly switches so both
// billing modes' prices end up in the DOM.
func (f *Fetcher) clickBillingToggles(page *rod.Page) {
	for _, selector := range billingToggleSelectors {
		els, err := page.Elements(selector)
		if err != nil {
			continue
		}
		for _, el := range els {
			text, err := el.Text()
			if err != nil || !isBillingToggleText(text) {
				continue
			}
			if visible, err := el.Visible(); err != nil || !visible {
				continue
			}
			_ = el.Click(proto.InputMouseButtonLeft, 1)
		}
	}
}

func isBillingToggleText(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return strings.Contains(t, "month") || strings.Contains(t, "year") || strings.Contains(t, "annual")
}

// FilterDecorativeLines drops lines whose symbol-to-letter ratio marks them
// as ASCII art or border decoration rather than content.
func FilterDecorativeLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !isDecorative(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// isDecorative reports whether a line is mostly punctuation/symbols.
func isDecorative(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 8 {
		return false
	}

	var letters, symbols int
	for _, r := range trimmed {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			letters++
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbols++
		}
	}
	if letters+symbols == 0 {
		return false
	}
	return float64(symbols)/float64(letters+symbols) > 0.7
}

// classifyBrowserError maps browser/navigation errors to failure kinds.
func classifyBrowserError(err error) pricewatch.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return pricewatch.FailureTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "403") || strings.Contains(msg, "blocked"):
		return pricewatch.FailureBlocked
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return pricewatch.FailureTimeout
	case strings.Contains(msg, "net::"):
		return pricewatch.FailureNetwork
	default:
		return pricewatch.FailureUnknown
	}
}
