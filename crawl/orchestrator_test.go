package crawl_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pricelens/pricewatch"
	"github.com/pricelens/pricewatch/crawl"
	"github.com/pricelens/pricewatch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strategy(name string, results ...*pricewatch.CrawlResult) (*mock.FetchStrategy, *int) {
	calls := 0
	return &mock.FetchStrategy{
		NameFn: func() string { return name },
		FetchFn: func(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.CrawlResult {
			i := calls
			calls++
			if i >= len(results) {
				i = len(results) - 1
			}
			return results[i]
		},
	}, &calls
}

func TestOrchestrator_Fetch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("first success wins, later tiers untouched", func(t *testing.T) {
		t.Parallel()
		api, apiCalls := strategy("scrapeapi", pricewatch.CrawlSuccess("scrapeapi", "# Pricing"))
		html, htmlCalls := strategy("http", pricewatch.CrawlSuccess("http", "unused"))

		o := crawl.NewOrchestrator(discardLogger(), api, html)
		result := o.Fetch(ctx, "https://example.com/pricing", nil)

		require.True(t, result.OK())
		assert.Equal(t, "scrapeapi", result.Strategy)
		assert.Equal(t, 1, *apiCalls)
		assert.Equal(t, 0, *htmlCalls)
	})

	t.Run("blocked tier escalates to the next", func(t *testing.T) {
		t.Parallel()
		api, _ := strategy("scrapeapi", pricewatch.CrawlFailed("scrapeapi", pricewatch.FailureBlocked, "status 403"))
		html, htmlCalls := strategy("http", pricewatch.CrawlSuccess("http", "# Pricing"))

		o := crawl.NewOrchestrator(discardLogger(), api, html)
		result := o.Fetch(ctx, "https://example.com/pricing", nil)

		require.True(t, result.OK())
		assert.Equal(t, "http", result.Strategy)
		assert.Equal(t, 1, *htmlCalls)
	})

	t.Run("unavailable strategy is skipped", func(t *testing.T) {
		t.Parallel()
		api, apiCalls := strategy("scrapeapi", pricewatch.CrawlSuccess("scrapeapi", "unused"))
		api.AvailableFn = func() bool { return false }
		html, _ := strategy("http", pricewatch.CrawlSuccess("http", "# Pricing"))

		o := crawl.NewOrchestrator(discardLogger(), api, html)
		result := o.Fetch(ctx, "https://example.com/pricing", nil)

		require.True(t, result.OK())
		assert.Equal(t, "http", result.Strategy)
		assert.Equal(t, 0, *apiCalls)
	})

	t.Run("all tiers failing returns the last failure", func(t *testing.T) {
		t.Parallel()
		api, _ := strategy("scrapeapi", pricewatch.CrawlFailed("scrapeapi", pricewatch.FailureAPIError, "boom"))
		browser, _ := strategy("browser", pricewatch.CrawlFailed("browser", pricewatch.FailureTimeout, "slow"))

		o := crawl.NewOrchestrator(discardLogger(), api, browser)
		result := o.Fetch(ctx, "https://example.com/pricing", nil)

		require.False(t, result.OK())
		assert.Equal(t, "browser", result.Strategy)
		assert.Equal(t, pricewatch.FailureTimeout, result.Failure.Kind)
	})

	t.Run("no strategies yields an unknown failure", func(t *testing.T) {
		t.Parallel()
		o := crawl.NewOrchestrator(discardLogger())
		result := o.Fetch(ctx, "https://example.com/pricing", nil)

		require.False(t, result.OK())
		assert.Equal(t, pricewatch.FailureUnknown, result.Failure.Kind)
	})
}

func TestOrchestrator_FetchWithRetry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("retries transient failures until success", func(t *testing.T) {
		t.Parallel()
		html, htmlCalls := strategy("http",
			pricewatch.CrawlFailed("http", pricewatch.FailureNetwork, "reset"),
			pricewatch.CrawlSuccess("http", "# Pricing"),
		)

		o := crawl.NewOrchestrator(discardLogger(), html)
		o.BackoffUnit = time.Millisecond
		result := o.FetchWithRetry(ctx, "https://example.com/pricing", nil, 3)

		require.True(t, result.OK())
		assert.Equal(t, 2, *htmlCalls)
	})

	t.Run("blocked tier is never re-invoked across attempts", func(t *testing.T) {
		t.Parallel()
		api, apiCalls := strategy("scrapeapi", pricewatch.CrawlFailed("scrapeapi", pricewatch.FailureBlocked, "status 403"))
		html, htmlCalls := strategy("http",
			pricewatch.CrawlFailed("http", pricewatch.FailureNetwork, "reset"),
			pricewatch.CrawlSuccess("http", "# Pricing"),
		)

		o := crawl.NewOrchestrator(discardLogger(), api, html)
		o.BackoffUnit = time.Millisecond
		result := o.FetchWithRetry(ctx, "https://example.com/pricing", nil, 3)

		require.True(t, result.OK())
		assert.Equal(t, 1, *apiCalls, "blocked tier must not be retried")
		assert.Equal(t, 2, *htmlCalls)
	})

	t.Run("terminal final failure stops retrying early", func(t *testing.T) {
		t.Parallel()
		browser, browserCalls := strategy("browser", pricewatch.CrawlFailed("browser", pricewatch.FailureEmpty, "no content"))

		o := crawl.NewOrchestrator(discardLogger(), browser)
		o.BackoffUnit = time.Millisecond
		result := o.FetchWithRetry(ctx, "https://example.com/pricing", nil, 3)

		require.False(t, result.OK())
		assert.Equal(t, pricewatch.FailureEmpty, result.Failure.Kind)
		assert.Equal(t, 1, *browserCalls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		t.Parallel()
		html, htmlCalls := strategy("http", pricewatch.CrawlFailed("http", pricewatch.FailureNetwork, "reset"))

		o := crawl.NewOrchestrator(discardLogger(), html)
		o.BackoffUnit = time.Millisecond
		result := o.FetchWithRetry(ctx, "https://example.com/pricing", nil, 3)

		require.False(t, result.OK())
		assert.Equal(t, 3, *htmlCalls)
	})

	t.Run("cancelled context stops between attempts", func(t *testing.T) {
		t.Parallel()
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		html, _ := strategy("http", pricewatch.CrawlFailed("http", pricewatch.FailureNetwork, "reset"))

		o := crawl.NewOrchestrator(discardLogger(), html)
		o.BackoffUnit = time.Minute
		result := o.FetchWithRetry(cancelled, "https://example.com/pricing", nil, 3)

		require.False(t, result.OK())
		assert.Equal(t, pricewatch.FailureTimeout, result.Failure.Kind)
	})
}
