package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/pricelens/pricewatch"
	"github.com/pricelens/pricewatch/mock"
	pwslog "github.com/pricelens/pricewatch/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingStrategy_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs success with strategy, bytes, and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.FetchStrategy{
			NameFn: func() string { return "http" },
			FetchFn: func(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.CrawlResult {
				return pricewatch.CrawlSuccess("http", "# Pricing content")
			},
		}

		strategy := pwslog.NewLoggingStrategy(inner, logger)
		result := strategy.Fetch(context.Background(), "https://acme.test/pricing", nil)

		require.True(t, result.OK())
		output := buf.String()
		assert.Contains(t, output, "fetch")
		assert.Contains(t, output, "strategy=http")
		assert.Contains(t, output, "url=https://acme.test/pricing")
		assert.Contains(t, output, "bytes=17")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs failure kind and message", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.FetchStrategy{
			NameFn: func() string { return "browser" },
			FetchFn: func(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.CrawlResult {
				return pricewatch.CrawlFailed("browser", pricewatch.FailureBlocked, "status 403")
			},
		}

		strategy := pwslog.NewLoggingStrategy(inner, logger)
		result := strategy.Fetch(context.Background(), "https://acme.test/pricing", nil)

		require.False(t, result.OK())
		output := buf.String()
		assert.Contains(t, output, "fetch failed")
		assert.Contains(t, output, "failure=BLOCKED")
		assert.Contains(t, output, "status 403")
	})

	t.Run("logs region key when present", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.FetchStrategy{
			FetchFn: func(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.CrawlResult {
				return pricewatch.CrawlSuccess("mock", "some markdown content here")
			},
		}

		strategy := pwslog.NewLoggingStrategy(inner, logger)
		strategy.Fetch(context.Background(), "https://acme.test/pricing", pricewatch.Region("eu"))

		assert.Contains(t, buf.String(), "region=eu")
	})

	t.Run("delegates name, available, and close", func(t *testing.T) {
		t.Parallel()

		closed := false
		inner := &mock.FetchStrategy{
			NameFn:      func() string { return "scrapeapi" },
			AvailableFn: func() bool { return false },
			CloseFn:     func() error { closed = true; return nil },
		}

		strategy := pwslog.NewLoggingStrategy(inner, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		assert.Equal(t, "scrapeapi", strategy.Name())
		assert.False(t, strategy.Available())
		require.NoError(t, strategy.Close())
		assert.True(t, closed)
	})
}
