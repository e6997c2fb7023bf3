// Package slog provides logging decorators for pricewatch services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/pricelens/pricewatch"
)

// Ensure LoggingStrategy implements pricewatch.FetchStrategy.
var _ pricewatch.FetchStrategy = (*LoggingStrategy)(nil)

// LoggingStrategy wraps a FetchStrategy with logging of each fetch outcome.
type LoggingStrategy struct {
	next   pricewatch.FetchStrategy
	logger *slog.Logger
}

// NewLoggingStrategy creates a new LoggingStrategy.
func NewLoggingStrategy(next pricewatch.FetchStrategy, logger *slog.Logger) *LoggingStrategy {
	return &LoggingStrategy{next: next, logger: logger}
}

// Name delegates to the wrapped strategy.
func (s *LoggingStrategy) Name() string {
	return s.next.Name()
}

// Available delegates to the wrapped strategy.
func (s *LoggingStrategy) Available() bool {
	return s.next.Available()
}

// Fetch logs the URL being fetched and delegates to the wrapped strategy.
func (s *LoggingStrategy) Fetch(ctx context.Context, url string, region *pricewatch.RegionContext) (result *pricewatch.CrawlResult) {
	defer func(begin time.Time) {
		attrs := []any{
			"strategy", s.next.Name(),
			"url", url,
			"duration", time.Since(begin),
		}
		if region != nil {
			attrs = append(attrs, "region", region.Key)
		}
		if result.OK() {
			attrs = append(attrs, "bytes", len(result.Markdown))
			s.logger.Info("fetch", attrs...)
			return
		}
		if result != nil && result.Failure != nil {
			attrs = append(attrs, "failure", string(result.Failure.Kind), "message", result.Failure.Message)
		}
		s.logger.Warn("fetch failed", attrs...)
	}(time.Now())
	return s.next.Fetch(ctx, url, region)
}

// Close delegates to the wrapped strategy.
func (s *LoggingStrategy) Close() error {
	return s.next.Close()
}
