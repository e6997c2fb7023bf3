package mock

import (
	"context"

	"github.com/pricelens/pricewatch"
)

var _ pricewatch.FetchStrategy = (*FetchStrategy)(nil)

// FetchStrategy is a mock implementation of pricewatch.FetchStrategy.
type FetchStrategy struct {
	NameFn      func() string
	AvailableFn func() bool
	FetchFn     func(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.CrawlResult
	CloseFn     func() error
}

func (s *FetchStrategy) Name() string {
	if s.NameFn == nil {
		return "mock"
	}
	return s.NameFn()
}

func (s *FetchStrategy) Available() bool {
	if s.AvailableFn == nil {
		return true
	}
	return s.AvailableFn()
}

func (s *FetchStrategy) Fetch(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.CrawlResult {
	return s.FetchFn(ctx, url, region)
}

func (s *FetchStrategy) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
