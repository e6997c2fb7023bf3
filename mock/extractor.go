package mock

import (
	"context"

	"github.com/pricelens/pricewatch"
)

var _ pricewatch.PricingExtractor = (*PricingExtractor)(nil)

// PricingExtractor is a mock implementation of pricewatch.PricingExtractor.
type PricingExtractor struct {
	ExtractPricingFn func(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.PricingExtraction
}

func (e *PricingExtractor) ExtractPricing(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.PricingExtraction {
	return e.ExtractPricingFn(ctx, url, region)
}

var _ pricewatch.Screenshotter = (*Screenshotter)(nil)

// Screenshotter is a mock implementation of pricewatch.Screenshotter.
type Screenshotter struct {
	ScreenshotFn func(ctx context.Context, url string, region *pricewatch.RegionContext) ([]byte, error)
}

func (s *Screenshotter) Screenshot(ctx context.Context, url string, region *pricewatch.RegionContext) ([]byte, error) {
	return s.ScreenshotFn(ctx, url, region)
}
