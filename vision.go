package pricewatch

import "context"

// PricingExtraction is a tagged success/failure union for structured
// pricing extraction. Failure is nil exactly when Schema is usable. Model
// failures use the same closed taxonomy as fetch failures (FailureAIError
// for unusable model output, FailureNoPricing for pages with no pricing
// content).
type PricingExtraction struct {
	Schema  *PricingSchema `json:"schema"`
	Failure *CrawlFailure  `json:"failure"`
}

// OK reports whether the extraction is the success variant.
func (e *PricingExtraction) OK() bool {
	return e != nil && e.Failure == nil && e.Schema != nil
}

// PricingExtractor turns a pricing page into a PricingSchema. The vision
// implementation renders the page, screenshots it, and asks a
// vision-capable model for a structured pricing object; it is used when
// DOM extraction is unreliable.
type PricingExtractor interface {
	ExtractPricing(ctx context.Context, url string, region *RegionContext) *PricingExtraction
}

// Screenshotter captures a rendered page as an image. The rod package
// implements this on top of the shared browser handle.
type Screenshotter interface {
	Screenshot(ctx context.Context, url string, region *RegionContext) ([]byte, error)
}
