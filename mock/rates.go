package mock

import (
	"context"

	"github.com/pricelens/pricewatch"
	"github.com/shopspring/decimal"
)

var _ pricewatch.RateService = (*RateService)(nil)

// RateService is a mock implementation of pricewatch.RateService.
type RateService struct {
	RateFn func(ctx context.Context, from, to string) (decimal.Decimal, error)
}

func (s *RateService) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	return s.RateFn(ctx, from, to)
}
