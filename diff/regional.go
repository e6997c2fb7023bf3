package diff

import (
	"context"

	"github.com/pricelens/pricewatch"
	"github.com/shopspring/decimal"
)

// Regional deviation thresholds, in percent.
var (
	regionalNoiseThreshold  = decimal.NewFromInt(10)
	regionalMediumThreshold = decimal.NewFromInt(20)
	regionalHighThreshold   = decimal.NewFromInt(30)
)

// ReferenceCurrency is the currency every regional price is normalized to
// before comparison.
const ReferenceCurrency = "USD"

// RegionalComparator surfaces geo-pricing discrepancies between snapshots
// of the same competitor captured under different region contexts.
type RegionalComparator struct {
	rates pricewatch.RateService
}

// NewRegionalComparator creates a RegionalComparator.
func NewRegionalComparator(rates pricewatch.RateService) *RegionalComparator {
	return &RegionalComparator{rates: rates}
}

// Compare normalizes every plan price to the reference currency, matches
// plans by normalized name across regions, and computes each region's
// percentage deviation from the baseline region ("us" when present, else
// the first snapshot). Fewer than two usable regions or zero matched plans
// yields an empty report; absence of comparable data is not a failure.
func (c *RegionalComparator) Compare(ctx context.Context, snapshots []*pricewatch.RegionalSnapshot) (*pricewatch.RegionalReport, error) {
	usable := make([]*pricewatch.RegionalSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if s != nil && s.Schema != nil && len(s.Schema.Plans) > 0 {
			usable = append(usable, s)
		}
	}

	report := &pricewatch.RegionalReport{Currency: ReferenceCurrency}
	if len(usable) < 2 {
		return report, nil
	}

	baseline := usable[0]
	for _, s := range usable {
		if s.Region == "us" {
			baseline = s
			break
		}
	}
	report.BaselineRegion = baseline.Region

	basePrices, err := c.normalizedPrices(ctx, baseline)
	if err != nil {
		return nil, err
	}

	for _, snapshot := range usable {
		if snapshot == baseline {
			continue
		}
		regionPrices, err := c.normalizedPrices(ctx, snapshot)
		if err != nil {
			return nil, err
		}

		for i := range snapshot.Schema.Plans {
			plan := &snapshot.Schema.Plans[i]
			name := plan.NormalizedName()
			base, ok := basePrices[name]
			if !ok || base.price.IsZero() {
				continue
			}
			regional, ok := regionPrices[name]
			if !ok {
				continue
			}

			pct := regional.price.Sub(base.price).
				Div(base.price).
				Mul(decimal.NewFromInt(100))
			if pct.Abs().LessThan(regionalNoiseThreshold) {
				continue
			}

			pctFloat, _ := pct.Round(2).Float64()
			report.Differences = append(report.Differences, pricewatch.RegionalDifference{
				PlanName:               plan.Name,
				Region:                 snapshot.Region,
				BaselineRegion:         baseline.Region,
				BaselinePrice:          base.raw,
				RegionalPrice:          regional.raw,
				PriceDifferencePercent: pctFloat,
				IsDiscount:             pct.IsNegative(),
				Severity:               regionalSeverity(pct.Abs()),
			})
		}
	}

	return report, nil
}

type normalizedPrice struct {
	price decimal.Decimal
	raw   string
}

// normalizedPrices converts every priced plan in a snapshot to the
// reference currency, keyed by normalized plan name. Contact-sales plans
// (nil numeric price) are skipped.
func (c *RegionalComparator) normalizedPrices(ctx context.Context, snapshot *pricewatch.RegionalSnapshot) (map[string]normalizedPrice, error) {
	currency := snapshot.Currency
	if currency == "" {
		currency = snapshot.Schema.Currency
	}
	if currency == "" {
		currency = ReferenceCurrency
	}

	rate, err := c.rates.Rate(ctx, currency, ReferenceCurrency)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]normalizedPrice)
	for i := range snapshot.Schema.Plans {
		plan := &snapshot.Schema.Plans[i]
		if plan.PriceNumeric == nil {
			continue
		}
		prices[plan.NormalizedName()] = normalizedPrice{
			price: plan.PriceNumeric.Mul(rate),
			raw:   plan.PriceRaw,
		}
	}
	return prices, nil
}

// regionalSeverity maps an absolute deviation percentage to a tier.
func regionalSeverity(absPct decimal.Decimal) string {
	switch {
	case absPct.GreaterThanOrEqual(regionalHighThreshold):
		return "high"
	case absPct.GreaterThanOrEqual(regionalMediumThreshold):
		return "medium"
	default:
		return "low"
	}
}
