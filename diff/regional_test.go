package diff_test

import (
	"context"
	"testing"

	"github.com/pricelens/pricewatch"
	"github.com/pricelens/pricewatch/diff"
	"github.com/pricelens/pricewatch/mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityRates treats every currency as already being in USD.
func identityRates() *mock.RateService {
	return &mock.RateService{
		RateFn: func(ctx context.Context, from, to string) (decimal.Decimal, error) {
			return decimal.NewFromInt(1), nil
		},
	}
}

func snapshot(region, currency string, plans ...pricewatch.PricingPlan) *pricewatch.RegionalSnapshot {
	return &pricewatch.RegionalSnapshot{
		Region:   region,
		Currency: currency,
		Schema:   &pricewatch.PricingSchema{Currency: currency, Plans: plans},
	}
}

func TestRegionalComparator_Compare(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("fewer than two usable regions yields empty report", func(t *testing.T) {
		t.Parallel()
		comparator := diff.NewRegionalComparator(identityRates())

		report, err := comparator.Compare(ctx, []*pricewatch.RegionalSnapshot{
			snapshot("us", "USD", plan("Pro", "$49/mo", "")),
		})
		require.NoError(t, err)
		assert.Empty(t, report.Differences)
	})

	t.Run("us is the baseline when present", func(t *testing.T) {
		t.Parallel()
		comparator := diff.NewRegionalComparator(identityRates())

		report, err := comparator.Compare(ctx, []*pricewatch.RegionalSnapshot{
			snapshot("in", "USD", plan("Pro", "$100/mo", "")),
			snapshot("us", "USD", plan("Pro", "$100/mo", "")),
		})
		require.NoError(t, err)
		assert.Equal(t, "us", report.BaselineRegion)
	})

	t.Run("regional discount is detected", func(t *testing.T) {
		t.Parallel()
		comparator := diff.NewRegionalComparator(identityRates())

		report, err := comparator.Compare(ctx, []*pricewatch.RegionalSnapshot{
			snapshot("us", "USD", plan("Pro", "$100/mo", "")),
			snapshot("in", "USD", plan("Pro", "$50/mo", "")),
		})
		require.NoError(t, err)

		require.Len(t, report.Differences, 1)
		d := report.Differences[0]
		assert.Equal(t, "in", d.Region)
		assert.Equal(t, "us", d.BaselineRegion)
		assert.Equal(t, -50.0, d.PriceDifferencePercent)
		assert.True(t, d.IsDiscount)
		assert.Equal(t, "high", d.Severity)
	})

	t.Run("deviation under ten percent is noise", func(t *testing.T) {
		t.Parallel()
		comparator := diff.NewRegionalComparator(identityRates())

		report, err := comparator.Compare(ctx, []*pricewatch.RegionalSnapshot{
			snapshot("us", "USD", plan("Pro", "$100/mo", "")),
			snapshot("eu", "USD", plan("Pro", "$105/mo", "")),
		})
		require.NoError(t, err)
		assert.Empty(t, report.Differences)
	})

	t.Run("severity tiers by deviation", func(t *testing.T) {
		t.Parallel()
		comparator := diff.NewRegionalComparator(identityRates())

		report, err := comparator.Compare(ctx, []*pricewatch.RegionalSnapshot{
			snapshot("us", "USD",
				plan("A", "$100/mo", ""), plan("B", "$100/mo", ""), plan("C", "$100/mo", "")),
			snapshot("eu", "USD",
				plan("A", "$115/mo", ""), plan("B", "$125/mo", ""), plan("C", "$140/mo", "")),
		})
		require.NoError(t, err)
		require.Len(t, report.Differences, 3)

		bySeverity := map[string]string{}
		for _, d := range report.Differences {
			bySeverity[d.PlanName] = d.Severity
		}
		assert.Equal(t, "low", bySeverity["A"])
		assert.Equal(t, "medium", bySeverity["B"])
		assert.Equal(t, "high", bySeverity["C"])
	})

	t.Run("prices are normalized through the rate service", func(t *testing.T) {
		t.Parallel()
		rates := &mock.RateService{
			RateFn: func(ctx context.Context, from, to string) (decimal.Decimal, error) {
				if from == "EUR" {
					return decimal.RequireFromString("1.1"), nil
				}
				return decimal.NewFromInt(1), nil
			},
		}
		comparator := diff.NewRegionalComparator(rates)

		report, err := comparator.Compare(ctx, []*pricewatch.RegionalSnapshot{
			snapshot("us", "USD", plan("Pro", "$100/mo", "")),
			snapshot("eu", "EUR", plan("Pro", "€100/mo", "")),
		})
		require.NoError(t, err)

		// €100 at 1.1 = $110, a 10% premium over the $100 baseline.
		require.Len(t, report.Differences, 1)
		assert.Equal(t, 10.0, report.Differences[0].PriceDifferencePercent)
		assert.False(t, report.Differences[0].IsDiscount)
	})

	t.Run("contact sales plans are skipped", func(t *testing.T) {
		t.Parallel()
		comparator := diff.NewRegionalComparator(identityRates())

		report, err := comparator.Compare(ctx, []*pricewatch.RegionalSnapshot{
			snapshot("us", "USD", plan("Enterprise", "Contact us", "")),
			snapshot("eu", "USD", plan("Enterprise", "Contact us", "")),
		})
		require.NoError(t, err)
		assert.Empty(t, report.Differences)
	})
}
