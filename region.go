package pricewatch

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RegionContext is a simulated-visitor profile used to elicit
// region-specific pricing from a page.
type RegionContext struct {
	Key             string   `json:"key"`
	Locale          string   `json:"locale"`
	Timezone        string   `json:"timezone"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	Currency        string   `json:"currency"`
	CurrencySymbols []string `json:"currencySymbols"`
	AcceptLanguage  string   `json:"acceptLanguage"`
}

// Regions maps logical region keys to visitor profiles. "global" is the
// neutral profile used when no geo simulation is requested.
var Regions = map[string]*RegionContext{
	"us": {
		Key:             "us",
		Locale:          "en-US",
		Timezone:        "America/New_York",
		Latitude:        40.7128,
		Longitude:       -74.0060,
		Currency:        "USD",
		CurrencySymbols: []string{"$", "US$", "USD"},
		AcceptLanguage:  "en-US,en;q=0.9",
	},
	"eu": {
		Key:             "eu",
		Locale:          "de-DE",
		Timezone:        "Europe/Berlin",
		Latitude:        52.5200,
		Longitude:       13.4050,
		Currency:        "EUR",
		CurrencySymbols: []string{"€", "EUR"},
		AcceptLanguage:  "de-DE,de;q=0.9,en;q=0.7",
	},
	"in": {
		Key:             "in",
		Locale:          "en-IN",
		Timezone:        "Asia/Kolkata",
		Latitude:        19.0760,
		Longitude:       72.8777,
		Currency:        "INR",
		CurrencySymbols: []string{"₹", "Rs", "INR"},
		AcceptLanguage:  "en-IN,en;q=0.9,hi;q=0.7",
	},
	"global": {
		Key:             "global",
		Locale:          "en-US",
		Timezone:        "UTC",
		Currency:        "USD",
		CurrencySymbols: []string{"$", "USD"},
		AcceptLanguage:  "en-US,en;q=0.9",
	},
}

// Region returns the context for a region key, falling back to "global"
// for unknown keys.
func Region(key string) *RegionContext {
	if rc, ok := Regions[key]; ok {
		return rc
	}
	return Regions["global"]
}

// RegionalSnapshot is the latest pricing capture for one (competitor,
// region) pair. Snapshots are compared across regions, not against their
// own history; historical diffing is the structured differ's job.
type RegionalSnapshot struct {
	Region     string         `json:"region"`
	Schema     *PricingSchema `json:"schema"`
	Currency   string         `json:"currency"`
	CapturedAt time.Time      `json:"capturedAt"`
}

// RateService converts an amount between currencies using live exchange
// rates. Implementations are remote and fallible; errors carry
// EUNAVAILABLE when the rate source cannot be reached.
type RateService interface {
	// Rate returns the multiplier converting one unit of the from currency
	// into the to currency.
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}
