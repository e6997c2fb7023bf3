package pricewatch

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BillingPeriod is the billing cadence of a pricing plan.
type BillingPeriod string

// Billing period values.
const (
	BillingMonthly BillingPeriod = "monthly"
	BillingYearly  BillingPeriod = "yearly"
	BillingOneTime BillingPeriod = "one-time"
	BillingUnknown BillingPeriod = "unknown"
)

// PricingPlan is a single plan as displayed on a pricing page.
//
// PriceNumeric is nil exactly when the plan is enterprise/contact-sales or
// the displayed price could not be parsed.
type PricingPlan struct {
	Name         string           `json:"name"`
	PriceRaw     string           `json:"priceRaw"`
	PriceNumeric *decimal.Decimal `json:"priceNumeric"`
	Billing      BillingPeriod    `json:"billing"`
	Features     []string         `json:"features"`
	CTA          string           `json:"cta"`
	Badges       []string         `json:"badges"`
	Credits      string           `json:"credits,omitempty"`
}

// NormalizedName returns the plan name lowered and whitespace-collapsed.
// Plan matching across captures is by normalized name, never by position,
// since plan ordering can change independently of identity.
func (p *PricingPlan) NormalizedName() string {
	return NormalizePlanName(p.Name)
}

// NormalizePlanName lowers and whitespace-collapses a plan name.
func NormalizePlanName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// PricingSchema is a structured representation of a pricing page at one
// point in time. Schemas are immutable once captured; a new capture always
// creates a new schema.
type PricingSchema struct {
	ID              string        `json:"id"`
	CompetitorID    string        `json:"competitorId"`
	Region          string        `json:"region"`
	Plans           []PricingPlan `json:"plans"`
	HasFreeTier     bool          `json:"hasFreeTier"`
	HighlightedPlan string        `json:"highlightedPlan"`
	Currency        string        `json:"currency"`
	SourceURL       string        `json:"sourceUrl"`
	CapturedAt      time.Time     `json:"capturedAt"`

	// RawMarkdown is the normalized page content this schema was extracted
	// from. Stored alongside the schema so the next run's text triage has
	// something to compare against.
	RawMarkdown string `json:"rawMarkdown,omitempty"`
}

// Validate returns an error if the schema contains invalid fields.
func (s *PricingSchema) Validate() error {
	if s.CompetitorID == "" {
		return Errorf(EINVALID, "schema competitor ID required")
	}
	if s.SourceURL == "" {
		return Errorf(EINVALID, "schema source URL required")
	}
	return nil
}

// PlanByName returns the plan with the given normalized name, or nil.
func (s *PricingSchema) PlanByName(name string) *PricingPlan {
	want := NormalizePlanName(name)
	for i := range s.Plans {
		if s.Plans[i].NormalizedName() == want {
			return &s.Plans[i]
		}
	}
	return nil
}

// SchemaService persists pricing schema history per (competitor, region).
type SchemaService interface {
	// CreateSchema appends a new capture to the history.
	CreateSchema(ctx context.Context, schema *PricingSchema) error

	// FindLatestSchema returns the most recent capture for a competitor and
	// region. Returns ENOTFOUND if no capture exists yet.
	FindLatestSchema(ctx context.Context, competitorID, region string) (*PricingSchema, error)

	// FindSchemas returns the latest N captures, newest first.
	FindSchemas(ctx context.Context, competitorID, region string, limit int) ([]*PricingSchema, error)
}

var (
	priceAmountRe  = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*(?:\.\d+)?|\d+(?:\.\d+)?)`)
	contactSalesRe = regexp.MustCompile(`(?i)\b(contact|custom|talk to|get a quote|let's talk)\b`)
	yearlyRe       = regexp.MustCompile(`(?i)(/\s*(yr|year|annum)|annual|yearly|per year)`)
	monthlyRe      = regexp.MustCompile(`(?i)(/\s*(mo|month)|monthly|per month)`)
	oneTimeRe      = regexp.MustCompile(`(?i)(one[- ]time|lifetime|once)`)
)

// ParsePrice extracts a numeric amount from a display price such as
// "$49/mo" or "₹3,999 per year". It returns nil for contact-sales style
// strings and strings with no parseable amount, matching the PricingPlan
// invariant.
func ParsePrice(raw string) *decimal.Decimal {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || contactSalesRe.MatchString(trimmed) {
		return nil
	}
	if strings.EqualFold(trimmed, "free") || trimmed == "$0" || trimmed == "0" {
		zero := decimal.Zero
		return &zero
	}
	m := priceAmountRe.FindString(trimmed)
	if m == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return nil
	}
	return &d
}

// ParseBillingPeriod infers the billing cadence from a display price.
func ParseBillingPeriod(raw string) BillingPeriod {
	switch {
	case yearlyRe.MatchString(raw):
		return BillingYearly
	case monthlyRe.MatchString(raw):
		return BillingMonthly
	case oneTimeRe.MatchString(raw):
		return BillingOneTime
	default:
		return BillingUnknown
	}
}
