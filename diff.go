package pricewatch

// DiffType is the closed enumeration of structured pricing changes.
type DiffType string

// Diff types emitted by the structured differ.
const (
	DiffPriceIncrease    DiffType = "price_increase"
	DiffPriceDecrease    DiffType = "price_decrease"
	DiffPlanAdded        DiffType = "plan_added"
	DiffPlanRemoved      DiffType = "plan_removed"
	DiffFreeTierAdded    DiffType = "free_tier_added"
	DiffFreeTierRemoved  DiffType = "free_tier_removed"
	DiffCTAChanged       DiffType = "cta_changed"
	DiffHighlightChanged DiffType = "highlight_changed"
)

// DetectedDiff is one structured change between two pricing captures.
// Produced fresh on every comparison and never mutated.
type DetectedDiff struct {
	Type        DiffType `json:"type"`
	Severity    float64  `json:"severity"`
	PlanName    string   `json:"planName,omitempty"`
	Before      string   `json:"before,omitempty"`
	After       string   `json:"after,omitempty"`
	Description string   `json:"description"`
}

// DiffReport is the structured differ's output for one (before, after)
// pair of schemas.
type DiffReport struct {
	HasMeaningfulChanges bool           `json:"hasMeaningfulChanges"`
	Diffs                []DetectedDiff `json:"diffs"`
	OverallSeverity      float64        `json:"overallSeverity"`
	Summary              string         `json:"summary"`
}

// SignalType is the coarse category of a meaningful text change.
type SignalType string

// Signal types, in classifier priority order.
const (
	SignalPricing     SignalType = "pricing"
	SignalPlan        SignalType = "plan"
	SignalCTA         SignalType = "cta"
	SignalFeature     SignalType = "feature"
	SignalPositioning SignalType = "positioning"
)

// TextClassification is the text meaningfulness classifier's verdict. It is
// advisory text-level triage, independent from the structured differ.
type TextClassification struct {
	IsMeaningful bool       `json:"isMeaningful"`
	Reason       string     `json:"reason"`
	SignalType   SignalType `json:"signalType,omitempty"`
}

// RegionalDifference is one plan's price deviation in a region relative to
// the baseline region.
type RegionalDifference struct {
	PlanName               string  `json:"planName"`
	Region                 string  `json:"region"`
	BaselineRegion         string  `json:"baselineRegion"`
	BaselinePrice          string  `json:"baselinePrice"`
	RegionalPrice          string  `json:"regionalPrice"`
	PriceDifferencePercent float64 `json:"priceDifferencePercent"`
	IsDiscount             bool    `json:"isDiscount"`
	Severity               string  `json:"severity"` // low, medium, high
}

// RegionalReport is the cross-region comparison result. An empty
// Differences list means no regional differences; absence of comparable
// data is not a failure.
type RegionalReport struct {
	BaselineRegion string               `json:"baselineRegion"`
	Currency       string               `json:"currency"`
	Differences    []RegionalDifference `json:"differences"`
}
