package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pricelens/pricewatch"
	"github.com/shopspring/decimal"
)

// Severity weights for each structured check. Free-tier removal is the
// strongest signal a pricing page can emit; plan removal outranks plan
// addition because losing an option says more than gaining one.
const (
	severityFreeTierRemoved = 1.0
	severityPlanRemoved     = 0.95
	severityPriceIncrease   = 0.9
	severityPriceDecrease   = 0.85
	severityPlanAdded       = 0.8
	severityFreeTierAdded   = 0.7
	severityCTAChanged      = 0.6
	severityHighlight       = 0.5
)

// priceChangeThresholdPct is the minimum percentage price movement that
// counts as a change; anything below is display noise.
var priceChangeThresholdPct = decimal.NewFromInt(5)

// CTATransition is one semantic boundary whose crossing makes a CTA wording
// change meaningful.
type CTATransition struct {
	From string
	To   string
}

// DefaultCTATransitions lists the semantic boundaries checked. The list is
// deliberately minimal; broader CTA churn is handled by the text classifier.
func DefaultCTATransitions() []CTATransition {
	return []CTATransition{
		{From: "free", To: "paid"},
		{From: "trial", To: "paid"},
		{From: "start", To: "contact"},
	}
}

// SchemaDiffer compares successive pricing schema captures. It is a pure
// function of its inputs: the same (before, after) pair always yields the
// same diff list.
type SchemaDiffer struct {
	ctaTransitions []CTATransition
}

// NewSchemaDiffer creates a SchemaDiffer. Nil transitions use the default
// table.
func NewSchemaDiffer(transitions []CTATransition) *SchemaDiffer {
	if transitions == nil {
		transitions = DefaultCTATransitions()
	}
	return &SchemaDiffer{ctaTransitions: transitions}
}

// Diff runs the five structured checks and aggregates severity. A nil
// before (first-ever capture) yields no diffs; there is nothing to compare
// against.
func (d *SchemaDiffer) Diff(before, after *pricewatch.PricingSchema) pricewatch.DiffReport {
	if before == nil || after == nil {
		return pricewatch.DiffReport{Summary: "first capture, nothing to compare"}
	}

	var diffs []pricewatch.DetectedDiff
	diffs = append(diffs, d.diffFreeTier(before, after)...)
	diffs = append(diffs, d.diffPlanPresence(before, after)...)
	diffs = append(diffs, d.diffPrices(before, after)...)
	diffs = append(diffs, d.diffCTAs(before, after)...)
	diffs = append(diffs, d.diffHighlight(before, after)...)

	report := pricewatch.DiffReport{
		HasMeaningfulChanges: len(diffs) > 0,
		Diffs:                diffs,
		OverallSeverity:      overallSeverity(diffs),
		Summary:              summarize(diffs),
	}
	return report
}

// diffFreeTier detects free-tier addition and removal.
func (d *SchemaDiffer) diffFreeTier(before, after *pricewatch.PricingSchema) []pricewatch.DetectedDiff {
	switch {
	case before.HasFreeTier && !after.HasFreeTier:
		return []pricewatch.DetectedDiff{{
			Type:        pricewatch.DiffFreeTierRemoved,
			Severity:    severityFreeTierRemoved,
			Before:      "free tier available",
			After:       "no free tier",
			Description: "Free tier was removed",
		}}
	case !before.HasFreeTier && after.HasFreeTier:
		return []pricewatch.DetectedDiff{{
			Type:        pricewatch.DiffFreeTierAdded,
			Severity:    severityFreeTierAdded,
			Before:      "no free tier",
			After:       "free tier available",
			Description: "Free tier was added",
		}}
	}
	return nil
}

// diffPlanPresence detects plans appearing or disappearing, matched by
// normalized name.
func (d *SchemaDiffer) diffPlanPresence(before, after *pricewatch.PricingSchema) []pricewatch.DetectedDiff {
	var diffs []pricewatch.DetectedDiff

	for i := range before.Plans {
		plan := &before.Plans[i]
		if after.PlanByName(plan.Name) == nil {
			diffs = append(diffs, pricewatch.DetectedDiff{
				Type:        pricewatch.DiffPlanRemoved,
				Severity:    severityPlanRemoved,
				PlanName:    plan.Name,
				Before:      plan.PriceRaw,
				Description: fmt.Sprintf("Plan %q was removed", plan.Name),
			})
		}
	}
	for i := range after.Plans {
		plan := &after.Plans[i]
		if before.PlanByName(plan.Name) == nil {
			diffs = append(diffs, pricewatch.DetectedDiff{
				Type:        pricewatch.DiffPlanAdded,
				Severity:    severityPlanAdded,
				PlanName:    plan.Name,
				After:       plan.PriceRaw,
				Description: fmt.Sprintf("Plan %q was added at %s", plan.Name, displayPrice(plan)),
			})
		}
	}
	return diffs
}

// diffPrices detects price movement of at least the threshold percentage on
// plans present in both captures.
func (d *SchemaDiffer) diffPrices(before, after *pricewatch.PricingSchema) []pricewatch.DetectedDiff {
	var diffs []pricewatch.DetectedDiff

	for i := range after.Plans {
		newPlan := &after.Plans[i]
		oldPlan := before.PlanByName(newPlan.Name)
		if oldPlan == nil || oldPlan.PriceNumeric == nil || newPlan.PriceNumeric == nil {
			continue
		}
		if oldPlan.PriceNumeric.IsZero() {
			continue
		}

		change := newPlan.PriceNumeric.Sub(*oldPlan.PriceNumeric)
		pct := change.Div(*oldPlan.PriceNumeric).Mul(decimal.NewFromInt(100))
		if pct.Abs().LessThan(priceChangeThresholdPct) {
			continue
		}

		rounded := pct.Abs().Round(0)
		if change.IsPositive() {
			diffs = append(diffs, pricewatch.DetectedDiff{
				Type:        pricewatch.DiffPriceIncrease,
				Severity:    severityPriceIncrease,
				PlanName:    newPlan.Name,
				Before:      oldPlan.PriceRaw,
				After:       newPlan.PriceRaw,
				Description: fmt.Sprintf("Plan %q price increased %s%% from %s to %s", newPlan.Name, rounded, oldPlan.PriceRaw, newPlan.PriceRaw),
			})
		} else {
			diffs = append(diffs, pricewatch.DetectedDiff{
				Type:        pricewatch.DiffPriceDecrease,
				Severity:    severityPriceDecrease,
				PlanName:    newPlan.Name,
				Before:      oldPlan.PriceRaw,
				After:       newPlan.PriceRaw,
				Description: fmt.Sprintf("Plan %q price decreased %s%% from %s to %s", newPlan.Name, rounded, oldPlan.PriceRaw, newPlan.PriceRaw),
			})
		}
	}
	return diffs
}

// diffCTAs detects CTA wording changes that cross a semantic boundary.
func (d *SchemaDiffer) diffCTAs(before, after *pricewatch.PricingSchema) []pricewatch.DetectedDiff {
	var diffs []pricewatch.DetectedDiff

	for i := range after.Plans {
		newPlan := &after.Plans[i]
		oldPlan := before.PlanByName(newPlan.Name)
		if oldPlan == nil || oldPlan.CTA == newPlan.CTA {
			continue
		}

		fromClass := classifyCTA(oldPlan.CTA)
		toClass := classifyCTA(newPlan.CTA)
		for _, tr := range d.ctaTransitions {
			if fromClass == tr.From && toClass == tr.To {
				diffs = append(diffs, pricewatch.DetectedDiff{
					Type:        pricewatch.DiffCTAChanged,
					Severity:    severityCTAChanged,
					PlanName:    newPlan.Name,
					Before:      oldPlan.CTA,
					After:       newPlan.CTA,
					Description: fmt.Sprintf("Plan %q CTA changed from %q to %q (%s → %s)", newPlan.Name, oldPlan.CTA, newPlan.CTA, tr.From, tr.To),
				})
				break
			}
		}
	}
	return diffs
}

// diffHighlight detects a change of the highlighted/recommended plan.
func (d *SchemaDiffer) diffHighlight(before, after *pricewatch.PricingSchema) []pricewatch.DetectedDiff {
	oldName := pricewatch.NormalizePlanName(before.HighlightedPlan)
	newName := pricewatch.NormalizePlanName(after.HighlightedPlan)
	if oldName == newName || newName == "" {
		return nil
	}
	return []pricewatch.DetectedDiff{{
		Type:        pricewatch.DiffHighlightChanged,
		Severity:    severityHighlight,
		PlanName:    after.HighlightedPlan,
		Before:      before.HighlightedPlan,
		After:       after.HighlightedPlan,
		Description: fmt.Sprintf("Highlighted plan changed from %q to %q", before.HighlightedPlan, after.HighlightedPlan),
	}}
}

// classifyCTA maps CTA wording to a coarse semantic class.
func classifyCTA(cta string) string {
	t := strings.ToLower(cta)
	switch {
	case strings.Contains(t, "free"):
		return "free"
	case strings.Contains(t, "trial"):
		return "trial"
	case strings.Contains(t, "contact") || strings.Contains(t, "talk to") || strings.Contains(t, "demo"):
		return "contact"
	case strings.Contains(t, "buy") || strings.Contains(t, "purchase") || strings.Contains(t, "subscribe") || strings.Contains(t, "upgrade"):
		return "paid"
	case strings.Contains(t, "start") || strings.Contains(t, "sign up") || strings.Contains(t, "get started"):
		return "start"
	default:
		return "other"
	}
}

// overallSeverity aggregates as max plus 20% of each additional diff's
// severity, capped at 1.0. One big change dominates; a cluster of smaller
// ones still raises alarm. Downstream alert thresholds are calibrated
// against this exact formula.
func overallSeverity(diffs []pricewatch.DetectedDiff) float64 {
	if len(diffs) == 0 {
		return 0
	}

	max, rest := 0.0, 0.0
	for _, d := range diffs {
		if d.Severity > max {
			rest += max
			max = d.Severity
		} else {
			rest += d.Severity
		}
	}

	total := max + 0.2*rest
	if total > 1.0 {
		total = 1.0
	}
	return total
}

// summarize joins the top three diff descriptions by severity, with a count
// suffix when more exist.
func summarize(diffs []pricewatch.DetectedDiff) string {
	if len(diffs) == 0 {
		return "no meaningful changes"
	}

	ordered := make([]pricewatch.DetectedDiff, len(diffs))
	copy(ordered, diffs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Severity > ordered[j].Severity
	})

	n := len(ordered)
	if n > 3 {
		n = 3
	}
	parts := make([]string, 0, n)
	for _, d := range ordered[:n] {
		parts = append(parts, d.Description)
	}

	summary := strings.Join(parts, "; ")
	if len(ordered) > 3 {
		summary += fmt.Sprintf(" (+%d more)", len(ordered)-3)
	}
	return summary
}

func displayPrice(p *pricewatch.PricingPlan) string {
	if p.PriceRaw != "" {
		return p.PriceRaw
	}
	return "unknown price"
}
