// Package alert applies deterministic thresholds, suppression, and cooldown
// rules to structured diffs, producing ranked alert decisions.
package alert

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pricelens/pricewatch"
)

// Defaults for the rules engine.
const (
	DefaultMinSeverity = 0.5
	DefaultCooldown    = 24 * time.Hour
	DefaultMaxPerRun   = 5
)

// alertableTypes is the allow-list of high-signal diff types. CTA and
// highlight changes are informative but never independently alertable.
var alertableTypes = map[pricewatch.DiffType]bool{
	pricewatch.DiffPriceIncrease:   true,
	pricewatch.DiffPriceDecrease:   true,
	pricewatch.DiffPlanAdded:       true,
	pricewatch.DiffPlanRemoved:     true,
	pricewatch.DiffFreeTierRemoved: true,
	pricewatch.DiffFreeTierAdded:   true,
}

// priorityBoost gives especially consequential types an extra priority
// point on top of severity×10.
var priorityBoost = map[pricewatch.DiffType]int{
	pricewatch.DiffFreeTierRemoved: 1,
	pricewatch.DiffPlanRemoved:     1,
}

// Context carries the suppression/cooldown state a decision depends on.
type Context struct {
	// LastAlertAt is the most recent alert for this competitor, nil when
	// no alert has ever fired. The cooldown is per-competitor and global
	// across diff types.
	LastAlertAt *time.Time

	// Suppressed diff types never alert for this caller.
	Suppressed []pricewatch.DiffType

	// Now defaults to time.Now when zero.
	Now time.Time
}

func (c *Context) now() time.Time {
	if c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

func (c *Context) suppressed(t pricewatch.DiffType) bool {
	for _, s := range c.Suppressed {
		if s == t {
			return true
		}
	}
	return false
}

// Engine evaluates diffs against an ordered set of hard gates.
type Engine struct {
	MinSeverity float64
	Cooldown    time.Duration
	MaxPerRun   int
}

// NewEngine creates an Engine with default thresholds.
func NewEngine() *Engine {
	return &Engine{
		MinSeverity: DefaultMinSeverity,
		Cooldown:    DefaultCooldown,
		MaxPerRun:   DefaultMaxPerRun,
	}
}

// Decide evaluates one diff. The gates are ordered and any gate can veto:
// type allow-list, minimum severity, suppression list, per-competitor
// cooldown. A passing diff gets a mapped severity tier and a priority
// score capped at 10.
func (e *Engine) Decide(diff pricewatch.DetectedDiff, ctx Context) pricewatch.AlertDecision {
	if !alertableTypes[diff.Type] {
		return pricewatch.AlertDecision{
			Reason:   fmt.Sprintf("diff type %s is not alertable", diff.Type),
			Severity: severityTier(diff.Severity),
		}
	}
	if diff.Severity < e.MinSeverity {
		return pricewatch.AlertDecision{
			Reason:   fmt.Sprintf("severity %.2f below minimum %.2f", diff.Severity, e.MinSeverity),
			Severity: severityTier(diff.Severity),
		}
	}
	if ctx.suppressed(diff.Type) {
		return pricewatch.AlertDecision{
			Reason:   fmt.Sprintf("diff type %s is suppressed", diff.Type),
			Severity: severityTier(diff.Severity),
		}
	}
	if ctx.LastAlertAt != nil {
		if elapsed := ctx.now().Sub(*ctx.LastAlertAt); elapsed < e.Cooldown {
			return pricewatch.AlertDecision{
				Reason:   fmt.Sprintf("cooldown active, %s since last alert", elapsed.Round(time.Minute)),
				Severity: severityTier(diff.Severity),
			}
		}
	}

	return pricewatch.AlertDecision{
		ShouldAlert: true,
		Reason:      "all gates passed",
		Severity:    severityTier(diff.Severity),
		Priority:    priority(diff),
	}
}

// FilterAlertable applies Decide to a batch, keeps survivors sorted by
// severity descending, and truncates to MaxPerRun to bound notification
// volume.
func (e *Engine) FilterAlertable(diffs []pricewatch.DetectedDiff, ctx Context) []pricewatch.DetectedDiff {
	var alertable []pricewatch.DetectedDiff
	for _, d := range diffs {
		if e.Decide(d, ctx).ShouldAlert {
			alertable = append(alertable, d)
		}
	}

	sort.SliceStable(alertable, func(i, j int) bool {
		return alertable[i].Severity > alertable[j].Severity
	})

	max := e.MaxPerRun
	if max <= 0 {
		max = DefaultMaxPerRun
	}
	if len(alertable) > max {
		alertable = alertable[:max]
	}
	return alertable
}

// severityTier maps a 0-1 severity to the user-facing tier.
func severityTier(severity float64) pricewatch.AlertSeverity {
	switch {
	case severity >= 0.8:
		return pricewatch.AlertHigh
	case severity >= 0.5:
		return pricewatch.AlertMedium
	default:
		return pricewatch.AlertLow
	}
}

// priority scores a diff 0-10: severity×10 plus a type boost, capped.
func priority(diff pricewatch.DetectedDiff) int {
	p := int(math.Round(diff.Severity*10)) + priorityBoost[diff.Type]
	if p > 10 {
		p = 10
	}
	return p
}
