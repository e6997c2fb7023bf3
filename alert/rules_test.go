package alert_test

import (
	"testing"
	"time"

	"github.com/pricelens/pricewatch"
	"github.com/pricelens/pricewatch/alert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Decide(t *testing.T) {
	t.Parallel()

	engine := alert.NewEngine()

	t.Run("allow-list vetoes cta change regardless of severity", func(t *testing.T) {
		t.Parallel()
		decision := engine.Decide(pricewatch.DetectedDiff{
			Type:     pricewatch.DiffCTAChanged,
			Severity: 0.99,
		}, alert.Context{})
		assert.False(t, decision.ShouldAlert)
		assert.Contains(t, decision.Reason, "not alertable")
	})

	t.Run("allow-list vetoes highlight change", func(t *testing.T) {
		t.Parallel()
		decision := engine.Decide(pricewatch.DetectedDiff{
			Type:     pricewatch.DiffHighlightChanged,
			Severity: 0.5,
		}, alert.Context{})
		assert.False(t, decision.ShouldAlert)
	})

	t.Run("severity below minimum is vetoed", func(t *testing.T) {
		t.Parallel()
		decision := engine.Decide(pricewatch.DetectedDiff{
			Type:     pricewatch.DiffPriceIncrease,
			Severity: 0.4,
		}, alert.Context{})
		assert.False(t, decision.ShouldAlert)
		assert.Contains(t, decision.Reason, "below minimum")
	})

	t.Run("suppressed type is vetoed", func(t *testing.T) {
		t.Parallel()
		decision := engine.Decide(pricewatch.DetectedDiff{
			Type:     pricewatch.DiffPriceIncrease,
			Severity: 0.9,
		}, alert.Context{
			Suppressed: []pricewatch.DiffType{pricewatch.DiffPriceIncrease},
		})
		assert.False(t, decision.ShouldAlert)
		assert.Contains(t, decision.Reason, "suppressed")
	})

	t.Run("cooldown vetoes within 24 hours", func(t *testing.T) {
		t.Parallel()
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		lastAlert := now.Add(-2 * time.Hour)

		decision := engine.Decide(pricewatch.DetectedDiff{
			Type:     pricewatch.DiffPriceIncrease,
			Severity: 0.9,
		}, alert.Context{LastAlertAt: &lastAlert, Now: now})
		assert.False(t, decision.ShouldAlert)
		assert.Contains(t, decision.Reason, "cooldown")
	})

	t.Run("cooldown expires after 24 hours", func(t *testing.T) {
		t.Parallel()
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		lastAlert := now.Add(-25 * time.Hour)

		decision := engine.Decide(pricewatch.DetectedDiff{
			Type:     pricewatch.DiffPriceIncrease,
			Severity: 0.9,
		}, alert.Context{LastAlertAt: &lastAlert, Now: now})
		assert.True(t, decision.ShouldAlert)
	})

	t.Run("first alert ever passes the cooldown gate", func(t *testing.T) {
		t.Parallel()
		decision := engine.Decide(pricewatch.DetectedDiff{
			Type:     pricewatch.DiffFreeTierRemoved,
			Severity: 1.0,
		}, alert.Context{})
		assert.True(t, decision.ShouldAlert)
		assert.Equal(t, "all gates passed", decision.Reason)
	})

	t.Run("severity tiers", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			severity float64
			want     pricewatch.AlertSeverity
		}{
			{1.0, pricewatch.AlertHigh},
			{0.8, pricewatch.AlertHigh},
			{0.79, pricewatch.AlertMedium},
			{0.5, pricewatch.AlertMedium},
			{0.49, pricewatch.AlertLow},
		}
		for _, tt := range tests {
			decision := engine.Decide(pricewatch.DetectedDiff{
				Type:     pricewatch.DiffPriceIncrease,
				Severity: tt.severity,
			}, alert.Context{})
			assert.Equal(t, tt.want, decision.Severity, "severity %.2f", tt.severity)
		}
	})

	t.Run("priority is severity times ten", func(t *testing.T) {
		t.Parallel()
		decision := engine.Decide(pricewatch.DetectedDiff{
			Type:     pricewatch.DiffPriceIncrease,
			Severity: 0.9,
		}, alert.Context{})
		assert.Equal(t, 9, decision.Priority)
	})

	t.Run("free tier removal gets a priority boost capped at ten", func(t *testing.T) {
		t.Parallel()
		decision := engine.Decide(pricewatch.DetectedDiff{
			Type:     pricewatch.DiffFreeTierRemoved,
			Severity: 1.0,
		}, alert.Context{})
		assert.Equal(t, 10, decision.Priority)
	})

	t.Run("plan removal gets a priority boost", func(t *testing.T) {
		t.Parallel()
		decision := engine.Decide(pricewatch.DetectedDiff{
			Type:     pricewatch.DiffPlanRemoved,
			Severity: 0.95,
		}, alert.Context{})
		// round(0.95*10) = 10, +1 boost, capped at 10.
		assert.Equal(t, 10, decision.Priority)
	})
}

func TestEngine_FilterAlertable(t *testing.T) {
	t.Parallel()

	t.Run("sorts by severity descending and truncates to max per run", func(t *testing.T) {
		t.Parallel()
		engine := alert.NewEngine()

		diffs := []pricewatch.DetectedDiff{
			{Type: pricewatch.DiffPlanAdded, Severity: 0.8, PlanName: "A"},
			{Type: pricewatch.DiffFreeTierRemoved, Severity: 1.0},
			{Type: pricewatch.DiffPriceIncrease, Severity: 0.9, PlanName: "B"},
			{Type: pricewatch.DiffPriceIncrease, Severity: 0.9, PlanName: "C"},
			{Type: pricewatch.DiffPlanRemoved, Severity: 0.95, PlanName: "D"},
			{Type: pricewatch.DiffPriceDecrease, Severity: 0.85, PlanName: "E"},
		}

		got := engine.FilterAlertable(diffs, alert.Context{})
		require.Len(t, got, 5)
		assert.Equal(t, pricewatch.DiffFreeTierRemoved, got[0].Type)
		assert.Equal(t, "D", got[1].PlanName)
		assert.Equal(t, "B", got[2].PlanName)
		assert.Equal(t, "C", got[3].PlanName)
		assert.Equal(t, "E", got[4].PlanName)
	})

	t.Run("drops vetoed diffs", func(t *testing.T) {
		t.Parallel()
		engine := alert.NewEngine()

		diffs := []pricewatch.DetectedDiff{
			{Type: pricewatch.DiffCTAChanged, Severity: 0.6},
			{Type: pricewatch.DiffHighlightChanged, Severity: 0.5},
			{Type: pricewatch.DiffPriceIncrease, Severity: 0.9},
		}

		got := engine.FilterAlertable(diffs, alert.Context{})
		require.Len(t, got, 1)
		assert.Equal(t, pricewatch.DiffPriceIncrease, got[0].Type)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		t.Parallel()
		engine := alert.NewEngine()
		assert.Empty(t, engine.FilterAlertable(nil, alert.Context{}))
	})
}
