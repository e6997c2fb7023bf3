package pricewatch

import (
	"context"
	"time"
)

// AlertSeverity is the user-facing severity tier of an alert.
type AlertSeverity string

// Alert severity tiers.
const (
	AlertLow    AlertSeverity = "low"
	AlertMedium AlertSeverity = "medium"
	AlertHigh   AlertSeverity = "high"
)

// AlertDecision is the rules engine's verdict for a single diff. It is a
// pure function of the diff plus current suppression/cooldown state.
type AlertDecision struct {
	ShouldAlert bool          `json:"shouldAlert"`
	Reason      string        `json:"reason"`
	Severity    AlertSeverity `json:"severity"`
	Priority    int           `json:"priority"` // 0-10
}

// Alert is a persisted alert record. It carries the DetectedDiff fields the
// downstream explanation generator consumes.
type Alert struct {
	ID           string        `json:"id"`
	CompetitorID string        `json:"competitorId"`
	Region       string        `json:"region"`
	DiffType     DiffType      `json:"diffType"`
	PlanName     string        `json:"planName,omitempty"`
	Before       string        `json:"before,omitempty"`
	After        string        `json:"after,omitempty"`
	Description  string        `json:"description"`
	Severity     AlertSeverity `json:"severity"`
	Priority     int           `json:"priority"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Validate returns an error if the alert contains invalid fields.
func (a *Alert) Validate() error {
	if a.CompetitorID == "" {
		return Errorf(EINVALID, "alert competitor ID required")
	}
	if a.DiffType == "" {
		return Errorf(EINVALID, "alert diff type required")
	}
	return nil
}

// AlertService persists alert records. The most recent alert timestamp per
// competitor feeds the rules engine's cooldown gate.
type AlertService interface {
	// CreateAlert creates a new alert record.
	CreateAlert(ctx context.Context, alert *Alert) error

	// FindAlerts returns the latest N alerts for a competitor, newest
	// first. An empty competitorID returns alerts across all competitors.
	FindAlerts(ctx context.Context, competitorID string, limit int) ([]*Alert, error)

	// LastAlertAt returns the time of the most recent alert for a
	// competitor. Returns ENOTFOUND if no alert has ever been recorded.
	LastAlertAt(ctx context.Context, competitorID string) (time.Time, error)
}
