package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/pricelens/pricewatch"
)

// DefaultFailureThreshold is the consecutive-failure count at which a
// competitor transitions to error status.
const DefaultFailureThreshold = 3

// DefaultFailureBackoff is the base cooldown after a failure; it doubles
// with each consecutive failure, capped at 24h.
const DefaultFailureBackoff = time.Hour

// Guard decides whether a competitor page is eligible to be crawled right
// now and records crawl outcomes that feed future eligibility decisions.
type Guard struct {
	Competitors pricewatch.CompetitorService

	// FailureThreshold is the consecutive-failure count that pauses the
	// competitor. Defaults to DefaultFailureThreshold.
	FailureThreshold int

	// FailureBackoff is the base per-failure cooldown.
	FailureBackoff time.Duration

	// Now is replaceable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewGuard creates a Guard with default thresholds.
func NewGuard(competitors pricewatch.CompetitorService) *Guard {
	return &Guard{
		Competitors:      competitors,
		FailureThreshold: DefaultFailureThreshold,
		FailureBackoff:   DefaultFailureBackoff,
		Now:              time.Now,
	}
}

func (g *Guard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Eligible reports whether the competitor may be crawled now, with a
// human-readable reason when it may not. Checks, in order: status, failure
// cooldown, daily dedup.
func (g *Guard) Eligible(c *pricewatch.Competitor) (bool, string) {
	if c.Status != pricewatch.StatusActive {
		return false, fmt.Sprintf("status is %s", c.Status)
	}

	if c.FailureCount > 0 && c.LastFailureAt != nil {
		cooldown := g.failureCooldown(c.FailureCount)
		if elapsed := g.now().Sub(*c.LastFailureAt); elapsed < cooldown {
			return false, fmt.Sprintf("failure cooldown active for another %s", (cooldown - elapsed).Round(time.Minute))
		}
	}

	if c.LastCheckedAt != nil && sameUTCDay(*c.LastCheckedAt, g.now()) {
		return false, "already checked today"
	}

	return true, ""
}

// RecordSuccess clears the failure count and stamps the check time.
// A single success fully resets the failure state.
func (g *Guard) RecordSuccess(ctx context.Context, competitorID string) error {
	zero := 0
	now := g.now().UTC()
	_, err := g.Competitors.UpdateCompetitor(ctx, competitorID, pricewatch.CompetitorUpdate{
		FailureCount:  &zero,
		LastCheckedAt: &now,
	})
	return err
}

// RecordFailure increments the failure count and, once the threshold is
// crossed, transitions the competitor to error status so future crawl
// attempts stop until a manual reset.
func (g *Guard) RecordFailure(ctx context.Context, c *pricewatch.Competitor, failure *pricewatch.CrawlFailure) error {
	count := c.FailureCount + 1
	now := g.now().UTC()
	upd := pricewatch.CompetitorUpdate{
		FailureCount:  &count,
		LastFailureAt: &now,
		LastCheckedAt: &now,
	}

	threshold := g.FailureThreshold
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if count >= threshold {
		errStatus := pricewatch.StatusError
		upd.Status = &errStatus
	}

	_, err := g.Competitors.UpdateCompetitor(ctx, c.ID, upd)
	return err
}

// Reset returns an errored competitor to active status with a clean
// failure count. This is the manual reset path.
func (g *Guard) Reset(ctx context.Context, competitorID string) error {
	zero := 0
	active := pricewatch.StatusActive
	_, err := g.Competitors.UpdateCompetitor(ctx, competitorID, pricewatch.CompetitorUpdate{
		Status:       &active,
		FailureCount: &zero,
	})
	return err
}

// failureCooldown doubles the base backoff per consecutive failure,
// capped at 24h.
func (g *Guard) failureCooldown(failures int) time.Duration {
	base := g.FailureBackoff
	if base <= 0 {
		base = DefaultFailureBackoff
	}
	cooldown := base
	for i := 1; i < failures && cooldown < 24*time.Hour; i++ {
		cooldown *= 2
	}
	if cooldown > 24*time.Hour {
		cooldown = 24 * time.Hour
	}
	return cooldown
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
