// Package crawl orchestrates the per-competitor monitoring pipeline:
// eligibility guardrails, the cost-ordered fetch cascade with retry, and
// the fetch-extract-diff-alert run itself.
package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/pricelens/pricewatch"
)

// DefaultMaxAttempts is the default number of whole-cascade attempts in
// FetchWithRetry.
const DefaultMaxAttempts = 3

// DefaultBackoffUnit is the base retry backoff; attempt n waits n units.
const DefaultBackoffUnit = time.Second

// Orchestrator composes fetch strategies into a cost-ordered fallback
// cascade. Strategies are tried cheapest-quality-first as configured;
// the first success wins.
type Orchestrator struct {
	// Strategies in cost order: managed API, lightweight HTML, browser.
	Strategies []pricewatch.FetchStrategy

	// BackoffUnit scales retry delays; tests shrink it.
	BackoffUnit time.Duration

	Logger *slog.Logger
}

// NewOrchestrator creates an Orchestrator over the given strategies.
func NewOrchestrator(logger *slog.Logger, strategies ...pricewatch.FetchStrategy) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		Strategies:  strategies,
		BackoffUnit: DefaultBackoffUnit,
		Logger:      logger,
	}
}

// Fetch runs the cascade once. Every non-success tier result is recorded;
// the returned result is the first success, or the last tier's failure
// tagged with the tier that produced it.
func (o *Orchestrator) Fetch(ctx context.Context, url string, region *pricewatch.RegionContext) *pricewatch.CrawlResult {
	return o.fetchCascade(ctx, url, region, nil)
}

// fetchCascade runs one pass over the tiers. Tiers named in skip are not
// invoked; tiers that return a terminal failure are added to skip so a
// retrying caller never re-invokes them.
func (o *Orchestrator) fetchCascade(ctx context.Context, url string, region *pricewatch.RegionContext, skip map[string]bool) *pricewatch.CrawlResult {
	var last *pricewatch.CrawlResult

	for _, strategy := range o.Strategies {
		if !strategy.Available() || (skip != nil && skip[strategy.Name()]) {
			continue
		}

		result := strategy.Fetch(ctx, url, region)
		if result.OK() {
			o.Logger.Info("fetch succeeded", "url", url, "strategy", strategy.Name())
			return result
		}

		o.Logger.Warn("fetch tier failed",
			"url", url,
			"strategy", strategy.Name(),
			"kind", result.Failure.Kind,
			"message", result.Failure.Message,
		)
		last = result

		// A terminal failure still escalates to the next tier (a different
		// tier may succeed where this one was blocked), but the same tier
		// must not be retried.
		if skip != nil && result.Failure.Kind.Terminal() {
			skip[strategy.Name()] = true
		}
	}

	if last == nil {
		return pricewatch.CrawlFailed("orchestrator", pricewatch.FailureUnknown, "no fetch strategy available for %s", url)
	}
	return last
}

// FetchWithRetry retries the whole cascade with linear backoff (1s ×
// attempt). Terminal failure kinds (BLOCKED, EMPTY) stop retrying early:
// retrying cannot change their outcome, so retrying only wastes cost and
// time. Tiers that returned a terminal failure are skipped on subsequent
// attempts within this call.
func (o *Orchestrator) FetchWithRetry(ctx context.Context, url string, region *pricewatch.RegionContext, maxAttempts int) *pricewatch.CrawlResult {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	backoff := o.BackoffUnit
	if backoff <= 0 {
		backoff = DefaultBackoffUnit
	}

	skip := make(map[string]bool)
	var last *pricewatch.CrawlResult

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result := o.fetchCascade(ctx, url, region, skip)
		if result.OK() {
			return result
		}
		last = result

		if result.Failure.Kind.Terminal() {
			break
		}
		if attempt == maxAttempts {
			break
		}

		o.Logger.Info("retrying fetch cascade",
			"url", url,
			"attempt", attempt+1,
			"max_attempts", maxAttempts,
		)
		select {
		case <-ctx.Done():
			return pricewatch.CrawlFailed("orchestrator", pricewatch.FailureTimeout, "context done: %v", ctx.Err())
		case <-time.After(time.Duration(attempt) * backoff):
		}
	}

	return last
}
