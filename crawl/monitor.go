package crawl

import (
	"context"
	"log/slog"

	"github.com/pricelens/pricewatch"
	"github.com/pricelens/pricewatch/alert"
	"github.com/pricelens/pricewatch/diff"
)

// Monitor runs the fetch-through-alert pipeline for one competitor. Stages
// are strictly sequential: guardrail check → fetch → extract → diff →
// alert decide. Parallelism across competitors is the caller's
// responsibility.
type Monitor struct {
	Competitors  pricewatch.CompetitorService
	Schemas      pricewatch.SchemaService
	Alerts       pricewatch.AlertService
	Orchestrator *Orchestrator
	Extractor    pricewatch.PricingExtractor
	Guard        *Guard
	Classifier   *diff.Classifier
	Differ       *diff.SchemaDiffer
	Comparator   *diff.RegionalComparator
	Rules        *alert.Engine
	Logger       *slog.Logger

	// MaxAttempts bounds FetchWithRetry. Defaults to DefaultMaxAttempts.
	MaxAttempts int
}

// RunReport is the outcome of one pipeline run.
type RunReport struct {
	CompetitorID string
	Region       string

	Skipped    bool
	SkipReason string

	Fetch          *pricewatch.CrawlResult
	Classification *pricewatch.TextClassification
	Diff           *pricewatch.DiffReport
	AlertsCreated  int
}

// Run executes the full pipeline for one competitor and region. Fetch and
// extraction failures are recorded against the competitor's guardrail
// state and reported as data; Run only returns an error for persistence
// problems.
func (m *Monitor) Run(ctx context.Context, competitorID, regionKey string) (*RunReport, error) {
	logger := m.logger().With("competitor", competitorID, "region", regionKey)
	report := &RunReport{CompetitorID: competitorID, Region: regionKey}

	competitor, err := m.Competitors.FindCompetitorByID(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	if ok, reason := m.Guard.Eligible(competitor); !ok {
		logger.Info("crawl skipped", "reason", reason)
		report.Skipped = true
		report.SkipReason = reason
		return report, nil
	}

	region := pricewatch.Region(regionKey)

	result := m.Orchestrator.FetchWithRetry(ctx, competitor.PricingURL, region, m.MaxAttempts)
	report.Fetch = result
	if !result.OK() {
		logger.Warn("fetch failed", "kind", result.Failure.Kind, "message", result.Failure.Message)
		if err := m.Guard.RecordFailure(ctx, competitor, result.Failure); err != nil {
			return report, err
		}
		return report, nil
	}

	previous, err := m.Schemas.FindLatestSchema(ctx, competitorID, region.Key)
	if err != nil && pricewatch.ErrorCode(err) != pricewatch.ENOTFOUND {
		return report, err
	}

	// Text-level triage against the previous capture's raw content. When
	// the content hash is unchanged there is nothing new to extract.
	if previous != nil {
		classification := m.Classifier.Classify(previous.RawMarkdown, result.Markdown)
		report.Classification = &classification
		if pricewatch.HashContent(previous.RawMarkdown) == result.ContentHash {
			logger.Info("content unchanged, skipping extraction")
			if err := m.Guard.RecordSuccess(ctx, competitorID); err != nil {
				return report, err
			}
			report.Diff = &pricewatch.DiffReport{Summary: "content unchanged"}
			return report, nil
		}
		logger.Info("text triage",
			"meaningful", classification.IsMeaningful,
			"signal", classification.SignalType,
			"reason", classification.Reason,
		)
	}

	extraction := m.Extractor.ExtractPricing(ctx, competitor.PricingURL, region)
	if !extraction.OK() {
		logger.Warn("extraction failed", "kind", extraction.Failure.Kind, "message", extraction.Failure.Message)
		if err := m.Guard.RecordFailure(ctx, competitor, extraction.Failure); err != nil {
			return report, err
		}
		return report, nil
	}

	schema := extraction.Schema
	schema.CompetitorID = competitorID
	schema.Region = region.Key
	schema.RawMarkdown = result.Markdown
	if err := m.Schemas.CreateSchema(ctx, schema); err != nil {
		return report, err
	}

	diffReport := m.Differ.Diff(previous, schema)
	report.Diff = &diffReport

	created, err := m.recordAlerts(ctx, competitor, region.Key, diffReport.Diffs)
	if err != nil {
		return report, err
	}
	report.AlertsCreated = created

	if err := m.Guard.RecordSuccess(ctx, competitorID); err != nil {
		return report, err
	}

	logger.Info("run complete",
		"diffs", len(diffReport.Diffs),
		"overall_severity", diffReport.OverallSeverity,
		"alerts", created,
	)
	return report, nil
}

// CompareRegions captures the competitor's pricing under each region
// context sequentially, persists the captures, and compares them against
// the baseline region.
func (m *Monitor) CompareRegions(ctx context.Context, competitorID string, regionKeys []string) (*pricewatch.RegionalReport, error) {
	competitor, err := m.Competitors.FindCompetitorByID(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	var snapshots []*pricewatch.RegionalSnapshot
	for _, key := range regionKeys {
		region := pricewatch.Region(key)
		extraction := m.Extractor.ExtractPricing(ctx, competitor.PricingURL, region)
		if !extraction.OK() {
			m.logger().Warn("regional capture failed",
				"competitor", competitorID,
				"region", key,
				"kind", extraction.Failure.Kind,
			)
			continue
		}

		schema := extraction.Schema
		schema.CompetitorID = competitorID
		schema.Region = region.Key
		if err := m.Schemas.CreateSchema(ctx, schema); err != nil {
			return nil, err
		}

		snapshots = append(snapshots, &pricewatch.RegionalSnapshot{
			Region:     region.Key,
			Schema:     schema,
			Currency:   schema.Currency,
			CapturedAt: schema.CapturedAt,
		})
	}

	return m.Comparator.Compare(ctx, snapshots)
}

// recordAlerts filters the batch through the rules engine and persists the
// survivors.
func (m *Monitor) recordAlerts(ctx context.Context, competitor *pricewatch.Competitor, region string, diffs []pricewatch.DetectedDiff) (int, error) {
	if len(diffs) == 0 {
		return 0, nil
	}

	alertCtx := alert.Context{}
	lastAt, err := m.Alerts.LastAlertAt(ctx, competitor.ID)
	switch {
	case err == nil:
		alertCtx.LastAlertAt = &lastAt
	case pricewatch.ErrorCode(err) == pricewatch.ENOTFOUND:
		// First alert ever for this competitor.
	default:
		return 0, err
	}

	created := 0
	for _, d := range m.Rules.FilterAlertable(diffs, alertCtx) {
		decision := m.Rules.Decide(d, alertCtx)
		record := &pricewatch.Alert{
			CompetitorID: competitor.ID,
			Region:       region,
			DiffType:     d.Type,
			PlanName:     d.PlanName,
			Before:       d.Before,
			After:        d.After,
			Description:  d.Description,
			Severity:     decision.Severity,
			Priority:     decision.Priority,
		}
		if err := m.Alerts.CreateAlert(ctx, record); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (m *Monitor) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}
