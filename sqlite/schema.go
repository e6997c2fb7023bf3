package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pricelens/pricewatch"
)

// Compile-time interface verification.
var _ pricewatch.SchemaService = (*SchemaService)(nil)

// SchemaService implements pricewatch.SchemaService using SQLite. Captures
// are append-only; a schema row is never updated after insert.
type SchemaService struct {
	db *DB
}

// NewSchemaService creates a new SchemaService.
func NewSchemaService(db *DB) *SchemaService {
	return &SchemaService{db: db}
}

// CreateSchema appends a new capture to the history.
func (s *SchemaService) CreateSchema(ctx context.Context, schema *pricewatch.PricingSchema) error {
	if err := schema.Validate(); err != nil {
		return err
	}

	schema.ID = uuid.New().String()
	if schema.CapturedAt.IsZero() {
		schema.CapturedAt = time.Now().UTC()
	}
	if schema.Region == "" {
		schema.Region = "global"
	}

	plans, err := json.Marshal(schema.Plans)
	if err != nil {
		return pricewatch.Errorf(pricewatch.EINTERNAL, "encoding plans: %v", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pricing_schemas (id, competitor_id, region, plans, has_free_tier, highlighted_plan, currency, source_url, raw_markdown, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, schema.ID, schema.CompetitorID, schema.Region, string(plans),
		boolToInt(schema.HasFreeTier), schema.HighlightedPlan, schema.Currency,
		schema.SourceURL, schema.RawMarkdown, schema.CapturedAt.UTC().Format(time.RFC3339))

	return err
}

// FindLatestSchema returns the most recent capture for a competitor and
// region.
func (s *SchemaService) FindLatestSchema(ctx context.Context, competitorID, region string) (*pricewatch.PricingSchema, error) {
	schemas, err := s.FindSchemas(ctx, competitorID, region, 1)
	if err != nil {
		return nil, err
	}
	if len(schemas) == 0 {
		return nil, pricewatch.Errorf(pricewatch.ENOTFOUND, "no capture for competitor %q in region %q", competitorID, region)
	}
	return schemas[0], nil
}

// FindSchemas returns the latest N captures, newest first.
func (s *SchemaService) FindSchemas(ctx context.Context, competitorID, region string, limit int) ([]*pricewatch.PricingSchema, error) {
	if limit <= 0 {
		limit = 10
	}
	if region == "" {
		region = "global"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, competitor_id, region, plans, has_free_tier, highlighted_plan, currency, source_url, raw_markdown, captured_at
		FROM pricing_schemas
		WHERE competitor_id = ? AND region = ?
		ORDER BY captured_at DESC
		LIMIT ?
	`, competitorID, region, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schemas []*pricewatch.PricingSchema
	for rows.Next() {
		schema, err := scanSchema(rows)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, schema)
	}
	return schemas, rows.Err()
}

func scanSchema(rows *sql.Rows) (*pricewatch.PricingSchema, error) {
	var schema pricewatch.PricingSchema
	var plans, capturedAt string
	var hasFreeTier int

	if err := rows.Scan(&schema.ID, &schema.CompetitorID, &schema.Region, &plans,
		&hasFreeTier, &schema.HighlightedPlan, &schema.Currency,
		&schema.SourceURL, &schema.RawMarkdown, &capturedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(plans), &schema.Plans); err != nil {
		return nil, pricewatch.Errorf(pricewatch.EINTERNAL, "decoding plans: %v", err)
	}
	schema.HasFreeTier = hasFreeTier != 0

	var err error
	if schema.CapturedAt, err = parseRFC3339(capturedAt, "captured_at"); err != nil {
		return nil, err
	}

	return &schema, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
