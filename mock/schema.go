package mock

import (
	"context"

	"github.com/pricelens/pricewatch"
)

var _ pricewatch.SchemaService = (*SchemaService)(nil)

// SchemaService is a mock implementation of pricewatch.SchemaService.
type SchemaService struct {
	CreateSchemaFn     func(ctx context.Context, schema *pricewatch.PricingSchema) error
	FindLatestSchemaFn func(ctx context.Context, competitorID, region string) (*pricewatch.PricingSchema, error)
	FindSchemasFn      func(ctx context.Context, competitorID, region string, limit int) ([]*pricewatch.PricingSchema, error)
}

func (s *SchemaService) CreateSchema(ctx context.Context, schema *pricewatch.PricingSchema) error {
	return s.CreateSchemaFn(ctx, schema)
}

func (s *SchemaService) FindLatestSchema(ctx context.Context, competitorID, region string) (*pricewatch.PricingSchema, error) {
	return s.FindLatestSchemaFn(ctx, competitorID, region)
}

func (s *SchemaService) FindSchemas(ctx context.Context, competitorID, region string, limit int) ([]*pricewatch.PricingSchema, error) {
	return s.FindSchemasFn(ctx, competitorID, region, limit)
}
