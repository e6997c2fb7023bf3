package mock

import (
	"context"

	"github.com/pricelens/pricewatch"
)

var _ pricewatch.CompetitorService = (*CompetitorService)(nil)

// CompetitorService is a mock implementation of pricewatch.CompetitorService.
type CompetitorService struct {
	CreateCompetitorFn   func(ctx context.Context, c *pricewatch.Competitor) error
	FindCompetitorByIDFn func(ctx context.Context, id string) (*pricewatch.Competitor, error)
	FindCompetitorsFn    func(ctx context.Context, filter pricewatch.CompetitorFilter) ([]*pricewatch.Competitor, error)
	UpdateCompetitorFn   func(ctx context.Context, id string, upd pricewatch.CompetitorUpdate) (*pricewatch.Competitor, error)
	DeleteCompetitorFn   func(ctx context.Context, id string) error
}

func (s *CompetitorService) CreateCompetitor(ctx context.Context, c *pricewatch.Competitor) error {
	return s.CreateCompetitorFn(ctx, c)
}

func (s *CompetitorService) FindCompetitorByID(ctx context.Context, id string) (*pricewatch.Competitor, error) {
	return s.FindCompetitorByIDFn(ctx, id)
}

func (s *CompetitorService) FindCompetitors(ctx context.Context, filter pricewatch.CompetitorFilter) ([]*pricewatch.Competitor, error) {
	return s.FindCompetitorsFn(ctx, filter)
}

func (s *CompetitorService) UpdateCompetitor(ctx context.Context, id string, upd pricewatch.CompetitorUpdate) (*pricewatch.Competitor, error) {
	return s.UpdateCompetitorFn(ctx, id, upd)
}

func (s *CompetitorService) DeleteCompetitor(ctx context.Context, id string) error {
	return s.DeleteCompetitorFn(ctx, id)
}
