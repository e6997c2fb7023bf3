package mock

import (
	"context"
	"time"

	"github.com/pricelens/pricewatch"
)

var _ pricewatch.AlertService = (*AlertService)(nil)

// AlertService is a mock implementation of pricewatch.AlertService.
type AlertService struct {
	CreateAlertFn func(ctx context.Context, alert *pricewatch.Alert) error
	FindAlertsFn  func(ctx context.Context, competitorID string, limit int) ([]*pricewatch.Alert, error)
	LastAlertAtFn func(ctx context.Context, competitorID string) (time.Time, error)
}

func (s *AlertService) CreateAlert(ctx context.Context, alert *pricewatch.Alert) error {
	return s.CreateAlertFn(ctx, alert)
}

func (s *AlertService) FindAlerts(ctx context.Context, competitorID string, limit int) ([]*pricewatch.Alert, error) {
	return s.FindAlertsFn(ctx, competitorID, limit)
}

func (s *AlertService) LastAlertAt(ctx context.Context, competitorID string) (time.Time, error) {
	return s.LastAlertAtFn(ctx, competitorID)
}
