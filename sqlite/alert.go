package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pricelens/pricewatch"
)

// Compile-time interface verification.
var _ pricewatch.AlertService = (*AlertService)(nil)

// AlertService implements pricewatch.AlertService using SQLite.
type AlertService struct {
	db *DB
}

// NewAlertService creates a new AlertService.
func NewAlertService(db *DB) *AlertService {
	return &AlertService{db: db}
}

// CreateAlert creates a new alert record.
func (s *AlertService) CreateAlert(ctx context.Context, alert *pricewatch.Alert) error {
	if err := alert.Validate(); err != nil {
		return err
	}

	alert.ID = uuid.New().String()
	alert.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, competitor_id, region, diff_type, plan_name, before_value, after_value, description, severity, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, alert.ID, alert.CompetitorID, alert.Region, string(alert.DiffType),
		alert.PlanName, alert.Before, alert.After, alert.Description,
		string(alert.Severity), alert.Priority, alert.CreatedAt.Format(time.RFC3339))

	return err
}

// FindAlerts returns the latest N alerts, newest first. An empty
// competitorID returns alerts across all competitors.
func (s *AlertService) FindAlerts(ctx context.Context, competitorID string, limit int) ([]*pricewatch.Alert, error) {
	if limit <= 0 {
		limit = 20
	}

	var query strings.Builder
	var args []any
	query.WriteString(`SELECT id, competitor_id, region, diff_type, plan_name, before_value, after_value, description, severity, priority, created_at FROM alerts WHERE 1=1`)
	if competitorID != "" {
		query.WriteString(" AND competitor_id = ?")
		args = append(args, competitorID)
	}
	query.WriteString(" ORDER BY created_at DESC LIMIT ?")
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*pricewatch.Alert
	for rows.Next() {
		var a pricewatch.Alert
		var diffType, severity, createdAt string

		if err := rows.Scan(&a.ID, &a.CompetitorID, &a.Region, &diffType, &a.PlanName,
			&a.Before, &a.After, &a.Description, &severity, &a.Priority, &createdAt); err != nil {
			return nil, err
		}

		a.DiffType = pricewatch.DiffType(diffType)
		a.Severity = pricewatch.AlertSeverity(severity)
		if a.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}

		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

// LastAlertAt returns the time of the most recent alert for a competitor.
func (s *AlertService) LastAlertAt(ctx context.Context, competitorID string) (time.Time, error) {
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT created_at FROM alerts
		WHERE competitor_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, competitorID).Scan(&createdAt)

	if err == sql.ErrNoRows {
		return time.Time{}, pricewatch.Errorf(pricewatch.ENOTFOUND, "no alerts for competitor %q", competitorID)
	}
	if err != nil {
		return time.Time{}, err
	}

	return parseRFC3339(createdAt, "created_at")
}
