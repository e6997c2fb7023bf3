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
var _ pricewatch.CompetitorService = (*CompetitorService)(nil)

// CompetitorService implements pricewatch.CompetitorService using SQLite.
type CompetitorService struct {
	db *DB
}

// NewCompetitorService creates a new CompetitorService.
func NewCompetitorService(db *DB) *CompetitorService {
	return &CompetitorService{db: db}
}

// CreateCompetitor creates a new competitor in active status.
func (s *CompetitorService) CreateCompetitor(ctx context.Context, c *pricewatch.Competitor) error {
	if err := c.Validate(); err != nil {
		return err
	}

	c.ID = uuid.New().String()
	c.Status = pricewatch.StatusActive
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO competitors (id, name, pricing_url, status, failure_count, last_failure_at, last_checked_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.PricingURL, string(c.Status), c.FailureCount,
		formatNullableTime(c.LastFailureAt), formatNullableTime(c.LastCheckedAt),
		c.CreatedAt.Format(time.RFC3339), c.UpdatedAt.Format(time.RFC3339))

	return err
}

// FindCompetitorByID retrieves a competitor by ID.
func (s *CompetitorService) FindCompetitorByID(ctx context.Context, id string) (*pricewatch.Competitor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, pricing_url, status, failure_count, last_failure_at, last_checked_at, created_at, updated_at
		FROM competitors
		WHERE id = ?
	`, id)

	c, err := scanCompetitor(row.Scan)
	if err == sql.ErrNoRows {
		return nil, pricewatch.Errorf(pricewatch.ENOTFOUND, "competitor not found")
	}
	return c, err
}

// FindCompetitors retrieves competitors matching the filter.
func (s *CompetitorService) FindCompetitors(ctx context.Context, filter pricewatch.CompetitorFilter) ([]*pricewatch.Competitor, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, name, pricing_url, status, failure_count, last_failure_at, last_checked_at, created_at, updated_at FROM competitors WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}

	query.WriteString(" ORDER BY name ASC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var competitors []*pricewatch.Competitor
	for rows.Next() {
		c, err := scanCompetitor(rows.Scan)
		if err != nil {
			return nil, err
		}
		competitors = append(competitors, c)
	}
	return competitors, rows.Err()
}

// UpdateCompetitor updates fields on an existing competitor.
func (s *CompetitorService) UpdateCompetitor(ctx context.Context, id string, upd pricewatch.CompetitorUpdate) (*pricewatch.Competitor, error) {
	c, err := s.FindCompetitorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.PricingURL != nil {
		c.PricingURL = *upd.PricingURL
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	if upd.FailureCount != nil {
		c.FailureCount = *upd.FailureCount
	}
	if upd.LastFailureAt != nil {
		c.LastFailureAt = upd.LastFailureAt
	}
	if upd.LastCheckedAt != nil {
		c.LastCheckedAt = upd.LastCheckedAt
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE competitors
		SET name = ?, pricing_url = ?, status = ?, failure_count = ?, last_failure_at = ?, last_checked_at = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.PricingURL, string(c.Status), c.FailureCount,
		formatNullableTime(c.LastFailureAt), formatNullableTime(c.LastCheckedAt),
		c.UpdatedAt.Format(time.RFC3339), id)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// DeleteCompetitor permanently removes a competitor and its history.
func (s *CompetitorService) DeleteCompetitor(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM competitors WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return pricewatch.Errorf(pricewatch.ENOTFOUND, "competitor not found")
	}
	return nil
}

// scanCompetitor scans one competitor row using the provided scan function.
func scanCompetitor(scan func(dest ...any) error) (*pricewatch.Competitor, error) {
	var c pricewatch.Competitor
	var status, createdAt, updatedAt string
	var lastFailureAt, lastCheckedAt sql.NullString

	if err := scan(&c.ID, &c.Name, &c.PricingURL, &status, &c.FailureCount,
		&lastFailureAt, &lastCheckedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	c.Status = pricewatch.CrawlStatus(status)

	var err error
	if c.LastFailureAt, err = parseNullableTime(lastFailureAt, "last_failure_at"); err != nil {
		return nil, err
	}
	if c.LastCheckedAt, err = parseNullableTime(lastCheckedAt, "last_checked_at"); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &c, nil
}
