package pricewatch

import (
	"context"
	"time"
)

// CrawlStatus describes whether a competitor is eligible for crawling.
type CrawlStatus string

// Crawl status values. A competitor transitions to StatusError automatically
// once consecutive failures cross the guardrail threshold; StatusPaused is a
// manual switch.
const (
	StatusActive CrawlStatus = "active"
	StatusPaused CrawlStatus = "paused"
	StatusError  CrawlStatus = "error"
)

// Competitor represents a monitored company and its crawl bookkeeping state.
type Competitor struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	PricingURL string      `json:"pricingUrl"`
	Status     CrawlStatus `json:"status"`

	// Guardrail state. FailureCount is consecutive failures; a single
	// success resets it to zero.
	FailureCount  int        `json:"failureCount"`
	LastFailureAt *time.Time `json:"lastFailureAt"`
	LastCheckedAt *time.Time `json:"lastCheckedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the competitor contains invalid fields.
func (c *Competitor) Validate() error {
	if c.Name == "" {
		return Errorf(EINVALID, "competitor name required")
	}
	if c.PricingURL == "" {
		return Errorf(EINVALID, "competitor pricing URL required")
	}
	return nil
}

// CompetitorService represents a service for managing competitors and their
// crawl state. This is the persistence collaborator for the crawl guardrails.
type CompetitorService interface {
	// CreateCompetitor creates a new competitor in active status.
	CreateCompetitor(ctx context.Context, c *Competitor) error

	// FindCompetitorByID retrieves a competitor by ID.
	// Returns ENOTFOUND if the competitor does not exist.
	FindCompetitorByID(ctx context.Context, id string) (*Competitor, error)

	// FindCompetitors retrieves competitors matching the filter.
	FindCompetitors(ctx context.Context, filter CompetitorFilter) ([]*Competitor, error)

	// UpdateCompetitor updates crawl state fields on an existing competitor.
	// Returns ENOTFOUND if the competitor does not exist.
	UpdateCompetitor(ctx context.Context, id string, upd CompetitorUpdate) (*Competitor, error)

	// DeleteCompetitor permanently removes a competitor and its history.
	// Returns ENOTFOUND if the competitor does not exist.
	DeleteCompetitor(ctx context.Context, id string) error
}

// CompetitorFilter represents a filter for FindCompetitors.
type CompetitorFilter struct {
	ID     *string      `json:"id"`
	Name   *string      `json:"name"`
	Status *CrawlStatus `json:"status"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// CompetitorUpdate represents fields that can be updated on a competitor.
// Nil fields are left unchanged.
type CompetitorUpdate struct {
	Name          *string      `json:"name"`
	PricingURL    *string      `json:"pricingUrl"`
	Status        *CrawlStatus `json:"status"`
	FailureCount  *int         `json:"failureCount"`
	LastFailureAt *time.Time   `json:"lastFailureAt"`
	LastCheckedAt *time.Time   `json:"lastCheckedAt"`
}
