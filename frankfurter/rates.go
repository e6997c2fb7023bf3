// Package frankfurter implements currency-rate lookup against the
// Frankfurter exchange-rate API, with an in-memory TTL cache so a
// multi-region comparison does not hammer the rate service.
package frankfurter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pricelens/pricewatch"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public Frankfurter API endpoint.
const DefaultBaseURL = "https://api.frankfurter.app"

// DefaultCacheTTL bounds how stale a cached rate may be. Exchange rates
// move slowly relative to crawl cadence.
const DefaultCacheTTL = time.Hour

// Ensure RateService implements pricewatch.RateService at compile time.
var _ pricewatch.RateService = (*RateService)(nil)

// RateService fetches and caches currency conversion rates.
type RateService struct {
	client  *http.Client
	baseURL string
	ttl     time.Duration

	mu    sync.Mutex
	cache map[string]cachedRate
}

type cachedRate struct {
	rate      decimal.Decimal
	fetchedAt time.Time
}

// Option configures a RateService.
type Option func(*RateService)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(s *RateService) {
		s.baseURL = u
	}
}

// WithCacheTTL overrides the cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *RateService) {
		s.ttl = ttl
	}
}

// NewRateService creates a RateService. If client is nil,
// http.DefaultClient is used.
func NewRateService(client *http.Client, opts ...Option) *RateService {
	if client == nil {
		client = http.DefaultClient
	}
	s := &RateService{
		client:  client,
		baseURL: DefaultBaseURL,
		ttl:     DefaultCacheTTL,
		cache:   make(map[string]cachedRate),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rate returns the multiplier converting one unit of from into to.
// Identical currencies short-circuit to 1.
func (s *RateService) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return decimal.Zero, pricewatch.Errorf(pricewatch.EINVALID, "currency codes required")
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	key := from + "/" + to
	s.mu.Lock()
	if c, ok := s.cache[key]; ok && time.Since(c.fetchedAt) < s.ttl {
		s.mu.Unlock()
		return c.rate, nil
	}
	s.mu.Unlock()

	rate, err := s.fetchRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	s.mu.Lock()
	s.cache[key] = cachedRate{rate: rate, fetchedAt: time.Now()}
	s.mu.Unlock()

	return rate, nil
}

func (s *RateService) fetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/latest?from=%s&to=%s", s.baseURL, url.QueryEscape(from), url.QueryEscape(to))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, pricewatch.Errorf(pricewatch.EUNAVAILABLE, "rate lookup failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, pricewatch.Errorf(pricewatch.EUNAVAILABLE, "rate service returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, pricewatch.Errorf(pricewatch.EUNAVAILABLE, "reading rate response: %v", err)
	}

	var parsed struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decimal.Zero, pricewatch.Errorf(pricewatch.EUNAVAILABLE, "decoding rate response: %v", err)
	}

	rate, ok := parsed.Rates[to]
	if !ok {
		return decimal.Zero, pricewatch.Errorf(pricewatch.ENOTFOUND, "no rate for %s/%s", from, to)
	}
	return decimal.NewFromFloat(rate), nil
}
