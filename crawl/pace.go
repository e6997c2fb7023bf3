package crawl

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPaceInterval is the fixed inter-competitor delay for batch runs,
// chosen to stay polite toward third-party scraping and model APIs.
const DefaultPaceInterval = 5 * time.Second

// Pacer enforces the fixed delay between competitor runs using a token
// bucket with no bursting.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a Pacer emitting one token per interval.
// A non-positive interval uses DefaultPaceInterval.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = DefaultPaceInterval
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the next competitor run may start.
// Returns an error if the context is canceled first.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
