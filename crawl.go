package pricewatch

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// FailureKind is the closed taxonomy of fetch/extract failures. Failures
// travel as data; no strategy lets an error escape its boundary.
type FailureKind string

// Failure kinds.
const (
	FailureTimeout   FailureKind = "TIMEOUT"
	FailureBlocked   FailureKind = "BLOCKED"
	FailureEmpty     FailureKind = "EMPTY"
	FailureAPIError  FailureKind = "API_ERROR"
	FailureNetwork   FailureKind = "NETWORK_ERROR"
	FailureAIError   FailureKind = "AI_ERROR"
	FailureNoPricing FailureKind = "NO_PRICING"
	FailureUnknown   FailureKind = "UNKNOWN"
)

// Terminal reports whether retrying the same strategy cannot change the
// outcome. A structural block or a page with no content will not resolve by
// trying again, so the orchestrator escalates instead of retrying.
func (k FailureKind) Terminal() bool {
	return k == FailureBlocked || k == FailureEmpty
}

// CrawlFailure is the failure variant of a CrawlResult.
type CrawlFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *CrawlFailure) String() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// CrawlResult is a tagged success/failure union returned by fetch
// strategies. Exactly one of (Markdown, Failure) is meaningful: Failure is
// nil on success. Results are transient; they are consumed by the diff
// engine or discarded, never persisted.
type CrawlResult struct {
	// Strategy names the tier that produced this result.
	Strategy string `json:"strategy"`

	Markdown    string `json:"markdown"`
	ContentHash string `json:"contentHash"`

	Failure *CrawlFailure `json:"failure"`
}

// OK reports whether the result is the success variant.
func (r *CrawlResult) OK() bool {
	return r != nil && r.Failure == nil
}

// CrawlSuccess constructs a success result, computing the content hash.
func CrawlSuccess(strategy, markdown string) *CrawlResult {
	return &CrawlResult{
		Strategy:    strategy,
		Markdown:    markdown,
		ContentHash: HashContent(markdown),
	}
}

// CrawlFailed constructs a failure result.
func CrawlFailed(strategy string, kind FailureKind, format string, args ...any) *CrawlResult {
	return &CrawlResult{
		Strategy: strategy,
		Failure:  &CrawlFailure{Kind: kind, Message: fmt.Sprintf(format, args...)},
	}
}

// HashContent computes xxHash of content and returns a hex string.
func HashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

// FetchStrategy retrieves normalized pricing-page content from a URL.
//
// Fetch never returns a Go error: every failure path yields the failure
// variant of CrawlResult. The context controls timeout and cancellation;
// a deadline expiry maps to FailureTimeout.
type FetchStrategy interface {
	// Name identifies the strategy in results and logs.
	Name() string

	// Available reports whether the strategy can run at all (e.g., a
	// managed API is only available when credentials are configured).
	Available() bool

	// Fetch retrieves and normalizes the page. The region context, when
	// non-nil, shapes request headers to simulate a visitor from that
	// region.
	Fetch(ctx context.Context, url string, region *RegionContext) *CrawlResult

	// Close releases any resources held by the strategy.
	Close() error
}
