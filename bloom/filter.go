// Package bloom provides probabilistic dedup for discovered URLs.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter used to deduplicate candidate pricing URLs
// during sitemap discovery.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected items with the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records a URL in the filter.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Seen returns true if the URL might already have been added.
// False positives are possible; false negatives are not.
func (f *Filter) Seen(url string) bool {
	return f.f.TestString(url)
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
