package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/pricelens/pricewatch/bloom"
)

// pricingPathHints are path fragments that suggest a URL is a pricing page.
var pricingPathHints = []string{"pricing", "plans", "price", "tariff", "subscribe"}

// Discovery finds candidate pricing-page URLs for a competitor site by
// walking robots.txt and sitemap XML. It is used once when a competitor is
// added; monitoring itself always targets a known URL.
type Discovery struct {
	client *http.Client
}

// NewDiscovery creates a Discovery with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewDiscovery(client *http.Client) *Discovery {
	if client == nil {
		client = http.DefaultClient
	}
	return &Discovery{client: client}
}

// DiscoverPricingURLs returns URLs from the site's sitemaps whose path
// looks pricing-related. Returns an empty slice (not nil) if no sitemaps
// are found. URLs are deduplicated through a Bloom filter sized for large
// sitemaps.
func (d *Discovery) DiscoverPricingURLs(ctx context.Context, siteURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL: %w", err)
	}
	base.Path = ""

	sitemapURLs, err := d.findSitemapURLs(ctx, base)
	if err != nil {
		return nil, err
	}
	if len(sitemapURLs) == 0 {
		return []string{}, nil
	}

	seen := bloom.NewFilter(100_000, 0.001)
	seenSitemaps := make(map[string]bool)
	candidates := []string{}

	for _, sm := range sitemapURLs {
		urls, err := d.processSitemap(ctx, sm, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, u := range urls {
			if seen.Seen(u) {
				continue
			}
			seen.Add(u)
			if looksLikePricingURL(u) {
				candidates = append(candidates, u)
			}
		}
	}

	return candidates, nil
}

// looksLikePricingURL reports whether the URL path contains a pricing hint.
func looksLikePricingURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(parsed.Path)
	for _, hint := range pricingPathHints {
		if strings.Contains(path, hint) {
			return true
		}
	}
	return false
}

// findSitemapURLs discovers sitemap URLs from robots.txt or falls back to
// /sitemap.xml.
func (d *Discovery) findSitemapURLs(ctx context.Context, base *url.URL) ([]string, error) {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := d.parseSitemapsFromRobots(ctx, robotsURL.String())
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}

	sitemapURL := base.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := d.urlExists(ctx, sitemapURL.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}

	return nil, nil
}

// parseSitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (d *Discovery) parseSitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := d.fetchURL(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			if sm := strings.TrimSpace(line[len("sitemap:"):]); sm != "" {
				sitemaps = append(sitemaps, sm)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}

	return sitemaps, nil
}

// processSitemap fetches and parses a sitemap, handling both urlset and
// sitemapindex documents. Nested sitemaps are followed once each.
func (d *Discovery) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := d.fetchURL(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, nil
	}

	var urls []string
	switch root.Tag {
	case "urlset":
		for _, el := range root.FindElements("//url/loc") {
			if loc := strings.TrimSpace(el.Text()); loc != "" {
				urls = append(urls, loc)
			}
		}
	case "sitemapindex":
		for _, el := range root.FindElements("//sitemap/loc") {
			loc := strings.TrimSpace(el.Text())
			if loc == "" {
				continue
			}
			nested, err := d.processSitemap(ctx, loc, seen)
			if err != nil {
				return nil, err
			}
			urls = append(urls, nested...)
		}
	}

	return urls, nil
}

// fetchURL retrieves a URL and returns the response body.
func (d *Discovery) fetchURL(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}

// urlExists checks whether a URL responds with 200 to a HEAD request.
func (d *Discovery) urlExists(ctx context.Context, rawURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}
