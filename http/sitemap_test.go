package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	pwhttp "github.com/pricelens/pricewatch/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscovery_DiscoverPricingURLs(t *testing.T) {
	t.Parallel()

	t.Run("finds pricing URLs via robots.txt sitemap directive", func(t *testing.T) {
		t.Parallel()

		var srv *httptest.Server
		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "User-agent: *\nDisallow: /admin\nSitemap: %s/sitemap.xml\n", srv.URL)
		})
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>%[1]s/about</loc></url>
  <url><loc>%[1]s/pricing</loc></url>
  <url><loc>%[1]s/plans/enterprise</loc></url>
  <url><loc>%[1]s/blog/pricing-strategy</loc></url>
</urlset>`, srv.URL)
		})
		srv = httptest.NewServer(mux)
		defer srv.Close()

		d := pwhttp.NewDiscovery(srv.Client())
		got, err := d.DiscoverPricingURLs(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, []string{
			srv.URL + "/pricing",
			srv.URL + "/plans/enterprise",
			srv.URL + "/blog/pricing-strategy",
		}, got)
	})

	t.Run("falls back to /sitemap.xml when robots.txt is missing", func(t *testing.T) {
		t.Parallel()

		var srv *httptest.Server
		mux := http.NewServeMux()
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset>
  <url><loc>%[1]s/pricing</loc></url>
  <url><loc>%[1]s/docs</loc></url>
</urlset>`, srv.URL)
		})
		srv = httptest.NewServer(mux)
		defer srv.Close()

		d := pwhttp.NewDiscovery(srv.Client())
		got, err := d.DiscoverPricingURLs(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/pricing"}, got)
	})

	t.Run("follows a sitemap index and dedups repeated URLs", func(t *testing.T) {
		t.Parallel()

		var srv *httptest.Server
		mux := http.NewServeMux()
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex>
  <sitemap><loc>%[1]s/sitemap-a.xml</loc></sitemap>
  <sitemap><loc>%[1]s/sitemap-b.xml</loc></sitemap>
</sitemapindex>`, srv.URL)
		})
		mux.HandleFunc("/sitemap-a.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<urlset><url><loc>%[1]s/pricing</loc></url></urlset>`, srv.URL)
		})
		mux.HandleFunc("/sitemap-b.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<urlset><url><loc>%[1]s/pricing</loc></url><url><loc>%[1]s/subscribe</loc></url></urlset>`, srv.URL)
		})
		srv = httptest.NewServer(mux)
		defer srv.Close()

		d := pwhttp.NewDiscovery(srv.Client())
		got, err := d.DiscoverPricingURLs(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/pricing", srv.URL + "/subscribe"}, got)
	})

	t.Run("returns empty slice when no sitemap exists", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		d := pwhttp.NewDiscovery(srv.Client())
		got, err := d.DiscoverPricingURLs(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("returns error for an unparseable site URL", func(t *testing.T) {
		t.Parallel()

		d := pwhttp.NewDiscovery(nil)
		_, err := d.DiscoverPricingURLs(context.Background(), "://not-a-url")
		assert.Error(t, err)
	})
}
