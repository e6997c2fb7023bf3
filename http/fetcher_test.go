package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pricelens/pricewatch"
	pwhttp "github.com/pricelens/pricewatch/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricingPage = `<!DOCTYPE html>
<html>
<head><title>Acme Pricing</title></head>
<body>
<nav><a href="/">Home</a><a href="/pricing">Pricing</a></nav>
<h1>Pricing</h1>
<div class="pricing-card">
  <h2>Pro</h2>
  <p>$49/mo billed monthly</p>
  <ul>
    <li>Unlimited projects</li>
    <li>Priority support</li>
  </ul>
</div>
<footer>© 2026 Acme Inc</footer>
</body>
</html>`

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("extracts markdown-like content on success", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(pricingPage))
		}))
		t.Cleanup(srv.Close)

		f := pwhttp.NewFetcher()
		result := f.Fetch(ctx, srv.URL, nil)

		require.True(t, result.OK())
		assert.Equal(t, "http", result.Strategy)
		assert.Contains(t, result.Markdown, "# Pricing")
		assert.Contains(t, result.Markdown, "$49/mo")
		assert.Contains(t, result.Markdown, "- Unlimited projects")
		assert.NotContains(t, result.Markdown, "© 2026", "footer is boilerplate")
		assert.NotEmpty(t, result.ContentHash)
	})

	t.Run("sends region accept-language header", func(t *testing.T) {
		t.Parallel()
		var gotLang string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotLang = r.Header.Get("Accept-Language")
			w.Write([]byte(pricingPage))
		}))
		t.Cleanup(srv.Close)

		f := pwhttp.NewFetcher()
		f.Fetch(ctx, srv.URL, pricewatch.Region("in"))

		assert.Equal(t, "en-IN,en;q=0.9,hi;q=0.7", gotLang)
	})

	t.Run("403 is a blocked failure", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		t.Cleanup(srv.Close)

		f := pwhttp.NewFetcher()
		result := f.Fetch(ctx, srv.URL, nil)

		require.False(t, result.OK())
		assert.Equal(t, pricewatch.FailureBlocked, result.Failure.Kind)
	})

	t.Run("429 is a blocked failure", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)

		f := pwhttp.NewFetcher()
		result := f.Fetch(ctx, srv.URL, nil)

		require.False(t, result.OK())
		assert.Equal(t, pricewatch.FailureBlocked, result.Failure.Kind)
	})

	t.Run("500 is an unknown failure", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		f := pwhttp.NewFetcher()
		result := f.Fetch(ctx, srv.URL, nil)

		require.False(t, result.OK())
		assert.Equal(t, pricewatch.FailureUnknown, result.Failure.Kind)
	})

	t.Run("near-empty page is an empty failure", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html><body><p>hi</p></body></html>"))
		}))
		t.Cleanup(srv.Close)

		f := pwhttp.NewFetcher()
		result := f.Fetch(ctx, srv.URL, nil)

		require.False(t, result.OK())
		assert.Equal(t, pricewatch.FailureEmpty, result.Failure.Kind)
	})

	t.Run("unreachable host is a network failure", func(t *testing.T) {
		t.Parallel()
		f := pwhttp.NewFetcher(pwhttp.WithTimeout(2 * time.Second))
		result := f.Fetch(ctx, "http://127.0.0.1:1", nil)

		require.False(t, result.OK())
		assert.Equal(t, pricewatch.FailureNetwork, result.Failure.Kind)
	})

	t.Run("slow server is a timeout failure", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			w.Write([]byte(pricingPage))
		}))
		t.Cleanup(srv.Close)

		f := pwhttp.NewFetcher(pwhttp.WithTimeout(50 * time.Millisecond))
		result := f.Fetch(ctx, srv.URL, nil)

		require.False(t, result.OK())
		assert.Equal(t, pricewatch.FailureTimeout, result.Failure.Kind)
	})

	t.Run("identical content yields identical hash", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(pricingPage))
		}))
		t.Cleanup(srv.Close)

		f := pwhttp.NewFetcher()
		first := f.Fetch(ctx, srv.URL, nil)
		second := f.Fetch(ctx, srv.URL, nil)

		require.True(t, first.OK())
		require.True(t, second.OK())
		assert.Equal(t, first.ContentHash, second.ContentHash)
	})
}

func TestFetcherMetadata(t *testing.T) {
	t.Parallel()

	f := pwhttp.NewFetcher()
	assert.Equal(t, "http", f.Name())
	assert.True(t, f.Available())
	assert.NoError(t, f.Close())
}
