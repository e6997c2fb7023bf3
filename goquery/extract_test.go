package goquery_test

import (
	"testing"

	"github.com/pricelens/pricewatch/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("headings get markdown prefixes", func(t *testing.T) {
		t.Parallel()
		result, err := goquery.Extract(`<html><body>
			<h1>Pricing</h1>
			<h2>Pro</h2>
			<h3>Features</h3>
		</body></html>`)
		require.NoError(t, err)
		assert.Contains(t, result.Text, "# Pricing")
		assert.Contains(t, result.Text, "## Pro")
		assert.Contains(t, result.Text, "### Features")
	})

	t.Run("list items get dash prefixes", func(t *testing.T) {
		t.Parallel()
		result, err := goquery.Extract(`<html><body><ul>
			<li>Unlimited projects</li>
			<li>Priority support</li>
		</ul></body></html>`)
		require.NoError(t, err)
		assert.Contains(t, result.Text, "- Unlimited projects")
		assert.Contains(t, result.Text, "- Priority support")
	})

	t.Run("table rows join cells with pipes", func(t *testing.T) {
		t.Parallel()
		result, err := goquery.Extract(`<html><body><table>
			<tr><th>Plan</th><th>Price</th></tr>
			<tr><td>Pro</td><td>$49/mo</td></tr>
		</table></body></html>`)
		require.NoError(t, err)
		assert.Contains(t, result.Text, "Plan | Price")
		assert.Contains(t, result.Text, "Pro | $49/mo")
	})

	t.Run("strips scripts, nav, and footer", func(t *testing.T) {
		t.Parallel()
		result, err := goquery.Extract(`<html><body>
			<script>window.analytics()</script>
			<nav><li>Home</li></nav>
			<h1>Pricing</h1>
			<footer><p>All rights reserved</p></footer>
		</body></html>`)
		require.NoError(t, err)
		assert.Contains(t, result.Text, "# Pricing")
		assert.NotContains(t, result.Text, "analytics")
		assert.NotContains(t, result.Text, "Home")
		assert.NotContains(t, result.Text, "All rights reserved")
	})

	t.Run("strips cookie banners and hidden elements", func(t *testing.T) {
		t.Parallel()
		result, err := goquery.Extract(`<html><body>
			<div class="cookie-banner"><p>We use cookies</p></div>
			<div aria-hidden="true"><p>hidden promo</p></div>
			<h1>Pricing</h1>
		</body></html>`)
		require.NoError(t, err)
		assert.NotContains(t, result.Text, "We use cookies")
		assert.NotContains(t, result.Text, "hidden promo")
	})

	t.Run("pricing-class elements are captured", func(t *testing.T) {
		t.Parallel()
		result, err := goquery.Extract(`<html><body>
			<div class="price-tag"><span>$49</span><span>/mo</span></div>
		</body></html>`)
		require.NoError(t, err)
		assert.Contains(t, result.Text, "$49")
	})

	t.Run("duplicate lines are kept once", func(t *testing.T) {
		t.Parallel()
		result, err := goquery.Extract(`<html><body>
			<p>Start free today</p>
			<p>Start free today</p>
		</body></html>`)
		require.NoError(t, err)
		assert.Equal(t, "Start free today", result.Text)
	})

	t.Run("extracts page title", func(t *testing.T) {
		t.Parallel()
		result, err := goquery.Extract(`<html><head><title>Acme Pricing</title></head><body><h1>Pricing</h1></body></html>`)
		require.NoError(t, err)
		assert.Equal(t, "Acme Pricing", result.Title)
	})

	t.Run("whitespace is collapsed", func(t *testing.T) {
		t.Parallel()
		result, err := goquery.Extract("<html><body><p>  $49\n\n  per   month </p></body></html>")
		require.NoError(t, err)
		assert.Contains(t, result.Text, "$49 per month")
	})
}
