package rod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterDecorativeLines(t *testing.T) {
	t.Parallel()

	t.Run("drops border decoration", func(t *testing.T) {
		t.Parallel()
		in := "==============================\nPro plan $49 per month\n------------------------------"
		assert.Equal(t, "Pro plan $49 per month", FilterDecorativeLines(in))
	})

	t.Run("keeps short symbol runs", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "---", FilterDecorativeLines("---"))
	})

	t.Run("keeps content with embedded symbols", func(t *testing.T) {
		t.Parallel()
		in := "Pro: $49/mo (billed yearly: $490)"
		assert.Equal(t, in, FilterDecorativeLines(in))
	})

	t.Run("keeps markdown table rows", func(t *testing.T) {
		t.Parallel()
		in := "| Plan | Price |\n| Pro | $49/mo |"
		assert.Equal(t, in, FilterDecorativeLines(in))
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", FilterDecorativeLines(""))
	})
}

func TestIsBillingToggleText(t *testing.T) {
	t.Parallel()

	assert.True(t, isBillingToggleText("Billed monthly"))
	assert.True(t, isBillingToggleText(" Annual "))
	assert.True(t, isBillingToggleText("Per year"))
	assert.False(t, isBillingToggleText("Get started"))
}

func TestClassifyBrowserError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want string
	}{
		{"navigation failed: net::ERR_CONNECTION_REFUSED", "NETWORK_ERROR"},
		{"page load timeout exceeded", "TIMEOUT"},
		{"server responded 403 forbidden", "BLOCKED"},
		{"something odd happened", "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(classifyBrowserError(errorString(tt.msg))))
		})
	}
}

type errorString string

func (e errorString) Error() string { return string(e) }
