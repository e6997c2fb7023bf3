package rod

import (
	"context"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/pricelens/pricewatch"
)

// Ensure Screenshotter implements pricewatch.Screenshotter at compile time.
var _ pricewatch.Screenshotter = (*Screenshotter)(nil)

// Screenshotter captures full-page screenshots for the vision extractor.
// It shares the browser manager with the fetch strategy.
type Screenshotter struct {
	manager *BrowserManager
	timeout time.Duration
}

// NewScreenshotter creates a Screenshotter on the shared browser.
func NewScreenshotter(manager *BrowserManager) *Screenshotter {
	return &Screenshotter{
		manager: manager,
		timeout: DefaultFetchTimeout,
	}
}

// Screenshot renders the page and returns a full-page PNG.
func (s *Screenshotter) Screenshot(ctx context.Context, url string, region *pricewatch.RegionContext) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	page, err := s.manager.NewPage(ctx, region)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := page.Navigate(url); err != nil {
		return nil, err
	}
	if err := page.WaitLoad(); err != nil {
		return nil, err
	}

	// Let late-rendering pricing widgets settle before capture.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(1 * time.Second):
	}

	return page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}
