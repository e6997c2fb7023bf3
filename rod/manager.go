// Package rod provides the headless-browser fetch strategy and screenshot
// capture on top of a shared, recycled Chrome instance.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pricelens/pricewatch"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 50

// BrowserManager owns the shared headless Chrome handle. The browser is
// launched lazily on first use, reused while connected, and recycled after
// maxPages pages because Chrome accumulates memory that page cleanup never
// fully returns. Close must be called at process shutdown.
//
// BrowserManager is safe for concurrent use, but the pipeline itself uses
// it sequentially; the lock only guards lifecycle transitions.
type BrowserManager struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	pageCount int64
	maxPages  int64
	mu        sync.Mutex
	closed    atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of pages before the browser is recycled.
// Defaults to DefaultMaxPages.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// NewBrowserManager creates a BrowserManager. The browser is not launched
// until the first page is requested.
func NewBrowserManager(opts ...ManagerOption) *BrowserManager {
	bm := &BrowserManager{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(bm)
	}
	return bm
}

// NewPage returns a fresh page configured for the given region context,
// launching or recycling the browser as needed. The caller must close the
// page when done.
func (bm *BrowserManager) NewPage(ctx context.Context, region *pricewatch.RegionContext) (*rod.Page, error) {
	bm.mu.Lock()
	if bm.closed.Load() {
		bm.mu.Unlock()
		return nil, pricewatch.Errorf(pricewatch.EUNAVAILABLE, "browser manager is closed")
	}

	if bm.browser == nil {
		if err := bm.launchBrowser(); err != nil {
			bm.mu.Unlock()
			return nil, err
		}
	} else if atomic.LoadInt64(&bm.pageCount) >= bm.maxPages {
		bm.recycleBrowser()
	}
	browser := bm.browser
	bm.mu.Unlock()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	atomic.AddInt64(&bm.pageCount, 1)

	page = page.Context(ctx)
	if err := applyRegion(page, region); err != nil {
		page.Close()
		return nil, err
	}
	return page, nil
}

// Close releases browser resources. Safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	return bm.closeBrowser()
}

// applyRegion configures a page to present as a visitor from the region.
func applyRegion(page *rod.Page, region *pricewatch.RegionContext) error {
	if region == nil {
		region = pricewatch.Region("global")
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      browserUserAgent,
		AcceptLanguage: region.AcceptLanguage,
	}); err != nil {
		return fmt.Errorf("setting user agent: %w", err)
	}

	if region.Timezone != "" {
		if err := (proto.EmulationSetTimezoneOverride{TimezoneID: region.Timezone}).Call(page); err != nil {
			return fmt.Errorf("setting timezone: %w", err)
		}
	}
	if region.Latitude != 0 || region.Longitude != 0 {
		lat, lon, acc := region.Latitude, region.Longitude, float64(1)
		if err := (proto.EmulationSetGeolocationOverride{
			Latitude:  &lat,
			Longitude: &lon,
			Accuracy:  &acc,
		}).Call(page); err != nil {
			return fmt.Errorf("setting geolocation: %w", err)
		}
	}
	return nil
}

// launchBrowser starts a new browser instance with stability flags.
// Must be called with mu held.
func (bm *BrowserManager) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = lnchr
	atomic.StoreInt64(&bm.pageCount, 0)
	return nil
}

// closeBrowser shuts down the current browser and launcher.
// Must be called with mu held.
func (bm *BrowserManager) closeBrowser() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// recycleBrowser starts a fresh browser and closes the old one. If the new
// launch fails, the old browser is kept. Must be called with mu held.
func (bm *BrowserManager) recycleBrowser() {
	oldBrowser := bm.browser
	oldLauncher := bm.launcher
	bm.browser = nil
	bm.launcher = nil

	if err := bm.launchBrowser(); err != nil {
		bm.browser = oldBrowser
		bm.launcher = oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
}

// LauncherPID returns the process ID of the browser launcher, or 0 when no
// browser is running. Exists for tests verifying cleanup.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
