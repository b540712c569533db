package fetch

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/lepinkainen/mensa/internal/location"
)

// DefaultBrowserTimeout bounds one rendered page.
const DefaultBrowserTimeout = 45 * time.Second

var (
	chromedpExecAllocator = chromedp.NewExecAllocator
	chromedpContext       = chromedp.NewContext
	chromedpRunner        = chromedp.Run
)

// BrowserClient renders menu pages in headless Chrome. Use it when the site
// only serves the menu to script-capable clients. Requires Chrome/Chromium.
type BrowserClient struct {
	Timeout   time.Duration
	UserAgent string
	Headless  bool
}

// NewBrowserClient creates a headless browser client.
func NewBrowserClient(timeout time.Duration, userAgent string) *BrowserClient {
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &BrowserClient{Timeout: timeout, UserAgent: userAgent, Headless: true}
}

// Fetch navigates to the location's page and returns the rendered HTML.
func (b *BrowserClient) Fetch(ctx context.Context, loc location.Location, day time.Time) (io.ReadCloser, error) {
	pageURL, err := PageURL(loc, day)
	if err != nil {
		return nil, err
	}

	slog.Debug("Rendering page in browser", "url", pageURL)

	allocCtx, cancelAllocator := chromedpExecAllocator(ctx, b.allocatorOptions()...)
	defer cancelAllocator()

	browserCtx, cancelBrowser := chromedpContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancel := context.WithTimeout(browserCtx, b.Timeout)
	defer cancel()

	var html string
	err = chromedpRunner(browserCtx,
		emulation.SetUserAgentOverride(b.UserAgent),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "browser rendering failed", Cause: err}
	}

	slog.Debug("Rendered page", "url", pageURL, "bytes", len(html))
	return io.NopCloser(strings.NewReader(html)), nil
}

func (b *BrowserClient) allocatorOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("headless", b.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("mute-audio", true),
	)
}
