package fetch

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the number of characters below which a plain HTTP fetch is
// treated as an unrendered single-page app.
const MinContentLength = 500

const (
	// DefaultBrowserTimeout bounds a single headless render
	DefaultBrowserTimeout = 30 * time.Second
	// DefaultSettleTime is how long scripts get to fill the page after body is ready
	DefaultSettleTime = 3 * time.Second
)

// consentButtons matches cookie banners that can cover a job description
const (
	consentButtons = `button[id*="accept"], button[class*="accept"], button[aria-label*="Accept"]`
	consentWait    = 2 * time.Second
)

// ShouldUseBrowser reports whether extracted text is too short to be a real posting.
func ShouldUseBrowser(extractedText string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer returns the HTML of a page after client-side scripts have run
type Renderer func(ctx context.Context, url string) (string, error)

// Browser renders pages in headless Chrome. Chrome or Chromium must be installed.
type Browser struct {
	Timeout time.Duration
	Settle  time.Duration
	Logger  *slog.Logger
}

// NewBrowserRenderer returns a Renderer backed by headless Chrome
func NewBrowserRenderer(timeout time.Duration, logger *slog.Logger) Renderer {
	return Browser{Timeout: timeout, Logger: logger}.Render
}

func (b Browser) options() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.UserAgent(DefaultUserAgent),
	)
}

// Render loads url, dismisses any consent banner and returns the final document HTML.
func (b Browser) Render(ctx context.Context, url string) (string, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	settle := b.Settle
	if settle <= 0 {
		settle = DefaultSettleTime
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.options()...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	started := time.Now()
	logger.Debug("starting headless browser", "url", url, "timeout", timeout)

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
		chromedp.ActionFunc(dismissConsent),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	logger.Debug("rendered page in browser",
		"url", url, "html_bytes", len(html), "duration", time.Since(started))
	return html, nil
}

// dismissConsent clicks a consent button if the page has one. A banner that never
// becomes visible is ignored after consentWait.
func dismissConsent(ctx context.Context) error {
	var found bool
	query := "document.querySelector(" + strconv.Quote(consentButtons) + ") !== null"
	if err := chromedp.Evaluate(query, &found).Do(ctx); err != nil || !found {
		return nil
	}
	clickCtx, cancel := context.WithTimeout(ctx, consentWait)
	defer cancel()
	_ = chromedp.Click(consentButtons, chromedp.NodeVisible, chromedp.ByQuery).Do(clickCtx)
	return nil
}
