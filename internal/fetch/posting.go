package fetch

import (
	"context"
	"fmt"
	"log/slog"
)

// JobPosting is the readable text of a fetched job posting
type JobPosting struct {
	URL       string   `json:"url"`
	Platform  Platform `json:"platform"`
	Text      string   `json:"text"`
	Rendered  bool     `json:"rendered"` // true when the text came from the headless browser
	HTMLBytes int      `json:"html_bytes"`
}

// JobOptions configures FetchJobPosting
type JobOptions struct {
	HTTP       *Options
	UseBrowser bool
	Renderer   Renderer // defaults to headless Chrome when UseBrowser is set
	Logger     *slog.Logger
}

// FetchJobPosting downloads a job posting and extracts its description using selectors for
// the detected platform. With UseBrowser set, client-rendered boards and pages whose HTTP
// text is too short are rendered in a headless browser and extracted again. A failed
// render keeps the HTTP text.
func FetchJobPosting(ctx context.Context, urlStr string, opts JobOptions) (*JobPosting, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	platform := DetectPlatform(urlStr)
	logger.Debug("fetching job posting", "url", urlStr, "platform", platform)

	result, err := URL(ctx, urlStr, opts.HTTP)
	if err != nil {
		return nil, err
	}

	contentSelectors := PlatformContentSelectors(platform)
	noiseSelectors := PlatformNoiseSelectors(platform)

	text, err := ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}

	posting := &JobPosting{URL: urlStr, Platform: platform, Text: text, HTMLBytes: len(result.HTML)}

	if opts.UseBrowser && (platform.ClientRendered() || ShouldUseBrowser(text)) {
		render := opts.Renderer
		if render == nil {
			render = NewBrowserRenderer(DefaultBrowserTimeout, logger)
		}
		logger.Info("rendering job posting in browser",
			"url", urlStr, "platform", platform, "chars", len(text), "min_chars", MinContentLength)

		html, renderErr := render(ctx, urlStr)
		if renderErr != nil {
			logger.Warn("browser rendering failed, keeping HTTP content", "url", urlStr, "error", renderErr)
			return posting, nil
		}
		rendered, extractErr := ExtractMainText(html, contentSelectors, noiseSelectors...)
		if extractErr != nil {
			logger.Warn("browser content extraction failed", "url", urlStr, "error", extractErr)
			return posting, nil
		}
		if len(rendered) > len(text) {
			posting.Text = rendered
			posting.Rendered = true
			posting.HTMLBytes = len(html)
		}
	}

	return posting, nil
}

// Describe summarizes a posting for logs
func (p *JobPosting) Describe() string {
	source := "http"
	if p.Rendered {
		source = "browser"
	}
	return fmt.Sprintf("%s (%s, %s, %d chars)", p.URL, p.Platform, source, len(p.Text))
}
