// Package fetch retrieves job postings over HTTP and reduces their HTML to readable text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Request defaults
const (
	DefaultTimeout      = 30 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (compatible; ResumeTailor/1.0)"
	DefaultAccept       = "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.1"
	DefaultMaxBodyBytes = 5 << 20
)

// Result holds the raw and processed content from a URL fetch
type Result struct {
	URL         string
	HTML        string
	Text        string
	ContentType string
	StatusCode  int
}

// Options configures the fetch behavior
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxBodyBytes int64
	Client       *http.Client // optional; Timeout is ignored when set
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

func (o *Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: o.Timeout}
}

func (o *Options) bodyLimit() int64 {
	if o.MaxBodyBytes <= 0 {
		return DefaultMaxBodyBytes
	}
	return o.MaxBodyBytes
}

// checkURL accepts absolute http and https URLs only
func checkURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}
	return nil
}

// readableContentType reports whether a response can hold a job description. A missing
// header is accepted; binary documents and images are not.
func readableContentType(header string) bool {
	if header == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") || strings.HasSuffix(mediaType, "xml") || strings.HasSuffix(mediaType, "json")
}

// URL retrieves HTML content from a URL. On a non-200 status the partial result is
// returned together with the error.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := checkURL(urlStr); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", DefaultAccept)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := opts.client().Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	result := &Result{
		URL:         urlStr,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: urlStr, StatusCode: resp.StatusCode, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	if !readableContentType(result.ContentType) {
		return result, &Error{URL: urlStr, StatusCode: resp.StatusCode, Message: fmt.Sprintf("unsupported content type %q", result.ContentType)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, opts.bodyLimit()))
	if err != nil {
		return nil, &Error{URL: urlStr, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}
	result.HTML = string(body)
	return result, nil
}

// pageNoise is removed from every page regardless of platform
const pageNoise = "nav, footer, header, script, style, noscript, template, svg, [hidden], [aria-hidden='true'], " +
	".ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup"

// blockElements end a line in the extracted text
const blockElements = "p, li, br, h1, h2, h3, h4, h5, h6, div, tr, section"

// ExtractMainText parses HTML and returns the text of the first element matching
// contentSelectors, after removing page chrome and noiseSelectors. The body is used when
// no selector matches. List items keep a "- " marker.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(pageNoise).Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	content := mainContent(doc, contentSelectors)
	content.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "li" {
			s.PrependHtml("- ")
		}
		s.AppendHtml("\n")
	})

	return cleanWhitespace(content.Text()), nil
}

// mainContent returns the first non-empty match of selectors, else the body
func mainContent(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		selection := doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.TrimSpace(s.Text()) != ""
		})
		if selection.Length() > 0 {
			return selection.First()
		}
	}
	return doc.Find("body")
}

// JobPostingSelectors returns the generic description selectors, most specific first
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		".job-content",
		"#job-description",
		"#job-content",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"[itemprop='description']",
		"main",
		"article",
		".content",
		"#content",
	}
}

// cleanWhitespace trims every line, collapses runs of spaces and drops blank lines
func cleanWhitespace(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
