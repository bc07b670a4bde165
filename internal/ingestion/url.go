package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/resume-tailor/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the job posting could not be downloaded
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrNoJobText is returned when a posting yields no readable description
	ErrNoJobText = errors.New("job posting has no readable text")
)

// JobDescription is the cleaned text of a job posting together with its source
type JobDescription struct {
	Text     string    `json:"text"`
	Metadata *Metadata `json:"metadata"`
}

// JobFetchOptions configures FetchJobDescription
type JobFetchOptions struct {
	UseBrowser bool
	HTTP       *fetch.Options
	Renderer   fetch.Renderer
	Logger     *slog.Logger
}

// FetchJobDescription downloads a job posting, extracts the description with platform-aware
// selectors and cleans it. With UseBrowser set, JavaScript-rendered boards are loaded in a
// headless browser when the plain HTTP response has too little text.
func FetchJobDescription(ctx context.Context, urlStr string, opts JobFetchOptions) (*JobDescription, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	posting, err := fetch.FetchJobPosting(ctx, urlStr, fetch.JobOptions{
		HTTP:       opts.HTTP,
		UseBrowser: opts.UseBrowser,
		Renderer:   opts.Renderer,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	text := CleanText(posting.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoJobText, urlStr)
	}
	logger.Info("fetched job description", "posting", posting.Describe(), "cleaned_chars", len(text))

	meta := NewMetadata(text, Source{URL: urlStr, Platform: string(posting.Platform), MediaType: "text/html"})
	return &JobDescription{Text: text, Metadata: meta}, nil
}
