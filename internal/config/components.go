package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
)

// Page sizes in millimetres
var pageSizes = map[string][2]float64{
	"a4":     {210, 297},
	"letter": {215.9, 279.4},
}

func pageSize(name string) (float64, float64, bool) {
	size, ok := pageSizes[strings.ToLower(strings.TrimSpace(name))]
	return size[0], size[1], ok
}

// LLMConfig builds the model client configuration
func (c *Config) LLMConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.Provider)
	if err != nil {
		return nil, err
	}
	backend, err := llm.ParseBackend(c.Backend)
	if err != nil {
		return nil, err
	}

	cfg := llm.DefaultConfig()
	cfg.Provider = provider
	cfg.Backend = backend
	cfg.Project = c.Project
	cfg.Location = c.Location
	for tier, model := range c.Models {
		if model == "" {
			continue
		}
		cfg = cfg.WithModel(llm.ModelTier(tier), model)
	}
	return cfg, nil
}

// Geometry returns the page geometry for the configured page size and margin
func (c *Config) Geometry() rendering.Geometry {
	g := rendering.DefaultGeometry()
	if w, h, ok := pageSize(c.PageSize); ok {
		g.PageWidth, g.PageHeight = w, h
	}
	if c.MarginMM > 0 {
		g.MarginTop = c.MarginMM
		g.MarginBottom = c.MarginMM
		g.MarginLeft = c.MarginMM
		g.MarginRight = c.MarginMM
	}
	return g
}

// ExtractorConfig returns the upload limits for the text extractor
func (c *Config) ExtractorConfig() ingestion.ExtractorConfig {
	cfg := ingestion.DefaultExtractorConfig()
	if c.MaxUploadBytes > 0 {
		cfg.MaxBytes = c.MaxUploadBytes
	}
	if c.MinTextLength > 0 {
		cfg.MinTextLength = c.MinTextLength
	}
	return cfg
}

// JobFetchOptions returns the options used to download job postings
func (c *Config) JobFetchOptions(logger *slog.Logger) ingestion.JobFetchOptions {
	opts := ingestion.JobFetchOptions{
		UseBrowser: c.UseBrowser,
		Logger:     logger,
	}
	if c.UseBrowser {
		opts.Renderer = fetch.NewBrowserRenderer(c.BrowserTimeout.Std(), logger)
	}
	return opts
}

// RateLimiterConfig returns the limiter configuration for the HTTP server
func (c *Config) RateLimiterConfig() *ratelimit.Config {
	rl := c.RateLimit
	if rl.Disabled {
		return &ratelimit.Config{Enabled: false}
	}
	return &ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    rl.DefaultLimit,
		DefaultWindow:   rl.DefaultWindow.Std(),
		CleanupInterval: rl.CleanupInterval.Std(),
		Whitelist:       ratelimit.IPSet(rl.Whitelist),
		Blacklist:       ratelimit.IPSet(rl.Blacklist),
		EndpointConfigs: ratelimit.DefaultEndpointConfigs(),
	}
}

// NewLogger builds the slog logger described by LogLevel and LogFormat.
// Verbose lowers the level to debug.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.LogFormat) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.LogFormat)
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
