// Package config provides configuration loading and validation for the CLI and server.
// Values come from a JSON or YAML file, then .env and process environment, then flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs (CLI defaults)
	Resume string `json:"resume,omitempty" yaml:"resume,omitempty"`   // Path to resume file
	Job    string `json:"job,omitempty" yaml:"job,omitempty"`         // Path to job description file
	JobURL string `json:"job_url,omitempty" yaml:"job_url,omitempty"` // URL to fetch job posting from
	Output string `json:"output,omitempty" yaml:"output,omitempty"`   // Output directory for exports
	Format string `json:"format,omitempty" yaml:"format,omitempty"`   // Export format: docx, pdf, txt, tex

	// Model
	APIKey             string            `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Provider           string            `json:"provider,omitempty" yaml:"provider,omitempty"` // gemini or genai
	Backend            string            `json:"backend,omitempty" yaml:"backend,omitempty"`   // gemini-api or vertex-ai
	Project            string            `json:"project,omitempty" yaml:"project,omitempty"`
	Location           string            `json:"location,omitempty" yaml:"location,omitempty"`
	Models             map[string]string `json:"models,omitempty" yaml:"models,omitempty"` // tier -> model name
	RetryOnSchemaError bool              `json:"retry_on_schema_error,omitempty" yaml:"retry_on_schema_error,omitempty"`

	// Extraction
	MaxUploadBytes int64    `json:"max_upload_bytes,omitempty" yaml:"max_upload_bytes,omitempty"`
	MinTextLength  int      `json:"min_text_length,omitempty" yaml:"min_text_length,omitempty"`
	UseBrowser     bool     `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // Use headless browser for SPA job boards
	BrowserTimeout Duration `json:"browser_timeout,omitempty" yaml:"browser_timeout,omitempty"`

	// Rendering
	PageSize string  `json:"page_size,omitempty" yaml:"page_size,omitempty"` // a4 or letter
	MarginMM float64 `json:"margin_mm,omitempty" yaml:"margin_mm,omitempty"`

	// Server
	Port      int       `json:"port,omitempty" yaml:"port,omitempty"`
	RateLimit RateLimit `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`

	// Logging
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`   // debug, info, warn, error
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"` // text or json
	Verbose   bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`       // Print detailed output in the CLI
}

// RateLimit configures the server's per-client token buckets
type RateLimit struct {
	Disabled        bool     `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	DefaultLimit    int      `json:"default_limit,omitempty" yaml:"default_limit,omitempty"`
	DefaultWindow   Duration `json:"default_window,omitempty" yaml:"default_window,omitempty"`
	CleanupInterval Duration `json:"cleanup_interval,omitempty" yaml:"cleanup_interval,omitempty"`
	Whitelist       []string `json:"whitelist,omitempty" yaml:"whitelist,omitempty"`
	Blacklist       []string `json:"blacklist,omitempty" yaml:"blacklist,omitempty"`
}

// Defaults
const (
	DefaultPort           = 8080
	DefaultPageSize       = "a4"
	DefaultMarginMM       = 15
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultBrowserTimeout = 30 * time.Second
)

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Provider:           "gemini",
		Backend:            "gemini-api",
		RetryOnSchemaError: true,
		MaxUploadBytes:     10 << 20,
		MinTextLength:      20,
		BrowserTimeout:     Duration(DefaultBrowserTimeout),
		PageSize:           DefaultPageSize,
		MarginMM:           DefaultMarginMM,
		Port:               DefaultPort,
		RateLimit: RateLimit{
			DefaultLimit:    1000,
			DefaultWindow:   Duration(time.Minute),
			CleanupInterval: Duration(5 * time.Minute),
		},
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Format:    "pdf",
	}
}

// LoadConfig loads configuration from a JSON or YAML file. The format follows the
// extension; files with another extension are tried as JSON, then YAML.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	default:
		if jsonErr := json.Unmarshal(data, &cfg); jsonErr != nil {
			cfg = Config{}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config as JSON (%v) or YAML: %w", jsonErr, err)
			}
		}
	}

	return &cfg, nil
}

// LoadDotEnv loads variables from .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Required inputs are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be non-negative")
	}
	if c.MinTextLength < 0 {
		return fmt.Errorf("config error: 'min_text_length' must be non-negative")
	}
	if c.MarginMM < 0 {
		return fmt.Errorf("config error: 'margin_mm' must be non-negative")
	}
	if c.PageSize != "" {
		if _, _, ok := pageSize(c.PageSize); !ok {
			return fmt.Errorf("config error: unknown page_size %q (expected a4 or letter)", c.PageSize)
		}
	}
	if c.RateLimit.DefaultLimit < 0 {
		return fmt.Errorf("config error: 'rate_limit.default_limit' must be non-negative")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config error: unknown log_format %q (expected text or json)", c.LogFormat)
	}

	if c.Resume != "" {
		if _, err := os.Stat(c.Resume); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume file not found: %s", c.Resume)
		}
	}
	if c.Job != "" {
		if _, err := os.Stat(c.Job); os.IsNotExist(err) {
			return fmt.Errorf("config error: job file not found: %s", c.Job)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	mergeString(&result.Resume, defaults.Resume)
	mergeString(&result.Job, defaults.Job)
	mergeString(&result.JobURL, defaults.JobURL)
	mergeString(&result.Output, defaults.Output)
	mergeString(&result.Format, defaults.Format)
	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.Provider, defaults.Provider)
	mergeString(&result.Backend, defaults.Backend)
	mergeString(&result.Project, defaults.Project)
	mergeString(&result.Location, defaults.Location)
	mergeString(&result.PageSize, defaults.PageSize)
	mergeString(&result.LogLevel, defaults.LogLevel)
	mergeString(&result.LogFormat, defaults.LogFormat)

	if result.Models == nil && defaults.Models != nil {
		result.Models = make(map[string]string, len(defaults.Models))
		for k, v := range defaults.Models {
			result.Models[k] = v
		}
	}

	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.MinTextLength == 0 {
		result.MinTextLength = defaults.MinTextLength
	}
	if result.BrowserTimeout == 0 {
		result.BrowserTimeout = defaults.BrowserTimeout
	}
	if result.MarginMM == 0 {
		result.MarginMM = defaults.MarginMM
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	rl := &result.RateLimit
	if rl.DefaultLimit == 0 {
		rl.DefaultLimit = defaults.RateLimit.DefaultLimit
	}
	if rl.DefaultWindow == 0 {
		rl.DefaultWindow = defaults.RateLimit.DefaultWindow
	}
	if rl.CleanupInterval == 0 {
		rl.CleanupInterval = defaults.RateLimit.CleanupInterval
	}
	if rl.Whitelist == nil {
		rl.Whitelist = defaults.RateLimit.Whitelist
	}
	if rl.Blacklist == nil {
		rl.Blacklist = defaults.RateLimit.Blacklist
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func mergeString(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}

// Resolve loads the optional config file, applies the environment and fills the rest
// from Default. It is the single entry point used by the CLI and server.
func Resolve(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.Getenv)
	merged := cfg.MergeWithDefaults(Default())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}
