package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path; a trailing "/" matches every path below it
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns an enabled limiter configuration with the default endpoint tiers.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: full tailoring runs and resume generation (strictest limits)
		{Path: "/analyze", Method: http.MethodPost, Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/analyze/stream", Method: http.MethodPost, Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/generate", Method: http.MethodPost, Limit: 30, Window: time.Hour, Burst: 3},

		// Tier 2: single model calls and outbound fetches
		{Path: "/keywords", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/suggestions", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/chat", Method: http.MethodPost, Limit: 120, Window: time.Hour, Burst: 10},
		{Path: "/job/fetch", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},

		// Tier 3: local CPU work
		{Path: "/extract", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/export/", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 4: validation and layout - handled by default limit
		// Tier 5: health check (unlimited) - handled by special case in matcher
	}
}

// IPSet converts a list of client addresses into the lookup form used by Config.
func IPSet(ips []string) map[string]bool {
	set := make(map[string]bool, len(ips))
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			set[ip] = true
		}
	}
	return set
}
