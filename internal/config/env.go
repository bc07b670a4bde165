package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv
const (
	EnvAPIKey        = "GEMINI_API_KEY"
	EnvGoogleAPIKey  = "GOOGLE_API_KEY"
	EnvProvider      = "LLM_PROVIDER"
	EnvBackend       = "LLM_BACKEND"
	EnvProject       = "GOOGLE_CLOUD_PROJECT"
	EnvLocation      = "GOOGLE_CLOUD_LOCATION"
	EnvPort          = "PORT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
	EnvUseBrowser    = "USE_BROWSER"
	EnvRateEnabled   = "RATE_LIMIT_ENABLED"
	EnvRateLimit     = "RATE_LIMIT_DEFAULT_LIMIT"
	EnvRateWindow    = "RATE_LIMIT_DEFAULT_WINDOW"
	EnvRateCleanup   = "RATE_LIMIT_CLEANUP_INTERVAL"
	EnvRateWhitelist = "RATE_LIMIT_WHITELIST"
	EnvRateBlacklist = "RATE_LIMIT_BLACKLIST"
)

// ApplyEnv overrides fields with any environment variables that are set.
// Malformed numeric, boolean and duration values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	} else if v := getenv(EnvGoogleAPIKey); v != "" && c.APIKey == "" {
		c.APIKey = v
	}
	setString(getenv, EnvProvider, &c.Provider)
	setString(getenv, EnvBackend, &c.Backend)
	setString(getenv, EnvProject, &c.Project)
	setString(getenv, EnvLocation, &c.Location)
	setString(getenv, EnvLogLevel, &c.LogLevel)
	setString(getenv, EnvLogFormat, &c.LogFormat)

	c.Port = getEnvInt(getenv, EnvPort, c.Port)
	c.UseBrowser = getEnvBool(getenv, EnvUseBrowser, c.UseBrowser)

	rl := &c.RateLimit
	rl.Disabled = !getEnvBool(getenv, EnvRateEnabled, !rl.Disabled)
	rl.DefaultLimit = getEnvInt(getenv, EnvRateLimit, rl.DefaultLimit)
	rl.DefaultWindow = Duration(getEnvDuration(getenv, EnvRateWindow, time.Duration(rl.DefaultWindow)))
	rl.CleanupInterval = Duration(getEnvDuration(getenv, EnvRateCleanup, time.Duration(rl.CleanupInterval)))
	if v := getenv(EnvRateWhitelist); v != "" {
		rl.Whitelist = parseIPList(v)
	}
	if v := getenv(EnvRateBlacklist); v != "" {
		rl.Blacklist = parseIPList(v)
	}
}

func setString(getenv func(string) string, key string, dst *string) {
	if v := getenv(key); v != "" {
		*dst = v
	}
}

// getEnvInt gets an environment variable as an int with a default value.
func getEnvInt(getenv func(string) string, key string, defaultValue int) int {
	if value := getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a bool with a default value.
func getEnvBool(getenv func(string) string, key string, defaultValue bool) bool {
	if value := getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(getenv func(string) string, key string, defaultValue time.Duration) time.Duration {
	if value := getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses.
func parseIPList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Duration is a time.Duration written as a Go duration string ("30s", "5m") in
// config files. Bare JSON numbers are read as seconds.
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value * float64(time.Second)))
		return nil
	case string:
		return d.parse(value)
	default:
		return fmt.Errorf("invalid duration %s", string(data))
	}
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if seconds, err := strconv.ParseFloat(s, 64); err == nil {
		*d = Duration(time.Duration(seconds * float64(time.Second)))
		return nil
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}
