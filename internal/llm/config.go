// Package llm provides centralized LLM configuration and client abstractions.
// Callers pick a model tier; the configured provider maps it to a concrete model.
package llm

import (
	"fmt"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: keyword extraction, short answers
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: edit suggestions, chat turns
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: full resume generation
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini uses the github.com/google/generative-ai-go SDK
	ProviderGemini Provider = "gemini"
	// ProviderGenAI uses the unified google.golang.org/genai SDK
	ProviderGenAI Provider = "genai"
)

// Backend selects the service behind the unified genai SDK
type Backend string

const (
	// BackendGeminiAPI talks to the public Gemini API with an API key
	BackendGeminiAPI Backend = "gemini-api"
	// BackendVertexAI talks to Vertex AI with application default credentials
	BackendVertexAI Backend = "vertex-ai"
)

// DefaultTemperature keeps generated output stable across calls
const DefaultTemperature float32 = 0.1

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Backend     Backend
	Project     string // Vertex AI only
	Location    string // Vertex AI only
	Temperature float32
	Models      map[ModelTier]string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Backend:     BackendGeminiAPI,
		Temperature: DefaultTemperature,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// ParseProvider maps a configuration string to a Provider. Empty selects the default.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderGenAI:
		return ProviderGenAI, nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q (expected %q or %q)", s, ProviderGemini, ProviderGenAI)
	}
}

// ParseBackend maps a configuration string to a Backend. Empty selects the Gemini API.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendGeminiAPI:
		return BackendGeminiAPI, nil
	case BackendVertexAI, "vertex":
		return BackendVertexAI, nil
	default:
		return "", fmt.Errorf("unknown genai backend %q", s)
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

// temperature returns the configured temperature or the default when unset
func (c *Config) temperature() float32 {
	if c.Temperature <= 0 {
		return DefaultTemperature
	}
	return c.Temperature
}
