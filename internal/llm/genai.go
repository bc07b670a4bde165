package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAIClient implements Client over the unified google.golang.org/genai SDK,
// which reaches either the Gemini API or Vertex AI.
type GenAIClient struct {
	client *genai.Client
	config *Config
}

// NewGenAIClient creates a client for the configured backend. The Gemini API backend
// needs apiKey; Vertex AI uses application default credentials with Project and Location.
func NewGenAIClient(ctx context.Context, config *Config, apiKey string) (*GenAIClient, error) {
	if config == nil {
		config = DefaultGeminiConfig()
	}

	cc := &genai.ClientConfig{}
	switch config.Backend {
	case BackendVertexAI:
		if config.Project == "" || config.Location == "" {
			return nil, fmt.Errorf("vertex AI backend requires project and location")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = config.Project
		cc.Location = config.Location
	default:
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = apiKey
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GenAIClient{client: client, config: config}, nil
}

func (c *GenAIClient) generate(ctx context.Context, tier ModelTier, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}
	cfg.Temperature = genai.Ptr(c.config.temperature())

	resp, err := c.client.Models.GenerateContent(ctx, modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates in response")
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text parts in response")
	}
	return text, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GenAIClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, tier, genai.Text(prompt), &genai.GenerateContentConfig{})
}

// GenerateJSON generates JSON content using the specified model tier
func (c *GenAIClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.GenerateStructured(ctx, prompt, nil, tier)
}

// GenerateStructured generates JSON; a non-nil schema is enforced by the API
func (c *GenAIClient) GenerateStructured(ctx context.Context, prompt string, schema *Schema, tier ModelTier) (string, error) {
	text, err := c.generate(ctx, tier, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenAISchema(schema),
	})
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// Chat sends the whole conversation in one request; the API is stateless per call
func (c *GenAIClient) Chat(ctx context.Context, system string, history []Turn, message string, schema *Schema, tier ModelTier) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, textContent(string(turn.Role), turn.Text))
	}
	contents = append(contents, textContent(string(RoleUser), message))

	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = textContent(string(RoleUser), system)
	}
	if schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenAISchema(schema)
	}

	text, err := c.generate(ctx, tier, contents, cfg)
	if err != nil {
		return "", err
	}
	if schema != nil {
		return CleanJSONBlock(text), nil
	}
	return text, nil
}

// GetModel returns the model name for a tier
func (c *GenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the unified SDK holds no long-lived connections
func (c *GenAIClient) Close() error {
	return nil
}

func textContent(role, text string) *genai.Content {
	return &genai.Content{Role: role, Parts: []*genai.Part{{Text: text}}}
}
