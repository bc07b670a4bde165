package llm

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_MissingAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	genaiConfig := DefaultConfig()
	genaiConfig.Provider = ProviderGenAI
	_, err = NewClient(context.Background(), genaiConfig, "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewClient_VertexNeedsProject(t *testing.T) {
	config := DefaultConfig()
	config.Provider = ProviderGenAI
	config.Backend = BackendVertexAI

	_, err := NewClient(context.Background(), config, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project and location")
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "openai"}, "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai")
}

func TestGeminiClient_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" || testing.Short() {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, nil, apiKey)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	schema := Object(map[string]*Schema{"answer": String("one word")}, "answer")
	out, err := client.GenerateStructured(ctx, `Reply with {"answer": "ok"}`, schema, TierLite)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{"))

	reply, err := client.Chat(ctx, "Answer in one word.", []Turn{
		{Role: RoleUser, Text: "My name is Ada."},
		{Role: RoleModel, Text: "Hello."},
	}, "What is my name?", nil, TierLite)
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(reply), "ada")
}
