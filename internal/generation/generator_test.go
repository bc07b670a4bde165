package generation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/llm/llmtest"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResumeJSON = `{
  "name": "Jane Doe",
  "email": "jane@example.com",
  "phone": "555-1234",
  "summary": {"title": "Summary", "body": "Backend engineer."},
  "workExperience": [{"jobTitle": "Engineer", "company": "Acme", "location": "NYC", "dates": "2020 - Present", "description": ["Built billing in Go"]}],
  "education": [],
  "fullResumeText": "Jane Doe\nEngineer at Acme"
}`

var input = types.TailorInput{
	ResumeText:     "Jane Doe, Go engineer at Acme",
	JobDescription: "Senior Go engineer, Kubernetes",
}

func structured(fn func(prompt string, schema *llm.Schema, tier llm.ModelTier) (string, error)) *llmtest.MockClient {
	return &llmtest.MockClient{
		GenerateStructuredFunc: func(_ context.Context, prompt string, schema *llm.Schema, tier llm.ModelTier) (string, error) {
			return fn(prompt, schema, tier)
		},
	}
}

func TestAnalyzeKeywords_Success(t *testing.T) {
	client := structured(func(prompt string, schema *llm.Schema, tier llm.ModelTier) (string, error) {
		assert.Contains(t, prompt, input.ResumeText)
		assert.Contains(t, prompt, input.JobDescription)
		assert.Equal(t, []string{"keywords"}, schema.Required)
		assert.Equal(t, llm.TierLite, tier)
		return "```json\n{\"keywords\": \"**Matched:** Go\"}\n```", nil
	})

	out, err := New(client, Options{}).AnalyzeKeywords(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "**Matched:** Go", out.Keywords)
}

func TestAnalyzeKeywords_EmptyIsGenerationError(t *testing.T) {
	client := structured(func(string, *llm.Schema, llm.ModelTier) (string, error) {
		return `{"keywords": "   "}`, nil
	})

	_, err := New(client, Options{}).AnalyzeKeywords(context.Background(), input)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ContractKeywords, genErr.Contract)
	assert.Contains(t, genErr.Error(), "no keywords")
}

func TestSuggestEdits_Success(t *testing.T) {
	client := structured(func(_ string, schema *llm.Schema, tier llm.ModelTier) (string, error) {
		assert.Equal(t, []string{"suggestedEdits"}, schema.Required)
		assert.Equal(t, llm.TierStandard, tier)
		return `{"suggestedEdits": "- Mention Kubernetes"}`, nil
	})

	out, err := New(client, Options{}).SuggestEdits(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "- Mention Kubernetes", out.SuggestedEdits)
}

func TestSuggestEdits_NotJSON(t *testing.T) {
	client := structured(func(string, *llm.Schema, llm.ModelTier) (string, error) {
		return "I cannot help with that.", nil
	})

	_, err := New(client, Options{}).SuggestEdits(context.Background(), input)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ContractSuggestions, genErr.Contract)
}

func TestContracts_ModelFailureWrapsCause(t *testing.T) {
	boom := errors.New("quota exceeded")
	client := structured(func(string, *llm.Schema, llm.ModelTier) (string, error) {
		return "", boom
	})
	g := New(client, Options{})

	_, err := g.AnalyzeKeywords(context.Background(), input)
	assert.ErrorIs(t, err, boom)
	_, err = g.SuggestEdits(context.Background(), input)
	assert.ErrorIs(t, err, boom)
	_, err = g.GenerateResume(context.Background(), input)
	assert.ErrorIs(t, err, boom)
}

func TestContracts_RejectBlankInput(t *testing.T) {
	client := &llmtest.MockClient{}
	g := New(client, Options{})

	_, err := g.AnalyzeKeywords(context.Background(), types.TailorInput{ResumeText: "x", JobDescription: " "})
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = g.GenerateResume(context.Background(), types.TailorInput{JobDescription: "x"})
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, client.Calls(), "model must not be called")
}

func TestGenerateResume_Valid(t *testing.T) {
	client := structured(func(prompt string, schema *llm.Schema, tier llm.ModelTier) (string, error) {
		assert.Equal(t, llm.TierAdvanced, tier)
		assert.Contains(t, schema.Required, "fullResumeText")
		return validResumeJSON, nil
	})

	resume, err := New(client, Options{}).GenerateResume(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", resume.Name)
	require.Len(t, resume.WorkExperience, 1)
	assert.Equal(t, []string{"Built billing in Go"}, resume.WorkExperience[0].Description)
	assert.NotNil(t, resume.Education)
}

func TestGenerateResume_MigratesLegacyShape(t *testing.T) {
	client := structured(func(string, *llm.Schema, llm.ModelTier) (string, error) {
		return `{"tailoredResume": "Jane Doe\njane@example.com | 555-123-4567\nBuilt billing in Go"}`, nil
	})

	resume, err := New(client, Options{}).GenerateResume(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", resume.Name)
	assert.Equal(t, "jane@example.com", resume.Email)
	assert.Equal(t, "555-123-4567", resume.Phone)
}

func TestGenerateResume_SchemaErrorWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	client := structured(func(string, *llm.Schema, llm.ModelTier) (string, error) {
		calls.Add(1)
		return `{"name": "Jane"}`, nil
	})

	_, err := New(client, Options{}).GenerateResume(context.Background(), input)
	require.Error(t, err)

	var schemaErr *schemas.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.True(t, schemaErr.Has("email"))
	assert.EqualValues(t, 1, calls.Load())
}

func TestGenerateResume_RetriesOnceWithViolations(t *testing.T) {
	var prompts []string
	client := structured(func(prompt string, _ *llm.Schema, _ llm.ModelTier) (string, error) {
		prompts = append(prompts, prompt)
		if len(prompts) == 1 {
			return `{"name": "Jane", "phone": "1", "summary": {"title": "S", "body": ""}, "workExperience": [], "education": [], "fullResumeText": ""}`, nil
		}
		return validResumeJSON, nil
	})

	resume, err := New(client, Options{RetryOnSchemaError: true}).GenerateResume(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", resume.Name)

	require.Len(t, prompts, 2)
	assert.NotContains(t, prompts[0], "did not match")
	assert.Contains(t, prompts[1], "did not match the required resume structure")
	assert.Contains(t, prompts[1], "- email: is required")
}

func TestGenerateResume_RetryExhausted(t *testing.T) {
	var calls atomic.Int32
	client := structured(func(string, *llm.Schema, llm.ModelTier) (string, error) {
		calls.Add(1)
		return `{"name": "   "}`, nil
	})

	_, err := New(client, Options{RetryOnSchemaError: true}).GenerateResume(context.Background(), input)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ContractResume, genErr.Contract)
	var schemaErr *schemas.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.True(t, schemaErr.Has("name"))
	assert.EqualValues(t, 2, calls.Load())
}

func TestOptions_TierOverride(t *testing.T) {
	client := structured(func(_ string, _ *llm.Schema, tier llm.ModelTier) (string, error) {
		assert.Equal(t, llm.TierStandard, tier)
		return `{"keywords": "Go"}`, nil
	})

	g := New(client, Options{Tiers: map[Contract]llm.ModelTier{ContractKeywords: llm.TierStandard}})
	_, err := g.AnalyzeKeywords(context.Background(), input)
	require.NoError(t, err)
}

func TestGenerationError_Message(t *testing.T) {
	err := &GenerationError{Contract: ContractResume, Message: "model call failed", Cause: errors.New("timeout")}
	assert.Equal(t, "resume generation failed: model call failed: timeout", err.Error())
	assert.Equal(t, "keywords generation failed: x", (&GenerationError{Contract: ContractKeywords, Message: "x"}).Error())
}
