package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

const promptFile = "generation.json"

// Options configures a Generator
type Options struct {
	// RetryOnSchemaError asks the model once more, listing the violated fields, when the
	// generated resume fails validation. The validator itself never retries.
	RetryOnSchemaError bool
	// Tiers overrides the model tier used per contract
	Tiers  map[Contract]llm.ModelTier
	Logger *slog.Logger
}

// DefaultTiers maps each contract to the model tier it needs
var DefaultTiers = map[Contract]llm.ModelTier{
	ContractKeywords:    llm.TierLite,
	ContractSuggestions: llm.TierStandard,
	ContractResume:      llm.TierAdvanced,
}

// Generator runs the prompt contracts against an LLM client. It holds no per-request
// state and is safe for concurrent use.
type Generator struct {
	client llm.Client
	opts   Options
	logger *slog.Logger
}

// New creates a Generator over client
func New(client llm.Client, opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, opts: opts, logger: logger}
}

func (g *Generator) tier(c Contract) llm.ModelTier {
	if t, ok := g.opts.Tiers[c]; ok {
		return t
	}
	return DefaultTiers[c]
}

// AnalyzeKeywords runs the keyword contract
func (g *Generator) AnalyzeKeywords(ctx context.Context, in types.TailorInput) (*types.KeywordAnalysis, error) {
	var out types.KeywordAnalysis
	if err := g.runText(ctx, ContractKeywords, "analyze-keywords", KeywordsSchema(), in, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Keywords) == "" {
		return nil, &GenerationError{Contract: ContractKeywords, Message: "model returned no keywords"}
	}
	return &out, nil
}

// SuggestEdits runs the suggestion contract
func (g *Generator) SuggestEdits(ctx context.Context, in types.TailorInput) (*types.EditSuggestions, error) {
	var out types.EditSuggestions
	if err := g.runText(ctx, ContractSuggestions, "suggest-edits", SuggestionsSchema(), in, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.SuggestedEdits) == "" {
		return nil, &GenerationError{Contract: ContractSuggestions, Message: "model returned no suggestions"}
	}
	return &out, nil
}

// GenerateResume runs the resume contract and returns a validated resume. Legacy output
// shapes are migrated before validation. When the output still fails validation the
// error wraps the *schemas.SchemaError.
func (g *Generator) GenerateResume(ctx context.Context, in types.TailorInput) (*types.Resume, error) {
	prompt, err := g.prompt(ContractResume, "generate-resume", in)
	if err != nil {
		return nil, err
	}

	attempts := 1
	if g.opts.RetryOnSchemaError {
		attempts = 2
	}

	var schemaErr *schemas.SchemaError
	for attempt := 1; attempt <= attempts; attempt++ {
		request := prompt
		if schemaErr != nil {
			request = retryPrompt(schemaErr) + prompt
		}

		start := time.Now()
		raw, err := g.client.GenerateStructured(ctx, request, ResumeSchema(), g.tier(ContractResume))
		if err != nil {
			return nil, &GenerationError{Contract: ContractResume, Message: "model call failed", Cause: err}
		}

		resume, err := ParseResume([]byte(llm.CleanJSONBlock(raw)))
		if err == nil {
			g.logger.Debug("contract completed",
				"contract", ContractResume,
				"attempt", attempt,
				"duration", time.Since(start))
			return resume, nil
		}
		if !errors.As(err, &schemaErr) {
			return nil, &GenerationError{Contract: ContractResume, Message: "could not validate model output", Cause: err}
		}
		g.logger.Warn("generated resume failed validation",
			"attempt", attempt,
			"fields", schemaErr.Fields())
	}

	return nil, &GenerationError{Contract: ContractResume, Message: "model output does not match the resume schema", Cause: schemaErr}
}

// ParseResume migrates legacy shapes and validates a generated resume document
func ParseResume(data []byte) (*types.Resume, error) {
	migrated, _ := schemas.MigrateJSON(data)
	return schemas.ValidateResumeJSON(migrated)
}

// runText runs a contract whose answer is a single-field JSON object
func (g *Generator) runText(ctx context.Context, c Contract, key string, schema *llm.Schema, in types.TailorInput, out any) error {
	prompt, err := g.prompt(c, key, in)
	if err != nil {
		return err
	}

	start := time.Now()
	raw, err := g.client.GenerateStructured(ctx, prompt, schema, g.tier(c))
	if err != nil {
		return &GenerationError{Contract: c, Message: "model call failed", Cause: err}
	}
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), out); err != nil {
		return &GenerationError{Contract: c, Message: "model response is not the expected JSON object", Cause: err}
	}

	g.logger.Debug("contract completed", "contract", c, "duration", time.Since(start))
	return nil
}

func (g *Generator) prompt(c Contract, key string, in types.TailorInput) (string, error) {
	if strings.TrimSpace(in.ResumeText) == "" || strings.TrimSpace(in.JobDescription) == "" {
		return "", &GenerationError{Contract: c, Message: "invalid input", Cause: ErrEmptyInput}
	}
	prompt, err := prompts.Render(promptFile, key, map[string]string{
		"ResumeText":     in.ResumeText,
		"JobDescription": in.JobDescription,
	})
	if err != nil {
		return "", &GenerationError{Contract: c, Message: "prompt unavailable", Cause: err}
	}
	return prompt, nil
}

func retryPrompt(schemaErr *schemas.SchemaError) string {
	var sb strings.Builder
	for _, fe := range schemaErr.Errors {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", fe.Field, fe.Message))
	}
	return prompts.Format(prompts.MustGet(promptFile, "generate-resume-retry"), map[string]string{
		"Violations": strings.TrimRight(sb.String(), "\n"),
	})
}
