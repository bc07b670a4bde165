// Package chat implements the chat session reducer: one call folds a new user message
// into a caller-held transcript and decides whether the model produced a finished resume.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Options configures a Reducer
type Options struct {
	Tier   llm.ModelTier
	Logger *slog.Logger
}

// StepResult is the outcome of one chat turn
type StepResult struct {
	Response   string           `json:"response"`
	ResumeData *types.Resume    `json:"resumeData,omitempty"`
	History    []types.ChatTurn `json:"history"`
	// Validation is set when the model offered resume data that failed validation.
	// The data is withheld and the turn counts as still gathering information.
	Validation *schemas.SchemaError `json:"-"`
}

// Complete reports whether the turn produced a validated resume
func (r *StepResult) Complete() bool {
	return r.ResumeData != nil
}

// Reducer drives chat turns against an LLM client. It keeps no session state; the
// caller resends the full transcript on every call.
type Reducer struct {
	client llm.Client
	tier   llm.ModelTier
	logger *slog.Logger
}

// NewReducer creates a Reducer over client
func NewReducer(client llm.Client, opts Options) *Reducer {
	tier := opts.Tier
	if tier == "" {
		tier = llm.TierStandard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reducer{client: client, tier: tier, logger: logger}
}

// ResponseSchema is the JSON shape every chat reply must take
func ResponseSchema() *llm.Schema {
	resumeData := generation.ResumeSchema()
	resumeData.Nullable = true
	resumeData.Description = "only present once the user has confirmed the resume is finished"
	return llm.Object(map[string]*llm.Schema{
		"response":   llm.String("message shown to the user"),
		"resumeData": resumeData,
	}, "response")
}

type modelReply struct {
	Response   *string         `json:"response"`
	ResumeData json.RawMessage `json:"resumeData"`
}

// Step sends message after history and returns the reply with the extended transcript.
// history is never modified.
func (r *Reducer) Step(ctx context.Context, history []types.ChatTurn, message string) (*StepResult, error) {
	if err := ValidateHistory(history); err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	system, err := prompts.Get("chat.json", "chat-system")
	if err != nil {
		return nil, &generation.GenerationError{Contract: generation.ContractChat, Message: "prompt unavailable", Cause: err}
	}

	turns := make([]llm.Turn, 0, len(history))
	for _, turn := range history {
		turns = append(turns, llm.Turn{Role: llm.Role(turn.Role), Text: turn.Content})
	}

	raw, err := r.client.Chat(ctx, system, turns, message, ResponseSchema(), r.tier)
	if err != nil {
		return nil, &generation.GenerationError{Contract: generation.ContractChat, Message: "model call failed", Cause: err}
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &generation.GenerationError{Contract: generation.ContractChat, Message: "model returned an empty reply"}
	}

	result := &StepResult{}
	reply, ok := parseReply(raw)
	if !ok {
		result.Response = strings.TrimSpace(raw)
	} else {
		result.Response = *reply.Response
		if err := r.acceptResume(reply.ResumeData, result); err != nil {
			return nil, err
		}
	}

	result.History = make([]types.ChatTurn, 0, len(history)+2)
	result.History = append(result.History, history...)
	result.History = append(result.History,
		types.ChatTurn{Role: types.RoleUser, Content: message},
		types.ChatTurn{Role: types.RoleModel, Content: result.Response},
	)
	return result, nil
}

// acceptResume validates offered resume data and records it on result when valid
func (r *Reducer) acceptResume(data json.RawMessage, result *StepResult) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	resume, err := generation.ParseResume(data)
	if err == nil {
		result.ResumeData = resume
		return nil
	}

	var schemaErr *schemas.SchemaError
	if !errors.As(err, &schemaErr) {
		return &generation.GenerationError{Contract: generation.ContractChat, Message: "could not validate resume data", Cause: err}
	}
	r.logger.Warn("chat resume data failed validation", "fields", schemaErr.Fields())
	result.Validation = schemaErr
	return nil
}

// parseReply decodes a structured reply. A reply without a response field is not one.
func parseReply(raw string) (modelReply, bool) {
	var reply modelReply
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &reply); err != nil {
		return reply, false
	}
	return reply, reply.Response != nil
}

// ValidateHistory checks that every turn has a supported role
func ValidateHistory(history []types.ChatTurn) error {
	for i, turn := range history {
		if !turn.Role.Valid() {
			return &HistoryError{Index: i, Message: fmt.Sprintf("unsupported role %q", turn.Role)}
		}
	}
	return nil
}
