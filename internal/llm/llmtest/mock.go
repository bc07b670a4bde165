// Package llmtest provides a scriptable llm.Client for tests of packages that call a model.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/resume-tailor/internal/llm"
)

// ErrNotScripted is returned by MockClient methods that have no function set
var ErrNotScripted = errors.New("llmtest: call not scripted")

// Call records one request made to a MockClient
type Call struct {
	Method  string
	Prompt  string
	System  string
	History []llm.Turn
	Schema  *llm.Schema
	Tier    llm.ModelTier
}

// MockClient implements llm.Client for testing. Unset functions return ErrNotScripted.
// It is safe for concurrent use.
type MockClient struct {
	GenerateContentFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc       func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateStructuredFunc func(ctx context.Context, prompt string, schema *llm.Schema, tier llm.ModelTier) (string, error)
	ChatFunc               func(ctx context.Context, system string, history []llm.Turn, message string, schema *llm.Schema, tier llm.ModelTier) (string, error)

	mu     sync.Mutex
	calls  []Call
	closed bool
}

var _ llm.Client = (*MockClient)(nil)

func (m *MockClient) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// Calls returns a copy of the recorded calls in arrival order
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Closed reports whether Close was called
func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GenerateContent implements llm.Client
func (m *MockClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.record(Call{Method: "GenerateContent", Prompt: prompt, Tier: tier})
	if m.GenerateContentFunc == nil {
		return "", ErrNotScripted
	}
	return m.GenerateContentFunc(ctx, prompt, tier)
}

// GenerateJSON implements llm.Client
func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.record(Call{Method: "GenerateJSON", Prompt: prompt, Tier: tier})
	if m.GenerateJSONFunc == nil {
		return "", ErrNotScripted
	}
	return m.GenerateJSONFunc(ctx, prompt, tier)
}

// GenerateStructured implements llm.Client
func (m *MockClient) GenerateStructured(ctx context.Context, prompt string, schema *llm.Schema, tier llm.ModelTier) (string, error) {
	m.record(Call{Method: "GenerateStructured", Prompt: prompt, Schema: schema, Tier: tier})
	if m.GenerateStructuredFunc == nil {
		return "", ErrNotScripted
	}
	return m.GenerateStructuredFunc(ctx, prompt, schema, tier)
}

// Chat implements llm.Client
func (m *MockClient) Chat(ctx context.Context, system string, history []llm.Turn, message string, schema *llm.Schema, tier llm.ModelTier) (string, error) {
	m.record(Call{
		Method:  "Chat",
		Prompt:  message,
		System:  system,
		History: append([]llm.Turn(nil), history...),
		Schema:  schema,
		Tier:    tier,
	})
	if m.ChatFunc == nil {
		return "", ErrNotScripted
	}
	return m.ChatFunc(ctx, system, history, message, schema, tier)
}

// GetModel implements llm.Client
func (m *MockClient) GetModel(tier llm.ModelTier) string {
	return "mock-" + string(tier)
}

// Close implements llm.Client
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
