package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "json code block", input: "```json\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "generic code block", input: "```\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "code block with language", input: "```javascript\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "plain JSON", input: `{"key": "value"}`, expected: `{"key": "value"}`},
		{name: "preamble", input: "Here is the resume:\n{\"name\": \"Jane\"}", expected: `{"name": "Jane"}`},
		{name: "preamble before array", input: "Items:\n[\"a\", \"b\"]", expected: `["a", "b"]`},
		{name: "trailing text", input: "{\"k\": 1}\n\nLet me know!", expected: `{"k": 1}`},
		{name: "escaped quotes", input: `Result: {"m": "He said \"hi\" }"}`, expected: `{"m": "He said \"hi\" }"}`},
		{name: "no JSON", input: "  just words  ", expected: "just words"},
		{name: "unbalanced", input: `{"open": true`, expected: `{"open": true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a": {"b": [1, 2]}}`, extractJSONObject(`{"a": {"b": [1, 2]}} tail`))
	assert.Equal(t, `{"t": "Hello {name}!"}`, extractJSONObject(`{"t": "Hello {name}!"}`))
	assert.Equal(t, "", extractJSONObject(""))
	assert.Equal(t, "", extractJSONObject("not json"))
}

func TestExtractJSONArray(t *testing.T) {
	assert.Equal(t, `[[1, 2], [3]]`, extractJSONArray(`[[1, 2], [3]] extra`))
	assert.Equal(t, `[{"id": "]"}]`, extractJSONArray(`[{"id": "]"}]`))
	assert.Equal(t, "", extractJSONArray("not array"))
}
