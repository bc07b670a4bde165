package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "only whitespace", input: "   \n  \n\t ", expected: ""},
		{name: "collapses spaces", input: "Line    with \t multiple    spaces", expected: "Line with multiple spaces"},
		{name: "line endings", input: "Line 1\r\nLine 2\rLine 3\nLine 4", expected: "Line 1\nLine 2\nLine 3\nLine 4"},
		{name: "one blank line between paragraphs", input: "Line 1\n\n\n\n\nLine 2", expected: "Line 1\n\nLine 2"},
		{name: "leading and trailing blank lines", input: "\n\n  Jane Doe  \n\n", expected: "Jane Doe"},
		{name: "headings lose indentation", input: "  # Title\n## Subtitle   \nContent here", expected: "# Title\n## Subtitle\nContent here"},
		{name: "dash and star bullets kept", input: "- Item 1\n-   Item 2\n* Item 3", expected: "- Item 1\n- Item 2\n* Item 3"},
		{
			name:     "bullet glyphs normalized",
			input:    "Experience\n• Led a team of 5\n  ·   Shipped   v2\n▪ Mentored\n\uf0b7 Hired",
			expected: "Experience\n- Led a team of 5\n  - Shipped v2\n- Mentored\n- Hired",
		},
		{name: "inner indentation kept", input: "Title\n    Indented line\n  Less indented", expected: "Title\n    Indented line\n  Less indented"},
		{name: "unicode spaces", input: "Senior\u00a0Go\u2009Engineer", expected: "Senior Go Engineer"},
		{name: "zero-width and controls dropped", input: "\ufeffKuber\u200bnetes\x00 expert\u00ad", expected: "Kubernetes expert"},
		{name: "special characters", input: "Test with émojis 🚀 and spéciàl chàracters", expected: "Test with émojis 🚀 and spéciàl chàracters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	input := "Jane   Doe\n\n\n• Built   billing\r\n  · Led team\n\n\n\n# Skills"
	once := CleanText(input)

	assert.Equal(t, once, CleanText(once))
}

func TestIsBulletLine(t *testing.T) {
	tests := []struct {
		line     string
		expected bool
	}{
		{"- item", true},
		{"* item", true},
		{"  • item", true},
		{"· item", true},
		{"● item", true},
		{"-item", false},
		{"2019 - 2021", false},
		{"plain", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.expected, isBulletLine(tt.line))
		})
	}
}
