package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeNotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text passes through",
			input:    "left rear tire pressure low",
			expected: "left rear tire pressure low",
		},
		{
			name:     "control bytes stripped",
			input:    "line one\nline two\ttabbed\x00null\x1besc",
			expected: "line oneline twotabbednullesc",
		},
		{
			name:     "empty input stays empty",
			input:    "",
			expected: "",
		},
		{
			name:     "exactly 500 characters kept intact",
			input:    strings.Repeat("a", 500),
			expected: strings.Repeat("a", 500),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeNotes(tt.input))
		})
	}

	t.Run("overlong notes truncated to exactly 500", func(t *testing.T) {
		got := SanitizeNotes(strings.Repeat("x", 501))
		assert.Len(t, got, 500)
	})

	t.Run("truncation counts characters, not bytes", func(t *testing.T) {
		got := SanitizeNotes(strings.Repeat("ü", 600))
		assert.Equal(t, 500, len([]rune(got)))
	})

	t.Run("control bytes stripped before truncation", func(t *testing.T) {
		input := strings.Repeat("\x01", 100) + strings.Repeat("b", 600)
		got := SanitizeNotes(input)
		assert.Len(t, got, 500)
		assert.NotContains(t, got, "\x01")
	})
}
