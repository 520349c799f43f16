package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "single token",
			input:    []string{"tok-1"},
			expected: []string{"tok-1"},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  tok-1  ", "tok-2  ", "  tok-3"},
			expected: []string{"tok-1", "tok-2", "tok-3"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"a", "b", "a", "c", "b"},
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "drops blanks",
			input:    []string{"a", "", "  ", "b"},
			expected: []string{"a", "b"},
		},
		{
			name:     "trim then dedupe",
			input:    []string{"  a ", "b", "a", "", "  ", "b"},
			expected: []string{"a", "b"},
		},
		{
			name:     "case sensitive",
			input:    []string{"Tok", "tok", "TOK"},
			expected: []string{"Tok", "tok", "TOK"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
