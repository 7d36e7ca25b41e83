package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes invalid characters",
			input:    `file<>:"/\|?*name`,
			expected: "filename",
		},
		{
			name:     "replaces newlines and tabs with spaces",
			input:    "file\nname\twith\rspaces",
			expected: "file name with spaces",
		},
		{
			name:     "collapses multiple spaces",
			input:    "file   name  with    spaces",
			expected: "file name with spaces",
		},
		{
			name:     "returns Untitled for only special chars",
			input:    "<>:?*",
			expected: "Untitled",
		},
		{
			name:     "truncates long names",
			input:    strings.Repeat("a", 250),
			expected: strings.Repeat("a", 200),
		},
		{
			name:     "handles unicode",
			input:    "Der Hase und der Igel",
			expected: "Der Hase und der Igel",
		},
		{
			name:     "level and book name",
			input:    `Fables: "The Fox" / Part 1`,
			expected: "Fables The Fox Part 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_DoesNotSplitRunes(t *testing.T) {
	result := SanitizeFilename("a" + strings.Repeat("ü", 150))

	assert.True(t, utf8.ValidString(result))
	assert.LessOrEqual(t, len(result), 200)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"The Fox & the Grapes":  "the-fox-the-grapes",
		"  Beginner  ":          "beginner",
		"Città di Roma":         "città-di-roma",
		"---":                   "",
		"Book 2: The Return!!!": "book-2-the-return",
	}

	for input, expected := range tests {
		assert.Equal(t, expected, Slugify(input), input)
	}
}
