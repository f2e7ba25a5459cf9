package gateway

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "short title unchanged",
			input:    "Custody dispute in Texas",
			expected: "Custody dispute in Texas",
		},
		{
			name:     "exactly fifty runes unchanged",
			input:    strings.Repeat("a", 50),
			expected: strings.Repeat("a", 50),
		},
		{
			name:     "long title truncated with ellipsis",
			input:    strings.Repeat("a", 60),
			expected: strings.Repeat("a", 47) + "...",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateTitle(tt.input))
		})
	}
}

func TestTruncateTitle_MultibyteBoundary(t *testing.T) {
	// Every rune is two bytes, so a byte-indexed cut would split one.
	input := strings.Repeat("é", 60)

	got := truncateTitle(input)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 50, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}
