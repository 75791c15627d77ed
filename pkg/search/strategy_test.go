package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForMode(t *testing.T) {
	t.Parallel()

	for _, mode := range Modes {
		resolved, strategy := ForMode(string(mode))
		assert.Equal(t, mode, resolved)
		assert.NotNil(t, strategy)
	}

	resolved, _ := ForMode("")
	assert.Equal(t, ModeCombined, resolved)

	resolved, _ = ForMode("TITLE")
	assert.Equal(t, ModeCombined, resolved)
}

func TestMode_Label(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ISBN", ModeISBN.Label())
	assert.Equal(t, "All fields", ModeCombined.Label())
}

func TestBuildContainsPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"   ", ""},
		{"calc", "%calc%"},
		{"  calc  ", "%calc%"},
		{"100%", "%100!%%"},
		{"a_b", "%a!_b%"},
		{"wow!", "%wow!!%"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildContainsPattern(tt.input))
		})
	}
}

func TestSanitizeQuery_Truncates(t *testing.T) {
	t.Parallel()

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, SanitizeQuery(string(long)), maxQueryLength)
}
