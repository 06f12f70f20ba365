package strings

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short string unchanged", "Exited(1)", 20, "Exited(1)"},
		{"exact length unchanged", "timeout", 7, "timeout"},
		{"long string cut", "rcc task script failed with code 3", 15, "rcc task scr..."},
		{"stderr lines joined", "line one\n\tline two\r\n", 40, "line one line two"},
		{"multibyte runes kept whole", "ünïcödé output", 6, "ünï..."},
		{"tiny limit clamped", "abcdef", 1, "a..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxLen); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
			}
		})
	}
}
