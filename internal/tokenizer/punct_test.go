package tokenizer

import (
	"strings"
	"testing"
)

func TestFindPunctuation(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantIndex int
	}{
		{"Empty", "", -1},
		// "Hello world..." -> Space at 5.
		{"NoPunctuation", "Hello world this is a test", 5},
		{"StartPunctuation", "!Hello", 0},
		{"EndPunctuation", "Hello!", 5},
		{"MiddlePunctuation", "Hello, world", 5},
		{"Brackets", "[CLS]", 0},
		{"ComplexChars", "The quick-brown fox.", 3},
		{"LongStringNoPunct", strings.Repeat("a", 100), -1},
		{"LongStringWithPunctAtEnd", strings.Repeat("a", 100) + "!", 100},
		{"NonASCIIIgnored", "¡Hola", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindPunctuation([]byte(tt.input))
			if got != tt.wantIndex {
				t.Errorf("FindPunctuation(%q) = %d, want %d", tt.input, got, tt.wantIndex)
			}
		})
	}
}

func TestSplitASCII(t *testing.T) {
	got := splitASCII("The cat sat on the mat because it was tired.")
	want := []string{"The", "cat", "sat", "on", "the", "mat", "because", "it", "was", "tired", "."}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitASCII = %q, want %q", got, want)
	}
}

func BenchmarkFindPunctuation(b *testing.B) {
	input := []byte(strings.Repeat("a", 64) + "!")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FindPunctuation(input)
	}
}
