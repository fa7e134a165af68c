package extract

import "testing"

func TestExtractAnswer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple marker", "Answer: Paris", "Paris"},
		{"marker mid-text", "The context says so.\nAnswer: Paris", "Paris"},
		{"extra whitespace", "Answer:    Paris  ", "Paris"},
		{"multiline answer", "Answer: Paris is the capital.\nIt is in France.", "Paris is the capital.\nIt is in France."},
		{"no marker passes through", "Paris", "Paris"},
		{"empty input", "", ""},
		{"marker only", "Answer:", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractAnswer(tt.in); got != tt.want {
				t.Errorf("ExtractAnswer(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractChatAnswer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"assistant marker", "\nAssistant: 42", "42"},
		{"ai marker", "\nAI: 42", "42"},
		{"nested assistant markers", "\nAssistant: first\nAssistant: second", "second"},
		{"no marker yields fallback", "plain text with no markers", ChatFallback},
		{"empty input yields fallback", "", ChatFallback},
		{"marker not at line start yields fallback", "Assistant: inline", ChatFallback},
		{"case sensitive", "\nassistant: lower", ChatFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractChatAnswer(tt.in); got != tt.want {
				t.Errorf("ExtractChatAnswer(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// The two patterns share mutable state: once the Assistant pattern has
// accepted text, a non-matching AI pattern reverts to that accepted
// text instead of the fallback. This mirrors the shipped behavior and
// must not be "fixed" silently.
func TestExtractChatAnswer_SecondPatternRevertsToFirstResult(t *testing.T) {
	got := ExtractChatAnswer("\nAssistant: the accepted text")
	if got != "the accepted text" {
		t.Fatalf("got %q, want the first pattern's accepted text", got)
	}

	// Both markers present: the Assistant pass strips through its own
	// marker, then the AI pass continues narrowing from that result.
	got = ExtractChatAnswer("\nAssistant: outer\nAI: inner")
	if got != "inner" {
		t.Fatalf("got %q, want %q", got, "inner")
	}
}
