// Package extract post-processes raw model output into clean answer
// strings. Models prompted with "Answer:" or chat role markers tend to
// echo those markers back; the parsers here strip them.
package extract

import (
	"regexp"
	"strings"
)

// ChatFallback is returned by ExtractChatAnswer when no role marker is
// found anywhere in the model output.
const ChatFallback = "Sorry, I am not sure how to help with that."

// answerPattern matches the document-QA marker. (?s) lets the capture
// run across newlines.
var answerPattern = regexp.MustCompile(`(?s)Answer:\s*(.*)`)

// chatPatterns are tried in order; matching is case-sensitive and the
// marker must start on a fresh line.
var chatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)\nAssistant:(.*)`),
	regexp.MustCompile(`(?s)\nAI:(.*)`),
}

// ExtractAnswer returns the text after the first "Answer:" marker,
// trimmed. Output without the marker passes through unchanged; a
// missing marker is not an error.
func ExtractAnswer(text string) string {
	m := answerPattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	return strings.TrimSpace(m[1])
}

// ExtractChatAnswer strips leading "Assistant:" and "AI:" role markers
// from chat output. Each pattern is applied recursively, narrowing to
// the text after the innermost marker. When neither pattern matches at
// all the fixed fallback string is returned instead of the raw text.
//
// Quirk kept on purpose: the patterns share mutable state, so when the
// first pattern matches and the second does not, the result reverts to
// the first pattern's accepted text rather than the fallback. Changing
// this needs product sign-off; see the regression tests.
func ExtractChatAnswer(text string) string {
	input := text
	fallback := ChatFallback
	output := fallback

	for _, pattern := range chatPatterns {
		output = recursiveExtract(input, pattern, fallback)
		if output != fallback {
			input = output
			fallback = output
		}
	}
	return output
}

// recursiveExtract keeps re-applying the pattern to its own capture
// until it stops matching, returning the innermost accepted text, or
// fallback when the first application already fails.
func recursiveExtract(text string, pattern *regexp.Regexp, fallback string) string {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return fallback
	}
	inner := strings.TrimSpace(m[1])
	return recursiveExtract(inner, pattern, inner)
}
