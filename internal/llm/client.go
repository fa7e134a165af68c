// Package llm wraps the model providers behind one synchronous
// generation interface. There is no retry, timeout or backpressure
// here: a request makes exactly one upstream call and reports its
// outcome to the caller.
package llm

import "context"

// Role of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a model prompt.
type Message struct {
	Role    Role
	Content string
}

// Options configures generation at client construction time. All
// tuning is explicit; clients never read process environment at call
// time.
type Options struct {
	MaxTokens   int     // maximum tokens to generate, default 1024
	Temperature float32 // sampling temperature, default 0.9
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.MaxTokens == 0 {
		out.MaxTokens = 1024
	}
	if out.Temperature == 0 {
		out.Temperature = 0.9
	}
	return out
}

// Client generates a completion for an ordered message list. A single
// user prompt is a one-element list.
type Client interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}
