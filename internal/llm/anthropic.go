package llm

import (
	"context"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

// AnthropicClient talks to the Anthropic messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	opts   Options
}

// NewAnthropicClient creates a messages client.
func NewAnthropicClient(apiKey, model string, opts Options) *AnthropicClient {
	return &AnthropicClient{
		client: anthropic.NewClient(apiKey),
		model:  model,
		opts:   opts.withDefaults(),
	}
}

// Generate implements Client. System messages become the request's
// system parts; Anthropic does not accept them inline in the message
// list.
func (c *AnthropicClient) Generate(ctx context.Context, messages []Message) (string, error) {
	var systemParts []anthropic.MessageSystemPart
	var anthropicMsgs []anthropic.Message

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			systemParts = append(systemParts, anthropic.MessageSystemPart{
				Type: "text",
				Text: msg.Content,
			})
		case RoleAssistant:
			anthropicMsgs = append(anthropicMsgs, anthropic.Message{
				Role:    anthropic.RoleAssistant,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(msg.Content)},
			})
		default:
			anthropicMsgs = append(anthropicMsgs, anthropic.Message{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(msg.Content)},
			})
		}
	}

	temperature := c.opts.Temperature
	req := anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		Messages:    anthropicMsgs,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: &temperature,
	}
	if len(systemParts) > 0 {
		req.MultiSystem = systemParts
	}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text += *block.Text
		}
	}
	return text, nil
}
