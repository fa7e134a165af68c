package llm

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAIClient talks to the OpenAI chat completions API, or to any
// OpenAI-compatible endpoint via a base URL override.
type OpenAIClient struct {
	client *openai.Client
	model  string
	opts   Options
}

// NewOpenAIClient creates a chat client. baseURL may be empty for the
// public API.
func NewOpenAIClient(apiKey, model, baseURL string, opts Options) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
		opts:   opts.withDefaults(),
	}
}

// Generate implements Client.
func (c *OpenAIClient) Generate(ctx context.Context, messages []Message) (string, error) {
	openaiMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		openaiMsgs = append(openaiMsgs, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	temperature := c.opts.Temperature
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    openaiMsgs,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: &temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
