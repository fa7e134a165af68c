package llm

import "fmt"

// ProviderConfig selects and configures a model provider. The zero
// value is invalid; callers populate it from application config.
type ProviderConfig struct {
	Provider    string // "openai" or "anthropic"
	APIKey      string
	Model       string
	BaseURL     string // optional, OpenAI-compatible endpoints only
	MaxTokens   int
	Temperature float32
}

// NewClient builds a Client from provider configuration.
func NewClient(cfg ProviderConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: api key is required", cfg.Provider)
	}

	opts := Options{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}

	switch cfg.Provider {
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return NewOpenAIClient(cfg.APIKey, model, cfg.BaseURL, opts), nil

	case "anthropic":
		model := cfg.Model
		if model == "" {
			model = "claude-3-5-sonnet-20241022"
		}
		return NewAnthropicClient(cfg.APIKey, model, opts), nil

	default:
		return nil, fmt.Errorf("unknown llm provider %q (must be openai or anthropic)", cfg.Provider)
	}
}
