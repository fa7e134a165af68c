// Package config loads service configuration from the environment.
// A .env file in the working directory is read first when present,
// then real environment variables take precedence.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds the full service configuration.
type Config struct {
	// Document loading
	DataDir       string `env:"DATA_DIR" envDefault:"./docs"`
	DataType      string `env:"DATA_TYPE" envDefault:"pdf"` // pdf or html
	ChunkSize     int    `env:"CHUNK_SIZE" envDefault:"300"`
	ChunkOverlap  int    `env:"CHUNK_OVERLAP" envDefault:"0"`
	LoaderWorkers int    `env:"LOADER_WORKERS" envDefault:"4"`
	WatchEnabled  bool   `env:"WATCH_ENABLED" envDefault:"false"`

	// Index
	IndexBackend         string `env:"INDEX_BACKEND" envDefault:"memory"` // memory or sqlite
	IndexPath            string `env:"INDEX_PATH" envDefault:"./data/chunks.db"`
	RetrieverK           int    `env:"RETRIEVER_K" envDefault:"10"`
	EmbeddingModel       string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingAPIKey      string `env:"EMBEDDING_API_KEY"`
	EmbeddingConcurrency int    `env:"EMBEDDING_CONCURRENCY" envDefault:"4"`

	// Chat history
	HistoryDir       string `env:"HISTORY_DIR" envDefault:"./chat_histories"`
	MaxHistoryLength int    `env:"MAX_HISTORY_LENGTH" envDefault:"6"`

	// Model provider
	LLMProvider     string  `env:"LLM_PROVIDER" envDefault:"openai"` // openai or anthropic
	LLMModel        string  `env:"LLM_MODEL"`
	OpenAIAPIKey    string  `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string  `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string  `env:"ANTHROPIC_API_KEY"`
	Temperature     float32 `env:"TEMPERATURE" envDefault:"0.9"`
	MaxTokens       int     `env:"MAX_TOKENS" envDefault:"1024"`

	// HTTP server
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"HTTP_PORT" envDefault:"8000"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from .env (if present) and the
// environment, then validates it.
func Load() (*Config, error) {
	// Missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DataType {
	case "pdf", "html":
	default:
		return fmt.Errorf("DATA_TYPE must be pdf or html, got %q", c.DataType)
	}

	switch c.IndexBackend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("INDEX_BACKEND must be memory or sqlite, got %q", c.IndexBackend)
	}

	switch c.LLMProvider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or anthropic, got %q", c.LLMProvider)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be a valid port, got %d", c.Port)
	}
	return nil
}

// ProviderAPIKey returns the API key for the configured provider.
func (c *Config) ProviderAPIKey() string {
	if c.LLMProvider == "anthropic" {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

// EmbeddingKey returns the embeddings API key, falling back to the
// OpenAI key when no separate one is set.
func (c *Config) EmbeddingKey() string {
	if c.EmbeddingAPIKey != "" {
		return c.EmbeddingAPIKey
	}
	return c.OpenAIAPIKey
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
