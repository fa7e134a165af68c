package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataType != "pdf" {
		t.Errorf("DataType = %q, want pdf", cfg.DataType)
	}
	if cfg.ChunkSize != 300 {
		t.Errorf("ChunkSize = %d, want 300", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 0 {
		t.Errorf("ChunkOverlap = %d, want 0", cfg.ChunkOverlap)
	}
	if cfg.MaxHistoryLength != 6 {
		t.Errorf("MaxHistoryLength = %d, want 6", cfg.MaxHistoryLength)
	}
	if cfg.RetrieverK != 10 {
		t.Errorf("RetrieverK = %d, want 10", cfg.RetrieverK)
	}
	if cfg.Addr() != "0.0.0.0:8000" {
		t.Errorf("Addr = %q, want 0.0.0.0:8000", cfg.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_TYPE", "html")
	t.Setenv("INDEX_BACKEND", "sqlite")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataType != "html" {
		t.Errorf("DataType = %q, want html", cfg.DataType)
	}
	if cfg.IndexBackend != "sqlite" {
		t.Errorf("IndexBackend = %q, want sqlite", cfg.IndexBackend)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.ProviderAPIKey() != "sk-ant-test" {
		t.Errorf("ProviderAPIKey = %q, want the anthropic key", cfg.ProviderAPIKey())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad data type", "DATA_TYPE", "markdown"},
		{"bad backend", "INDEX_BACKEND", "redis"},
		{"bad provider", "LLM_PROVIDER", "mistral"},
		{"zero chunk size", "CHUNK_SIZE", "0"},
		{"overlap too large", "CHUNK_OVERLAP", "300"},
		{"bad port", "HTTP_PORT", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestEmbeddingKeyFallsBackToOpenAI(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EmbeddingKey() != "sk-openai" {
		t.Errorf("EmbeddingKey = %q, want the openai key", cfg.EmbeddingKey())
	}

	t.Setenv("EMBEDDING_API_KEY", "sk-embed")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EmbeddingKey() != "sk-embed" {
		t.Errorf("EmbeddingKey = %q, want the dedicated key", cfg.EmbeddingKey())
	}
}
