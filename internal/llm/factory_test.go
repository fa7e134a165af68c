package llm

import "testing"

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProviderConfig
		wantErr bool
	}{
		{"openai", ProviderConfig{Provider: "openai", APIKey: "sk-test"}, false},
		{"openai with base url", ProviderConfig{Provider: "openai", APIKey: "sk-test", BaseURL: "http://localhost:8080/v1"}, false},
		{"anthropic", ProviderConfig{Provider: "anthropic", APIKey: "sk-ant-test"}, false},
		{"missing key", ProviderConfig{Provider: "openai"}, true},
		{"unknown provider", ProviderConfig{Provider: "mistral", APIKey: "k"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			if client == nil {
				t.Fatal("nil client")
			}
		})
	}
}
