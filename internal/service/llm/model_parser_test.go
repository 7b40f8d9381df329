package llm

import (
	"testing"
)

func TestParseModel(t *testing.T) {
	tests := []struct {
		name         string
		modelStr     string
		wantProvider string
		wantModel    string
		wantErr      bool
	}{
		{
			name:         "gpt-4o-mini default",
			modelStr:     "gpt-4o-mini",
			wantProvider: "openai",
			wantModel:    "gpt-4o-mini",
		},
		{
			name:         "claude-haiku with version",
			modelStr:     "claude-haiku-4-5",
			wantProvider: "anthropic",
			wantModel:    "claude-haiku-4-5",
		},
		{
			name:         "explicit provider for compatible endpoint",
			modelStr:     "openai/llama-3.1-8b-instant",
			wantProvider: "openai",
			wantModel:    "llama-3.1-8b-instant",
		},
		{
			name:         "explicit provider keeps nested path",
			modelStr:     "openai/meta/llama-3",
			wantProvider: "openai",
			wantModel:    "meta/llama-3",
		},
		{
			name:         "lorem-fast model",
			modelStr:     "lorem-fast",
			wantProvider: "lorem",
			wantModel:    "lorem-fast",
		},
		{
			name:     "empty string",
			modelStr: "",
			wantErr:  true,
		},
		{
			name:     "unknown model prefix",
			modelStr: "unknown-model-123",
			wantErr:  true,
		},
		{
			name:     "provider without model",
			modelStr: "anthropic/",
			wantErr:  true,
		},
		{
			name:     "model without provider",
			modelStr: "/claude-haiku-4-5",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseModel(tt.modelStr)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseModel() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("ParseModel() unexpected error: %v", err)
				return
			}

			if got.Provider != tt.wantProvider {
				t.Errorf("ParseModel() provider = %v, want %v", got.Provider, tt.wantProvider)
			}

			if got.Model != tt.wantModel {
				t.Errorf("ParseModel() model = %v, want %v", got.Model, tt.wantModel)
			}
		})
	}
}

func TestInferProvider(t *testing.T) {
	tests := []struct {
		name         string
		model        string
		wantProvider string
	}{
		{"claude lowercase", "claude-haiku-4-5", "anthropic"},
		{"CLAUDE uppercase", "CLAUDE-HAIKU-4-5", "anthropic"},
		{"gpt lowercase", "gpt-4o", "openai"},
		{"GPT uppercase", "GPT-4", "openai"},
		{"o3 model", "o3-mini", "openai"},
		{"lorem-fast model", "lorem-fast", "lorem"},
		{"LOREM uppercase", "LOREM-FAST", "lorem"},
		{"gemini is not wired", "gemini-pro", ""},
		{"unknown", "unknown-123", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inferProvider(tt.model)
			if got != tt.wantProvider {
				t.Errorf("inferProvider() = %v, want %v", got, tt.wantProvider)
			}
		})
	}
}
