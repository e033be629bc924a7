package llm

import (
	"testing"

	"promptlab/internal/domain/models/llm"
)

func TestParseModel(t *testing.T) {
	tests := []struct {
		name         string
		modelStr     string
		wantProvider llm.ProviderKind
		wantModel    string
		wantExplicit bool
		wantErr      bool
	}{
		{
			name:         "gemini flash",
			modelStr:     "gemini-1.5-flash",
			wantProvider: llm.ProviderGemini,
			wantModel:    "gemini-1.5-flash",
		},
		{
			name:         "claude with full version",
			modelStr:     "claude-3-5-sonnet-20241022",
			wantProvider: llm.ProviderAnthropic,
			wantModel:    "claude-3-5-sonnet-20241022",
		},
		{
			name:         "gpt model",
			modelStr:     "gpt-4o-mini",
			wantProvider: llm.ProviderOpenAI,
			wantModel:    "gpt-4o-mini",
		},
		{
			name:         "o1 model",
			modelStr:     "o1-mini",
			wantProvider: llm.ProviderOpenAI,
			wantModel:    "o1-mini",
		},
		{
			name:         "uppercase prefix",
			modelStr:     "GPT-4o",
			wantProvider: llm.ProviderOpenAI,
			wantModel:    "GPT-4o",
		},
		{
			name:         "lorem-fast model",
			modelStr:     "lorem-fast",
			wantProvider: llm.ProviderLorem,
			wantModel:    "lorem-fast",
		},
		{
			name:         "explicit provider",
			modelStr:     "openai/gpt-4o",
			wantProvider: llm.ProviderOpenAI,
			wantModel:    "gpt-4o",
			wantExplicit: true,
		},
		{
			name:      "slash without known provider is a model name",
			modelStr:  "models/custom",
			wantModel: "models/custom",
		},
		{
			name:      "unknown model prefix",
			modelStr:  "unknown-model-123",
			wantModel: "unknown-model-123",
		},
		{
			name:     "explicit provider without model",
			modelStr: "gemini/",
			wantErr:  true,
		},
		{
			name:     "empty string",
			modelStr: "  ",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseModel(tt.modelStr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseModel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Provider != tt.wantProvider {
				t.Errorf("Provider = %q, want %q", got.Provider, tt.wantProvider)
			}
			if got.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", got.Model, tt.wantModel)
			}
			if got.Explicit != tt.wantExplicit {
				t.Errorf("Explicit = %v, want %v", got.Explicit, tt.wantExplicit)
			}
		})
	}
}
