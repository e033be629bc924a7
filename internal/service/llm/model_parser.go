package llm

import (
	"fmt"
	"strings"

	"promptlab/internal/domain/models/llm"
)

// ModelInfo contains parsed provider and model information
type ModelInfo struct {
	// Provider is empty when the model matches no known family
	Provider llm.ProviderKind
	Model    string
	// Explicit is true when the provider was named in the model string
	Explicit bool
}

// ParseModel extracts provider information from a model string
//
// Supported formats:
//   - "gemini-1.5-flash" → {Provider: "gemini", Model: "gemini-1.5-flash"}
//   - "claude-3-5-haiku-latest" → {Provider: "anthropic", Model: "claude-3-5-haiku-latest"}
//   - "openai/gpt-4o" → {Provider: "openai", Model: "gpt-4o", Explicit: true}
//   - "my-finetune" → {Provider: "", Model: "my-finetune"} (router falls back)
//
// A "/" only selects a provider when the part before it is a built-in
// provider kind; otherwise the whole string is the model name.
func ParseModel(modelStr string) (*ModelInfo, error) {
	modelStr = strings.TrimSpace(modelStr)
	if modelStr == "" {
		return nil, fmt.Errorf("model string cannot be empty")
	}

	if prefix, model, ok := strings.Cut(modelStr, "/"); ok {
		kind := llm.ProviderKind(strings.ToLower(prefix))
		if kind.Valid() {
			if model == "" {
				return nil, fmt.Errorf("model cannot be empty in model string: %s", modelStr)
			}
			return &ModelInfo{Provider: kind, Model: model, Explicit: true}, nil
		}
	}

	provider, _ := llm.GetProviderForModel(modelStr)
	return &ModelInfo{
		Provider: provider,
		Model:    modelStr,
	}, nil
}
