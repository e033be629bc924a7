package llm

import "strings"

// ProviderKind is the closed set of built-in provider backends
type ProviderKind string

const (
	ProviderGemini    ProviderKind = "gemini"
	ProviderOpenAI    ProviderKind = "openai"
	ProviderAnthropic ProviderKind = "anthropic"
	ProviderLorem     ProviderKind = "lorem"
)

// AllProviders lists every ProviderKind in registration-preference order
var AllProviders = []ProviderKind{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderLorem}

func (k ProviderKind) String() string { return string(k) }

// Valid reports whether k is one of the built-in provider kinds
func (k ProviderKind) Valid() bool {
	for _, p := range AllProviders {
		if p == k {
			return true
		}
	}
	return false
}

// modelFamilies maps model-name prefixes to provider kinds
var modelFamilies = []struct {
	prefix   string
	provider ProviderKind
}{
	{"gemini-", ProviderGemini},
	{"gpt-", ProviderOpenAI},
	{"o1-", ProviderOpenAI},
	{"o3-", ProviderOpenAI},
	{"chatgpt-", ProviderOpenAI},
	{"claude-", ProviderAnthropic},
	{"lorem-", ProviderLorem},
}

// GetProviderForModel returns the provider for a given model name based on its prefix.
// Returns (provider, true) if a mapping is found, ("", false) if not.
func GetProviderForModel(model string) (ProviderKind, bool) {
	if model == "" {
		return "", false
	}

	modelLower := strings.ToLower(model)
	for _, family := range modelFamilies {
		if strings.HasPrefix(modelLower, family.prefix) {
			return family.provider, true
		}
	}

	return "", false
}
