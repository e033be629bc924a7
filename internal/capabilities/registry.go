package capabilities

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// builtinProviders are loaded from the embedded catalog files
var builtinProviders = []string{"gemini", "openai", "anthropic", "lorem"}

// Registry is the model catalog: display names, limits and per-1K token rates
type Registry struct {
	providers map[string]*ProviderCapabilities
	mu        sync.RWMutex
}

// NewRegistry creates a new capability registry and loads embedded YAML files
func NewRegistry() (*Registry, error) {
	r := &Registry{
		providers: make(map[string]*ProviderCapabilities),
	}

	for _, provider := range builtinProviders {
		data, err := configFiles.ReadFile(fmt.Sprintf("config/%s.yaml", provider))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s catalog: %w", provider, err)
		}
		if err := r.Load(provider, data); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Load parses a provider catalog document and registers (or replaces) it
func (r *Registry) Load(provider string, data []byte) error {
	var providerCaps ProviderCapabilities
	if err := yaml.Unmarshal(data, &providerCaps); err != nil {
		return fmt.Errorf("failed to unmarshal %s catalog: %w", provider, err)
	}
	if providerCaps.Provider == "" {
		providerCaps.Provider = provider
	}

	r.mu.Lock()
	r.providers[provider] = &providerCaps
	r.mu.Unlock()

	return nil
}

// GetModelCapabilities returns capabilities for a specific model.
// Versioned names ("gemini-1.5-flash-002") resolve to the longest catalog
// ID they start with.
func (r *Registry) GetModelCapabilities(provider, model string) (*ModelCapabilities, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providerCaps, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	var best *ModelCapabilities
	for i := range providerCaps.Models {
		m := &providerCaps.Models[i]
		if m.ID == model {
			return m, nil
		}
		if strings.HasPrefix(model, m.ID) && (best == nil || len(m.ID) > len(best.ID)) {
			best = m
		}
	}
	if best != nil {
		return best, nil
	}

	return nil, fmt.Errorf("unknown model %s for provider %s", model, provider)
}

// RatesFor returns the token rates for a model, falling back to the
// provider's default rates for models missing from the catalog
func (r *Registry) RatesFor(provider, model string) Rates {
	if m, err := r.GetModelCapabilities(provider, model); err == nil {
		return m.Rates
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if providerCaps, ok := r.providers[provider]; ok {
		return providerCaps.DefaultRates
	}
	return Rates{}
}

// DisplayName returns the provider's human-readable name
func (r *Registry) DisplayName(provider string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if providerCaps, ok := r.providers[provider]; ok && providerCaps.DisplayName != "" {
		return providerCaps.DisplayName
	}
	return provider
}

// ListProviderModels returns all models for a provider (ordered as defined in YAML)
func (r *Registry) ListProviderModels(provider string) ([]ModelCapabilities, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providerCaps, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	return providerCaps.Models, nil
}
