package capabilities

import "gopkg.in/yaml.v3"

// Rates are USD prices per 1,000 tokens
type Rates struct {
	InputPer1K  float64 `yaml:"input_per_1k" json:"input_per_1k"`
	OutputPer1K float64 `yaml:"output_per_1k" json:"output_per_1k"`
}

// ModelCapabilities represents catalog metadata for a specific model
type ModelCapabilities struct {
	// Model identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	// Limits
	ContextWindow int `yaml:"context_window" json:"context_window"`
	MaxOutput     int `yaml:"max_output" json:"max_output"`

	Rates `yaml:",inline" json:"rates"`
}

// ProviderCapabilities represents all models for a provider
type ProviderCapabilities struct {
	Provider    string              `yaml:"provider" json:"provider"`
	DisplayName string              `yaml:"display_name" json:"display_name"`
	Models      []ModelCapabilities `yaml:"-" json:"models"` // Ordered slice, populated by custom unmarshaler

	// DefaultRates apply to models of this provider missing from the catalog
	DefaultRates Rates `yaml:"default_rates" json:"default_rates"`
}

// UnmarshalYAML implements custom YAML unmarshaling to preserve model order from YAML file
func (p *ProviderCapabilities) UnmarshalYAML(node *yaml.Node) error {
	type plain struct {
		Provider     string                       `yaml:"provider"`
		DisplayName  string                       `yaml:"display_name"`
		DefaultRates Rates                        `yaml:"default_rates"`
		Models       map[string]ModelCapabilities `yaml:"models"`
	}
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}

	p.Provider = decoded.Provider
	p.DisplayName = decoded.DisplayName
	p.DefaultRates = decoded.DefaultRates

	// Extract model keys in YAML order and build the slice
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "models" {
			continue
		}
		modelsNode := node.Content[i+1]
		// modelsNode.Content alternates: key, value, key, value...
		for j := 0; j+1 < len(modelsNode.Content); j += 2 {
			modelID := modelsNode.Content[j].Value
			if model, ok := decoded.Models[modelID]; ok {
				model.ID = modelID
				p.Models = append(p.Models, model)
			}
		}
		break
	}

	return nil
}
