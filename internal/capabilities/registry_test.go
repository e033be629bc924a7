package capabilities

import "testing"

func TestNewRegistry_LoadsEmbeddedCatalogs(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	for _, provider := range builtinProviders {
		models, err := registry.ListProviderModels(provider)
		if err != nil {
			t.Errorf("ListProviderModels(%q) error = %v", provider, err)
			continue
		}
		if len(models) == 0 {
			t.Errorf("provider %q has no models", provider)
		}
	}
}

func TestListProviderModels_PreservesYAMLOrder(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	models, err := registry.ListProviderModels("gemini")
	if err != nil {
		t.Fatalf("ListProviderModels() error = %v", err)
	}

	want := []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-2.0-flash"}
	if len(models) != len(want) {
		t.Fatalf("got %d models, want %d", len(models), len(want))
	}
	for i, id := range want {
		if models[i].ID != id {
			t.Errorf("models[%d].ID = %q, want %q", i, models[i].ID, id)
		}
	}
}

func TestGetModelCapabilities(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	tests := []struct {
		name     string
		provider string
		model    string
		wantID   string
		wantErr  bool
	}{
		{"exact match", "gemini", "gemini-1.5-flash", "gemini-1.5-flash", false},
		{"versioned name resolves to family", "gemini", "gemini-1.5-flash-002", "gemini-1.5-flash", false},
		{"longest prefix wins", "openai", "gpt-4o-mini-2024-07-18", "gpt-4o-mini", false},
		{"unknown model", "openai", "davinci-002", "", true},
		{"unknown provider", "mistral", "mistral-large", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.GetModelCapabilities(tt.provider, tt.model)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", got.ID, tt.wantID)
			}
		})
	}
}

func TestRatesFor_FallsBackToProviderDefaults(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	doc := []byte(`
provider: custom
display_name: Custom Backend
default_rates:
  input_per_1k: 0.001
  output_per_1k: 0.002
models:
  custom-small:
    display_name: Custom Small
    input_per_1k: 0.00025
    output_per_1k: 0.0005
`)
	if err := registry.Load("custom", doc); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	rates := registry.RatesFor("custom", "custom-small")
	if rates.InputPer1K != 0.00025 || rates.OutputPer1K != 0.0005 {
		t.Errorf("catalog rates = %+v", rates)
	}

	rates = registry.RatesFor("custom", "custom-large")
	if rates.InputPer1K != 0.001 || rates.OutputPer1K != 0.002 {
		t.Errorf("default rates = %+v", rates)
	}

	if rates := registry.RatesFor("nobody", "x"); rates != (Rates{}) {
		t.Errorf("unknown provider rates = %+v, want zero", rates)
	}

	if name := registry.DisplayName("custom"); name != "Custom Backend" {
		t.Errorf("DisplayName() = %q", name)
	}
}
