package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"promptlab/internal/capabilities"
	"promptlab/internal/httputil"
	llmService "promptlab/internal/service/llm"
)

// AvailabilityChecker probes the registered provider adapters
type AvailabilityChecker interface {
	Availability(ctx context.Context, timeout time.Duration) []llmService.ProviderStatus
}

// ModelCatalog lists catalog models for a provider
type ModelCatalog interface {
	ListProviderModels(provider string) ([]capabilities.ModelCapabilities, error)
}

// ProvidersHandler lists configured providers with live availability and
// their catalog models
type ProvidersHandler struct {
	checker      AvailabilityChecker
	catalog      ModelCatalog
	checkTimeout time.Duration
	logger       *slog.Logger
}

// NewProvidersHandler creates a new providers handler
func NewProvidersHandler(checker AvailabilityChecker, catalog ModelCatalog, checkTimeout time.Duration, logger *slog.Logger) *ProvidersHandler {
	return &ProvidersHandler{
		checker:      checker,
		catalog:      catalog,
		checkTimeout: checkTimeout,
		logger:       logger,
	}
}

// ProviderResponse represents a provider with its models
type ProviderResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Available bool            `json:"available"`
	Models    []ModelResponse `json:"models"`
}

// ModelResponse represents one catalog model
type ModelResponse struct {
	ID            string  `json:"id"`
	DisplayName   string  `json:"display_name"`
	ContextWindow int     `json:"context_window"`
	MaxOutput     int     `json:"max_output"`
	InputPer1K    float64 `json:"input_per_1k"`
	OutputPer1K   float64 `json:"output_per_1k"`
}

// ListProviders returns every registered provider in fallback order
// GET /api/providers
func (h *ProvidersHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	statuses := h.checker.Availability(r.Context(), h.checkTimeout)

	providers := make([]ProviderResponse, 0, len(statuses))
	for _, status := range statuses {
		provider := ProviderResponse{
			ID:        status.Provider.String(),
			Name:      status.DisplayName,
			Available: status.Available,
			Models:    []ModelResponse{},
		}

		models, err := h.catalog.ListProviderModels(status.Provider.String())
		if err != nil {
			h.logger.Debug("no catalog entry for provider", "provider", status.Provider)
		}
		for _, m := range models {
			provider.Models = append(provider.Models, ModelResponse{
				ID:            m.ID,
				DisplayName:   m.DisplayName,
				ContextWindow: m.ContextWindow,
				MaxOutput:     m.MaxOutput,
				InputPer1K:    m.InputPer1K,
				OutputPer1K:   m.OutputPer1K,
			})
		}
		providers = append(providers, provider)
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"providers": providers,
	})
}
