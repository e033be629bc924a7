package llm

import (
	"errors"
	"fmt"
	"log/slog"

	"promptlab/internal/capabilities"
	"promptlab/internal/config"
	"promptlab/internal/domain/models/llm"
)

// SetupProviders builds every configured adapter and registers it with a router.
// Providers without credentials are skipped with a warning; a server with
// no providers still starts, and execution reports a configuration error.
func SetupProviders(cfg *config.Config, catalog *capabilities.Registry, logger *slog.Logger) (*ProviderRouter, error) {
	factory := NewProviderFactory(cfg, catalog, logger)
	router := NewProviderRouter(catalog, logger)

	for _, kind := range llm.AllProviders {
		adapter, err := factory.Create(kind)
		if err != nil {
			if errors.Is(err, ErrProviderDisabled) {
				logger.Warn("provider not available", "name", kind, "reason", err)
				continue
			}
			return nil, fmt.Errorf("create provider %s: %w", kind, err)
		}

		router.Register(adapter)
		logger.Info("provider available", "name", kind, "display_name", catalog.DisplayName(kind.String()))
	}

	if len(router.Providers()) == 0 {
		logger.Warn("no LLM providers configured; prompt execution will fail")
	}

	return router, nil
}
