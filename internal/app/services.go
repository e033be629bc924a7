package app

import (
	"log/slog"

	"promptlab/internal/capabilities"
	"promptlab/internal/config"
	serviceLLM "promptlab/internal/service/llm"
	"promptlab/internal/service/llm/conversation"
	"promptlab/internal/service/llm/execution"
	"promptlab/internal/service/llm/persistence"
	"promptlab/internal/service/llm/preparation"
	"promptlab/internal/service/ratelimit"
	"promptlab/internal/storage"
)

// Services is the assembled prompt pipeline
type Services struct {
	Catalog  *capabilities.Registry
	Router   *serviceLLM.ProviderRouter
	Limiter  *ratelimit.Limiter
	History  *conversation.HistoryLoader
	Executor *execution.Coordinator
}

// SetupServices builds the catalog, provider adapters and every pipeline
// stage on top of store
func SetupServices(cfg *config.Config, store *Store, logger *slog.Logger) (*Services, error) {
	catalog, err := capabilities.NewRegistry()
	if err != nil {
		return nil, err
	}

	router, err := serviceLLM.SetupProviders(cfg, catalog, logger)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		Enabled:   cfg.RateLimitEnabled,
		PerMinute: cfg.RateLimitPerMinute,
		PerHour:   cfg.RateLimitPerHour,
	})

	history := conversation.NewHistoryLoader(store.Conversations, store.Prompts, logger)
	enricher := preparation.NewEnricher(store.ContextFiles, storage.NewLocalFileStore(cfg.FileStorageDir), logger)
	orchestrator := preparation.NewOrchestrator(history, enricher, cfg.DefaultModel, logger)
	saver := persistence.NewService(store.Conversations, store.Prompts, store.Responses, store.TxManager, logger)

	return &Services{
		Catalog:  catalog,
		Router:   router,
		Limiter:  limiter,
		History:  history,
		Executor: execution.NewCoordinator(orchestrator, limiter, router, saver, logger),
	}, nil
}
