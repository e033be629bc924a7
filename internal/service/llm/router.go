package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"promptlab/internal/domain"
	"promptlab/internal/domain/models/llm"
	domainllm "promptlab/internal/domain/services/llm"
)

// ProviderCatalog supplies human-readable provider names.
// *capabilities.Registry implements it.
type ProviderCatalog interface {
	DisplayName(provider string) string
}

// ProviderStatus is one row of the availability listing
type ProviderStatus struct {
	Provider    llm.ProviderKind `json:"provider"`
	DisplayName string           `json:"display_name"`
	Available   bool             `json:"available"`
}

// ProviderRouter selects an adapter for a model and runs the call.
// Adapters are registered at startup; lookups are safe for concurrent use.
type ProviderRouter struct {
	adapters map[llm.ProviderKind]domainllm.Adapter
	order    []llm.ProviderKind // registration order, for fallback
	catalog  ProviderCatalog
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewProviderRouter creates an empty router
func NewProviderRouter(catalog ProviderCatalog, logger *slog.Logger) *ProviderRouter {
	return &ProviderRouter{
		adapters: make(map[llm.ProviderKind]domainllm.Adapter),
		catalog:  catalog,
		logger:   logger,
	}
}

// Register adds an adapter; registering a kind twice replaces the adapter
// but keeps its original fallback position
func (r *ProviderRouter) Register(adapter domainllm.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := adapter.Name()
	if _, exists := r.adapters[kind]; !exists {
		r.order = append(r.order, kind)
	}
	r.adapters[kind] = adapter
}

// Providers returns registered provider kinds in registration order
func (r *ProviderRouter) Providers() []llm.ProviderKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]llm.ProviderKind, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the adapter for an explicitly requested provider.
// An unregistered provider is a client fault.
func (r *ProviderRouter) Get(kind llm.ProviderKind) (domainllm.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[kind]
	if !ok {
		return nil, domain.NewValidationError("provider %q is not configured", kind)
	}
	return adapter, nil
}

// Route returns the adapter for model by its family prefix.
// Models outside every known family go to the first registered adapter.
func (r *ProviderRouter) Route(model string) (domainllm.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return nil, &domain.ConfigurationError{
			Message: fmt.Sprintf("no provider adapter registered for model %q", model),
		}
	}

	if kind, ok := llm.GetProviderForModel(model); ok {
		if adapter, registered := r.adapters[kind]; registered {
			return adapter, nil
		}
		r.logger.Warn("provider for model not registered, using fallback",
			"model", model,
			"provider", kind,
			"fallback", r.order[0],
		)
	}

	return r.adapters[r.order[0]], nil
}

// Select picks the adapter for a call: the explicit provider when one was
// named, otherwise the model's family
func (r *ProviderRouter) Select(provider llm.ProviderKind, model string) (domainllm.Adapter, error) {
	if provider != "" {
		return r.Get(provider)
	}
	return r.Route(model)
}

// Execute routes the prepared request and calls the adapter. Adapter errors
// propagate; an unsuccessful response is returned as data.
func (r *ProviderRouter) Execute(ctx context.Context, prepared *domainllm.PreparedRequest) (*domainllm.ExecutionResult, error) {
	if prepared == nil || prepared.Request == nil {
		return nil, errors.New("execute: nil prepared request")
	}

	adapter, err := r.Select(prepared.Provider, prepared.Model)
	if err != nil {
		return nil, err
	}

	kind := adapter.Name()
	r.logger.Debug("executing prompt",
		"provider", kind,
		"model", prepared.Model,
		"history_turns", len(prepared.History),
	)

	resp, err := adapter.Generate(ctx, prepared.Request)
	if err != nil {
		return nil, fmt.Errorf("%s generate: %w", kind, err)
	}

	model := prepared.Model
	if resp.Model != "" {
		model = resp.Model
	}

	return &domainllm.ExecutionResult{
		Provider:      kind,
		DisplayName:   r.displayName(kind),
		Model:         model,
		Response:      resp,
		ExecutedAt:    time.Now().UTC(),
		ContextFileID: prepared.ContextFileID,
	}, nil
}

// Availability probes every registered adapter concurrently, each bounded by timeout
func (r *ProviderRouter) Availability(ctx context.Context, timeout time.Duration) []ProviderStatus {
	r.mu.RLock()
	kinds := make([]llm.ProviderKind, len(r.order))
	copy(kinds, r.order)
	adapters := make([]domainllm.Adapter, len(kinds))
	for i, kind := range kinds {
		adapters[i] = r.adapters[kind]
	}
	r.mu.RUnlock()

	statuses := make([]ProviderStatus, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range adapters {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			statuses[i] = ProviderStatus{
				Provider:    kinds[i],
				DisplayName: r.displayName(kinds[i]),
				Available:   adapter.IsAvailable(checkCtx),
			}
			return nil
		})
	}
	_ = g.Wait()

	return statuses
}

func (r *ProviderRouter) displayName(kind llm.ProviderKind) string {
	if r.catalog == nil {
		return kind.String()
	}
	return r.catalog.DisplayName(kind.String())
}
