package preparation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"promptlab/internal/domain"
	llmModels "promptlab/internal/domain/models/llm"
	llmSvc "promptlab/internal/domain/services/llm"
	llmService "promptlab/internal/service/llm"
)

// Orchestrator turns an ExecuteRequest into a PreparedRequest:
// validate, load history, enrich, build. It performs no writes.
type Orchestrator struct {
	history      llmSvc.HistoryService
	enricher     ContextEnricher
	defaultModel string
	logger       *slog.Logger
}

// NewOrchestrator creates a new preparation orchestrator
func NewOrchestrator(
	history llmSvc.HistoryService,
	enricher ContextEnricher,
	defaultModel string,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		history:      history,
		enricher:     enricher,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// Prepare validates the request and assembles the canonical request.
// History is only loaded when a conversation id was supplied.
func (o *Orchestrator) Prepare(ctx context.Context, req *llmSvc.ExecuteRequest) (*llmSvc.PreparedRequest, error) {
	if req == nil {
		return nil, domain.NewValidationError("request is required")
	}
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, domain.NewValidationError("caller identity is required")
	}

	provider, err := llmService.ParseProviderKind(req.Provider)
	if err != nil {
		return nil, err
	}

	model := o.defaultModel
	if req.Model != nil && strings.TrimSpace(*req.Model) != "" {
		model = strings.TrimSpace(*req.Model)
	}

	info, err := llmService.ParseModel(model)
	if err != nil {
		return nil, &domain.ConfigurationError{Message: fmt.Sprintf("no model configured: %v", err)}
	}
	if info.Explicit {
		if provider != "" && provider != info.Provider {
			return nil, domain.NewValidationError(
				"provider %q conflicts with model %q", provider, model)
		}
		provider = info.Provider
	}
	model = info.Model

	var history []llmModels.HistoryTurn
	if req.ConversationID != nil && *req.ConversationID != "" {
		history, err = o.history.LoadHistory(ctx, *req.ConversationID, req.UserID)
		if err != nil {
			return nil, err
		}
	}

	enriched, err := o.enricher.Enrich(ctx, req.Prompt, req.ContextFileIDs)
	if err != nil {
		return nil, fmt.Errorf("enrich prompt: %w", err)
	}

	canonical := Build(BuildInput{
		Prompt:      enriched.Text,
		System:      req.SystemPrompt,
		Model:       model,
		History:     history,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})

	o.logger.Debug("request prepared",
		"user_id", req.UserID,
		"model", model,
		"provider", provider,
		"history_turns", len(history),
		"files_used", enriched.FilesUsed,
	)

	return &llmSvc.PreparedRequest{
		Request:       canonical,
		ContextFileID: enriched.ContextFileID,
		History:       history,
		UserID:        req.UserID,
		Model:         model,
		Provider:      provider,
		OriginalText:  req.Prompt,
	}, nil
}
