// Package execution runs one prompt end to end: prepare, rate check,
// estimate, route, persist.
package execution

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"promptlab/internal/domain"
	llmModels "promptlab/internal/domain/models/llm"
	llmSvc "promptlab/internal/domain/services/llm"
	"promptlab/internal/service/llm/persistence"
	"promptlab/internal/service/llm/providers"
	"promptlab/internal/service/ratelimit"
)

// Preparer builds the canonical request
type Preparer interface {
	Prepare(ctx context.Context, req *llmSvc.ExecuteRequest) (*llmSvc.PreparedRequest, error)
}

// Router selects and calls a provider adapter
type Router interface {
	Select(provider llmModels.ProviderKind, model string) (llmSvc.Adapter, error)
	Execute(ctx context.Context, prepared *llmSvc.PreparedRequest) (*llmSvc.ExecutionResult, error)
}

// ExchangeSaver stores a completed exchange
type ExchangeSaver interface {
	SaveExchange(ctx context.Context, in *persistence.SaveExchangeInput) (*persistence.SaveExchangeResult, error)
}

// Coordinator implements llmSvc.ExecutionService
type Coordinator struct {
	preparer Preparer
	limiter  *ratelimit.Limiter
	router   Router
	saver    ExchangeSaver
	logger   *slog.Logger
	now      func() time.Time
}

// NewCoordinator creates a new execution coordinator
func NewCoordinator(
	preparer Preparer,
	limiter *ratelimit.Limiter,
	router Router,
	saver ExchangeSaver,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		preparer: preparer,
		limiter:  limiter,
		router:   router,
		saver:    saver,
		logger:   logger,
		now:      time.Now,
	}
}

var _ llmSvc.ExecutionService = (*Coordinator)(nil)

// Execute runs the stages strictly in order. A rejected rate check, a
// failed provider call or a failed write leaves nothing persisted.
func (c *Coordinator) Execute(ctx context.Context, req *llmSvc.ExecuteRequest) (*llmSvc.ExecuteResult, error) {
	start := c.now()

	prepared, err := c.preparer.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if !c.limiter.AdmitAndRecord(prepared.UserID) {
		c.logger.Warn("rate limit exceeded", "user_id", prepared.UserID)
		return nil, &domain.RateLimitError{
			Key:        prepared.UserID,
			Remaining:  c.limiter.Remaining(prepared.UserID),
			RetryAfter: c.limiter.RetryAfter(prepared.UserID),
		}
	}

	estimated := c.estimateTokens(ctx, prepared)

	result, err := c.router.Execute(ctx, prepared)
	if err != nil {
		return nil, err
	}

	resp := result.Response
	if resp == nil || !resp.Success {
		msg := "empty response"
		if resp != nil && resp.Error != "" {
			msg = resp.Error
		}
		c.logger.Error("provider call failed",
			"provider", result.Provider,
			"model", result.Model,
			"error", msg,
		)
		return nil, &domain.ProviderError{
			Provider: result.Provider.String(),
			Model:    result.Model,
			Message:  msg,
		}
	}

	latency := c.now().Sub(start).Milliseconds()

	saved, err := c.saver.SaveExchange(ctx, &persistence.SaveExchangeInput{
		UserID:          prepared.UserID,
		ConversationID:  req.ConversationID,
		Prompt:          prepared.OriginalText,
		SystemPrompt:    prepared.Request.System,
		ContextFileID:   result.ContextFileID,
		EstimatedTokens: estimated,
		Provider:        result.Provider.String(),
		Model:           result.Model,
		Content:         resp.Content,
		ActualTokens:    actualTokens(resp),
		TokensUsed:      resp.CompletionTokens,
		Cost:            resp.Cost,
		LatencyMs:       latency,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("prompt executed",
		"user_id", prepared.UserID,
		"conversation_id", saved.ConversationID,
		"provider", result.Provider,
		"model", result.Model,
		"input_tokens", resp.PromptTokens,
		"output_tokens", resp.CompletionTokens,
		"cost", resp.Cost,
		"latency_ms", latency,
	)

	return &llmSvc.ExecuteResult{
		PromptID:            saved.PromptID,
		ResponseID:          saved.ResponseID,
		ConversationID:      saved.ConversationID,
		ConversationCreated: saved.Created,
		Content:             resp.Content,
		InputTokens:         resp.PromptTokens,
		OutputTokens:        resp.CompletionTokens,
		Cost:                resp.Cost,
		LatencyMs:           latency,
		Model:               result.Model,
		Provider:            result.Provider.String(),
		CreatedAt:           saved.CreatedAt,
	}, nil
}

// estimateTokens counts the enriched prompt with the routed adapter,
// falling back to the length heuristic
func (c *Coordinator) estimateTokens(ctx context.Context, prepared *llmSvc.PreparedRequest) int {
	text := prepared.Request.Prompt

	adapter, err := c.router.Select(prepared.Provider, prepared.Model)
	if err != nil {
		return providers.EstimateTokens(text)
	}

	var n int
	if counter, ok := adapter.(llmSvc.ModelTokenCounter); ok {
		n, err = counter.EstimateModelTokens(ctx, prepared.Request.Model, text)
	} else {
		n, err = adapter.EstimateTokens(ctx, text)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.Warn("token estimate failed, using heuristic",
				"provider", adapter.Name(),
				"error", err,
			)
		}
		return providers.EstimateTokens(text)
	}
	return n
}

func actualTokens(resp *llmSvc.GenerateResponse) *int {
	if resp.PromptTokens <= 0 {
		return nil
	}
	n := resp.PromptTokens
	return &n
}
