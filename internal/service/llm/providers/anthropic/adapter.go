// Package anthropic adapts the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"promptlab/internal/capabilities"
	"promptlab/internal/domain/models/llm"
	domainllm "promptlab/internal/domain/services/llm"
	"promptlab/internal/service/llm/providers"
)

// DefaultCountModel is used for token counting when no model is configured
const DefaultCountModel = "claude-3-5-haiku-latest"

// Config configures the Anthropic adapter
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Retry      providers.RetryPolicy
	Rates      providers.RateTable
	CountModel string
	Logger     *slog.Logger
}

// Adapter implements domainllm.Adapter for Claude models.
// SDK retries are disabled; the shared retry policy decides.
type Adapter struct {
	client     *anthropic.Client
	hasKey     bool
	retry      providers.RetryPolicy
	rates      providers.RateTable
	countModel string
	logger     *slog.Logger
}

var (
	_ domainllm.Adapter           = (*Adapter)(nil)
	_ domainllm.ModelTokenCounter = (*Adapter)(nil)
)

// NewAdapter creates an Anthropic adapter
func NewAdapter(cfg Config) *Adapter {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	client := anthropic.NewClient(opts...)

	countModel := cfg.CountModel
	if countModel == "" {
		countModel = DefaultCountModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{
		client:     &client,
		hasKey:     cfg.APIKey != "",
		retry:      cfg.Retry,
		rates:      cfg.Rates,
		countModel: countModel,
		logger:     logger.With("provider", llm.ProviderAnthropic.String()),
	}
}

func (a *Adapter) Name() llm.ProviderKind {
	return llm.ProviderAnthropic
}

// Generate calls the Messages API
func (a *Adapter) Generate(ctx context.Context, req *llm.CanonicalRequest) (*domainllm.GenerateResponse, error) {
	if req == nil {
		return nil, errors.New("anthropic: nil request")
	}
	if !a.hasKey {
		return nil, errors.New("anthropic: API key not configured")
	}

	params := buildParams(req)
	start := time.Now()

	var message *anthropic.Message
	retry := a.retry
	retry.OnRetry = func(attempt int, delay time.Duration, err error) {
		a.logger.Warn("retrying message", "model", req.Model, "attempt", attempt, "delay", delay, "error", err)
	}
	err := retry.Do(ctx, func(ctx context.Context) error {
		msg, callErr := a.client.Messages.New(ctx, params)
		if callErr != nil {
			return classify(callErr)
		}
		message = msg
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.logger.Error("message failed", "model", req.Model, "error", err)
		return providers.Failure(req.Model, start, err), nil
	}

	text, ok := responseText(message)
	if !ok {
		a.logger.Error("reply has no text content", "model", req.Model, "stop_reason", message.StopReason)
		return providers.Failure(req.Model, start, providers.ErrMalformedResponse), nil
	}

	model := req.Model
	if message.Model != "" {
		model = string(message.Model)
	}
	promptTokens := int(message.Usage.InputTokens)
	completionTokens := int(message.Usage.OutputTokens)

	return &domainllm.GenerateResponse{
		Success:          true,
		Content:          text,
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		Cost:             providers.CalculateCost(promptTokens, completionTokens, a.ratesFor(req.Model)),
		LatencyMs:        time.Since(start).Milliseconds(),
		FinishReason:     string(message.StopReason),
	}, nil
}

// EstimateTokens counts text with the configured count model
func (a *Adapter) EstimateTokens(ctx context.Context, text string) (int, error) {
	return a.EstimateModelTokens(ctx, a.countModel, text)
}

// EstimateModelTokens uses the count_tokens endpoint for model, falling back
// to the length heuristic when it fails or exceeds the attempt timeout
func (a *Adapter) EstimateModelTokens(ctx context.Context, model, text string) (int, error) {
	if !a.hasKey {
		return providers.EstimateTokens(text), nil
	}
	if model == "" {
		model = a.countModel
	}

	var n int
	err := a.retry.Once(ctx, func(ctx context.Context) error {
		count, callErr := a.client.Messages.CountTokens(ctx, anthropic.MessageCountTokensParams{
			Model:    anthropic.Model(model),
			Messages: []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(text))},
		})
		if callErr != nil {
			return callErr
		}
		n = int(count.InputTokens)
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		a.logger.Warn("count_tokens failed, using heuristic", "model", model, "error", err)
		return providers.EstimateTokens(text), nil
	}
	return n, nil
}

// IsAvailable lists one model
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	if !a.hasKey {
		return false
	}
	err := a.retry.Once(ctx, func(ctx context.Context) error {
		_, listErr := a.client.Models.List(ctx, anthropic.ModelListParams{Limit: anthropic.Int(1)})
		return listErr
	})
	if err != nil {
		a.logger.Debug("availability check failed", "error", err)
		return false
	}
	return true
}

func (a *Adapter) ratesFor(model string) capabilities.Rates {
	if a.rates == nil {
		return capabilities.Rates{}
	}
	return a.rates.RatesFor(llm.ProviderAnthropic.String(), model)
}

// classify maps SDK errors onto the retry policy's vocabulary
func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &providers.StatusError{StatusCode: apiErr.StatusCode, Body: apiErr.RawJSON()}
	}
	return err
}
