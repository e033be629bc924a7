// Package gemini adapts Google's Generative Language API.
package gemini

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"promptlab/internal/capabilities"
	"promptlab/internal/domain/models/llm"
	domainllm "promptlab/internal/domain/services/llm"
	"promptlab/internal/service/llm/providers"
)

// DefaultModel is used for token counting when no model is configured
const DefaultModel = "gemini-1.5-flash"

// Config configures the Gemini adapter
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Retry      providers.RetryPolicy
	Rates      providers.RateTable
	// CountModel is counted when no routed model is given
	CountModel string
	Logger     *slog.Logger
}

// Adapter implements domainllm.Adapter for Gemini
type Adapter struct {
	client     *client
	retry      providers.RetryPolicy
	rates      providers.RateTable
	countModel string
	logger     *slog.Logger
}

var (
	_ domainllm.Adapter           = (*Adapter)(nil)
	_ domainllm.ModelTokenCounter = (*Adapter)(nil)
)

// NewAdapter creates a Gemini adapter
func NewAdapter(cfg Config) *Adapter {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	countModel := cfg.CountModel
	if countModel == "" {
		countModel = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{
		client: &client{
			apiKey:     cfg.APIKey,
			baseURL:    baseURL,
			httpClient: httpClient,
		},
		retry:      cfg.Retry,
		rates:      cfg.Rates,
		countModel: countModel,
		logger:     logger.With("provider", llm.ProviderGemini.String()),
	}
}

func (a *Adapter) Name() llm.ProviderKind {
	return llm.ProviderGemini
}

// Generate calls models/{model}:generateContent
func (a *Adapter) Generate(ctx context.Context, req *llm.CanonicalRequest) (*domainllm.GenerateResponse, error) {
	if req == nil {
		return nil, errors.New("gemini: nil request")
	}
	if a.client.apiKey == "" {
		return nil, errors.New("gemini: API key not configured")
	}

	body := buildRequest(req)
	start := time.Now()

	var out *generateResponse
	retry := a.retry
	retry.OnRetry = func(attempt int, delay time.Duration, err error) {
		a.logger.Warn("retrying generate", "model", req.Model, "attempt", attempt, "delay", delay, "error", err)
	}
	err := retry.Do(ctx, func(ctx context.Context) error {
		var callErr error
		out, callErr = a.client.generateContent(ctx, req.Model, body)
		return callErr
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.logStatus(req.Model, err)
		return providers.Failure(req.Model, start, err), nil
	}

	if len(out.Candidates) == 0 {
		a.logger.Error("reply has no candidates", "model", req.Model)
		return providers.Failure(req.Model, start, providers.ErrMalformedResponse), nil
	}

	candidate := out.Candidates[0]
	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}

	model := req.Model
	if out.ModelVersion != "" {
		model = out.ModelVersion
	}
	promptTokens := out.UsageMetadata.PromptTokenCount
	completionTokens := out.UsageMetadata.CandidatesTokenCount

	return &domainllm.GenerateResponse{
		Success:          true,
		Content:          text.String(),
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		Cost:             providers.CalculateCost(promptTokens, completionTokens, a.ratesFor(req.Model)),
		LatencyMs:        time.Since(start).Milliseconds(),
		FinishReason:     strings.ToLower(candidate.FinishReason),
	}, nil
}

// EstimateTokens counts text with the configured count model
func (a *Adapter) EstimateTokens(ctx context.Context, text string) (int, error) {
	return a.EstimateModelTokens(ctx, a.countModel, text)
}

// EstimateModelTokens uses the countTokens endpoint of model, falling back to
// the length heuristic when the call fails or exceeds the attempt timeout
func (a *Adapter) EstimateModelTokens(ctx context.Context, model, text string) (int, error) {
	if a.client.apiKey == "" {
		return providers.EstimateTokens(text), nil
	}
	if model == "" {
		model = a.countModel
	}

	var n int
	err := a.retry.Once(ctx, func(ctx context.Context) error {
		var callErr error
		n, callErr = a.client.countTokens(ctx, model, &countTokensRequest{
			Contents: []content{{Role: "user", Parts: []part{{Text: text}}}},
		})
		return callErr
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		a.logger.Warn("countTokens failed, using heuristic", "model", model, "error", err)
		return providers.EstimateTokens(text), nil
	}
	return n, nil
}

// IsAvailable lists one model
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	if a.client.apiKey == "" {
		return false
	}
	if err := a.retry.Once(ctx, a.client.listModels); err != nil {
		a.logger.Debug("availability check failed", "error", err)
		return false
	}
	return true
}

func (a *Adapter) ratesFor(model string) capabilities.Rates {
	if a.rates == nil {
		return capabilities.Rates{}
	}
	return a.rates.RatesFor(llm.ProviderGemini.String(), model)
}

func (a *Adapter) logStatus(model string, err error) {
	var status *providers.StatusError
	if errors.As(err, &status) {
		a.logger.Error("generate failed", "model", model, "status", status.StatusCode, "body", status.Body)
		return
	}
	a.logger.Error("generate failed", "model", model, "error", err)
}

// buildRequest maps the canonical request onto generateContent's schema.
// History turns become alternating user/model contents.
func buildRequest(req *llm.CanonicalRequest) *generateRequest {
	contents := make([]content, 0, len(req.History)*2+1)
	for _, turn := range req.History {
		contents = append(contents,
			content{Role: "user", Parts: []part{{Text: turn.User}}},
			content{Role: "model", Parts: []part{{Text: turn.Assistant}}},
		)
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: req.Prompt}}})

	body := &generateRequest{Contents: contents}
	if req.System != nil && *req.System != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: *req.System}}}
	}
	if req.MaxTokens != nil || req.Temperature != nil {
		body.GenerationConfig = &generationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		}
	}
	return body
}
