// Package openai adapts the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	openaisdk "github.com/sashabaranov/go-openai"

	"promptlab/internal/capabilities"
	"promptlab/internal/domain/models/llm"
	domainllm "promptlab/internal/domain/services/llm"
	"promptlab/internal/service/llm/providers"
)

// fallbackEncoding is used for models tiktoken does not know
const fallbackEncoding = "cl100k_base"

// Config configures the OpenAI adapter
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Retry      providers.RetryPolicy
	Rates      providers.RateTable
	// EncodingModel selects the tokenizer used by EstimateTokens
	EncodingModel string
	Logger        *slog.Logger
}

// Adapter implements domainllm.Adapter on top of go-openai.
// The SDK performs no retries of its own, so the shared policy is the only one.
type Adapter struct {
	client        *openaisdk.Client
	hasKey        bool
	retry         providers.RetryPolicy
	rates         providers.RateTable
	encodingModel string
	logger        *slog.Logger

	encOnce sync.Once
	enc     *tiktoken.Tiktoken
}

var _ domainllm.Adapter = (*Adapter)(nil)

// NewAdapter creates an OpenAI adapter
func NewAdapter(cfg Config) *Adapter {
	sdkConfig := openaisdk.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		sdkConfig.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		sdkConfig.HTTPClient = cfg.HTTPClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{
		client:        openaisdk.NewClientWithConfig(sdkConfig),
		hasKey:        cfg.APIKey != "",
		retry:         cfg.Retry,
		rates:         cfg.Rates,
		encodingModel: cfg.EncodingModel,
		logger:        logger.With("provider", llm.ProviderOpenAI.String()),
	}
}

func (a *Adapter) Name() llm.ProviderKind {
	return llm.ProviderOpenAI
}

// Generate calls the chat completions endpoint
func (a *Adapter) Generate(ctx context.Context, req *llm.CanonicalRequest) (*domainllm.GenerateResponse, error) {
	if req == nil {
		return nil, errors.New("openai: nil request")
	}
	if !a.hasKey {
		return nil, errors.New("openai: API key not configured")
	}

	chatReq := buildRequest(req)
	start := time.Now()

	var out openaisdk.ChatCompletionResponse
	retry := a.retry
	retry.OnRetry = func(attempt int, delay time.Duration, err error) {
		a.logger.Warn("retrying chat completion", "model", req.Model, "attempt", attempt, "delay", delay, "error", err)
	}
	err := retry.Do(ctx, func(ctx context.Context) error {
		resp, callErr := a.client.CreateChatCompletion(ctx, chatReq)
		if callErr != nil {
			return classify(callErr)
		}
		out = resp
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.logger.Error("chat completion failed", "model", req.Model, "error", err)
		return providers.Failure(req.Model, start, err), nil
	}

	if len(out.Choices) == 0 {
		a.logger.Error("reply has no choices", "model", req.Model)
		return providers.Failure(req.Model, start, providers.ErrMalformedResponse), nil
	}

	model := req.Model
	if out.Model != "" {
		model = out.Model
	}
	promptTokens := out.Usage.PromptTokens
	completionTokens := out.Usage.CompletionTokens

	return &domainllm.GenerateResponse{
		Success:          true,
		Content:          out.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		Cost:             providers.CalculateCost(promptTokens, completionTokens, a.ratesFor(req.Model)),
		LatencyMs:        time.Since(start).Milliseconds(),
		FinishReason:     string(out.Choices[0].FinishReason),
	}, nil
}

// EstimateTokens counts tokens locally with tiktoken. OpenAI has no
// counting endpoint; if the encoding cannot be loaded the length heuristic is used.
func (a *Adapter) EstimateTokens(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if enc := a.encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil)), nil
	}
	return providers.EstimateTokens(text), nil
}

// IsAvailable lists models
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	if !a.hasKey {
		return false
	}
	err := a.retry.Once(ctx, func(ctx context.Context) error {
		_, listErr := a.client.ListModels(ctx)
		return listErr
	})
	if err != nil {
		a.logger.Debug("availability check failed", "error", err)
		return false
	}
	return true
}

func (a *Adapter) encoding() *tiktoken.Tiktoken {
	a.encOnce.Do(func() {
		var (
			enc *tiktoken.Tiktoken
			err error
		)
		if a.encodingModel != "" {
			enc, err = tiktoken.EncodingForModel(a.encodingModel)
		}
		if enc == nil {
			enc, err = tiktoken.GetEncoding(fallbackEncoding)
		}
		if err != nil {
			a.logger.Warn("tokenizer unavailable, using heuristic", "error", err)
			return
		}
		a.enc = enc
	})
	return a.enc
}

func (a *Adapter) ratesFor(model string) capabilities.Rates {
	if a.rates == nil {
		return capabilities.Rates{}
	}
	return a.rates.RatesFor(llm.ProviderOpenAI.String(), model)
}

// classify maps SDK errors onto the retry policy's vocabulary
func classify(err error) error {
	var apiErr *openaisdk.APIError
	if errors.As(err, &apiErr) {
		return &providers.StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openaisdk.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &providers.StatusError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return err
}

func buildRequest(req *llm.CanonicalRequest) openaisdk.ChatCompletionRequest {
	messages := make([]openaisdk.ChatCompletionMessage, 0, len(req.History)*2+2)
	if req.System != nil && *req.System != "" {
		messages = append(messages, openaisdk.ChatCompletionMessage{
			Role:    openaisdk.ChatMessageRoleSystem,
			Content: *req.System,
		})
	}
	for _, turn := range req.History {
		messages = append(messages,
			openaisdk.ChatCompletionMessage{Role: openaisdk.ChatMessageRoleUser, Content: turn.User},
			openaisdk.ChatCompletionMessage{Role: openaisdk.ChatMessageRoleAssistant, Content: turn.Assistant},
		)
	}
	messages = append(messages, openaisdk.ChatCompletionMessage{
		Role:    openaisdk.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openaisdk.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	}
	if req.MaxTokens != nil {
		chatReq.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
	}
	return chatReq
}
