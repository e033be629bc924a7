package llm

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"promptlab/internal/config"
	"promptlab/internal/domain/models/llm"
	domainllm "promptlab/internal/domain/services/llm"
	"promptlab/internal/service/llm/providers"
	"promptlab/internal/service/llm/providers/anthropic"
	"promptlab/internal/service/llm/providers/gemini"
	"promptlab/internal/service/llm/providers/lorem"
	"promptlab/internal/service/llm/providers/openai"
)

// ErrProviderDisabled is returned for a provider turned off by configuration
// (missing credential, or lorem outside dev)
var ErrProviderDisabled = errors.New("provider disabled")

// ProviderFactory creates adapter instances from configuration
type ProviderFactory struct {
	config     *config.Config
	rates      providers.RateTable
	httpClient *http.Client
	logger     *slog.Logger
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config, rates providers.RateTable, logger *slog.Logger) *ProviderFactory {
	return &ProviderFactory{
		config:     cfg,
		rates:      rates,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Create returns the adapter for kind
//
// Supported providers:
//   - "gemini" - Google Gemini via the Generative Language API
//   - "openai" - OpenAI chat completions
//   - "anthropic" - Claude models via the Messages API
//   - "lorem" - Mock provider for testing (no API key required)
func (f *ProviderFactory) Create(kind llm.ProviderKind) (domainllm.Adapter, error) {
	switch kind {
	case llm.ProviderGemini:
		return f.createGemini()
	case llm.ProviderOpenAI:
		return f.createOpenAI()
	case llm.ProviderAnthropic:
		return f.createAnthropic()
	case llm.ProviderLorem:
		return f.createLorem()
	default:
		return nil, fmt.Errorf("unsupported provider: %s", kind)
	}
}

func (f *ProviderFactory) retryPolicy() providers.RetryPolicy {
	return providers.NewRetryPolicy(f.config.ProviderMaxRetry, f.config.ProviderTimeout)
}

func (f *ProviderFactory) createGemini() (domainllm.Adapter, error) {
	if f.config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY environment variable not set", ErrProviderDisabled)
	}
	return gemini.NewAdapter(gemini.Config{
		APIKey:     f.config.GeminiAPIKey,
		BaseURL:    f.config.GeminiBaseURL,
		HTTPClient: f.httpClient,
		Retry:      f.retryPolicy(),
		Rates:      f.rates,
		Logger:     f.logger,
	}), nil
}

func (f *ProviderFactory) createOpenAI() (domainllm.Adapter, error) {
	if f.config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY environment variable not set", ErrProviderDisabled)
	}
	return openai.NewAdapter(openai.Config{
		APIKey:     f.config.OpenAIAPIKey,
		BaseURL:    f.config.OpenAIBaseURL,
		HTTPClient: f.httpClient,
		Retry:      f.retryPolicy(),
		Rates:      f.rates,
		Logger:     f.logger,
	}), nil
}

func (f *ProviderFactory) createAnthropic() (domainllm.Adapter, error) {
	if f.config.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY environment variable not set", ErrProviderDisabled)
	}
	return anthropic.NewAdapter(anthropic.Config{
		APIKey:     f.config.AnthropicAPIKey,
		BaseURL:    f.config.AnthropicBaseURL,
		HTTPClient: f.httpClient,
		Retry:      f.retryPolicy(),
		Rates:      f.rates,
		Logger:     f.logger,
	}), nil
}

// createLorem creates the mock provider. It needs no API key.
func (f *ProviderFactory) createLorem() (domainllm.Adapter, error) {
	if !f.config.EnableLorem {
		return nil, fmt.Errorf("%w: ENABLE_LOREM is false", ErrProviderDisabled)
	}
	return lorem.NewAdapter(f.retryPolicy(), f.logger), nil
}
