package llm

import (
	"context"

	"promptlab/internal/domain/models/llm"
)

// Adapter defines the interface that every built-in provider backend implements.
// Adapters hold no mutable state beyond their configuration and are safe for
// concurrent use.
type Adapter interface {
	// Name returns the provider kind this adapter serves
	Name() llm.ProviderKind

	// Generate sends the canonical request to the provider.
	// Expected upstream failures (exhausted retries, malformed replies,
	// rejected requests) are reported as a response with Success=false and a
	// nil error. A non-nil error means a contract violation (nil request,
	// missing credential) or cancellation.
	Generate(ctx context.Context, req *llm.CanonicalRequest) (*GenerateResponse, error)

	// EstimateTokens counts tokens for text, using the provider's counting
	// endpoint when one exists and a local approximation otherwise
	EstimateTokens(ctx context.Context, text string) (int, error)

	// IsAvailable performs a minimal live call to check the backend is reachable
	IsAvailable(ctx context.Context) bool
}

// ModelTokenCounter is implemented by adapters whose counting endpoint is
// tokenizer specific, so the routed model can be counted with its own tokenizer
type ModelTokenCounter interface {
	EstimateModelTokens(ctx context.Context, model, text string) (int, error)
}

// GenerateResponse contains a provider's reply mapped back to canonical form
type GenerateResponse struct {
	Success bool

	// Error is set when Success is false
	Error string

	Content string

	// Model is the model that actually served the request (may differ if aliased)
	Model string

	PromptTokens     int
	CompletionTokens int

	// Cost in USD, computed from the model catalog rates
	Cost float64

	// LatencyMs is provider-side latency including retries (best effort on failure)
	LatencyMs int64

	// FinishReason as reported by the provider ("stop", "end_turn", ...)
	FinishReason string
}
