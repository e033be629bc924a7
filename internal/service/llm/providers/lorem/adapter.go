// Package lorem is the offline mock backend used in development and tests.
// It wraps the meridian-llm-go lorem provider, which returns lorem ipsum text.
package lorem

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	llmprovider "github.com/haowjy/meridian-llm-go"
	loremprovider "github.com/haowjy/meridian-llm-go/providers/lorem"

	"promptlab/internal/domain/models/llm"
	domainllm "promptlab/internal/domain/services/llm"
	"promptlab/internal/service/llm/providers"
)

const blockTypeText = "text"

// probeModel is checked by IsAvailable
const probeModel = "lorem-fast"

// generator is the part of the library provider this adapter uses
type generator interface {
	GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error)
	SupportsModel(model string) bool
}

// Adapter implements domainllm.Adapter with the library's lorem provider
type Adapter struct {
	provider generator
	retry    providers.RetryPolicy
	logger   *slog.Logger
}

var _ domainllm.Adapter = (*Adapter)(nil)

// NewAdapter creates a lorem adapter backed by the library provider
func NewAdapter(retry providers.RetryPolicy, logger *slog.Logger) *Adapter {
	return NewAdapterWithProvider(loremprovider.NewProvider(), retry, logger)
}

// NewAdapterWithProvider creates a lorem adapter from an existing provider
func NewAdapterWithProvider(provider generator, retry providers.RetryPolicy, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		provider: provider,
		retry:    retry,
		logger:   logger.With("provider", llm.ProviderLorem.String()),
	}
}

func (a *Adapter) Name() llm.ProviderKind {
	return llm.ProviderLorem
}

// Generate produces mock text. Lorem models are free, so cost is zero.
func (a *Adapter) Generate(ctx context.Context, req *llm.CanonicalRequest) (*domainllm.GenerateResponse, error) {
	if req == nil {
		return nil, errors.New("lorem: nil request")
	}

	libReq := convertToLibraryRequest(req)
	start := time.Now()

	var libResp *llmprovider.GenerateResponse
	err := a.retry.Do(ctx, func(ctx context.Context) error {
		resp, callErr := a.provider.GenerateResponse(ctx, libReq)
		if callErr != nil {
			if ctx.Err() != nil {
				return callErr
			}
			// The mock never fails transiently
			return providers.Permanent(callErr)
		}
		libResp = resp
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.logger.Error("generate failed", "model", req.Model, "error", err)
		return providers.Failure(req.Model, start, err), nil
	}

	text := responseText(libResp)
	model := req.Model
	if libResp.Model != "" {
		model = libResp.Model
	}

	return &domainllm.GenerateResponse{
		Success:          true,
		Content:          text,
		Model:            model,
		PromptTokens:     libResp.InputTokens,
		CompletionTokens: libResp.OutputTokens,
		LatencyMs:        time.Since(start).Milliseconds(),
		FinishReason:     libResp.StopReason,
	}, nil
}

// EstimateTokens uses the length heuristic
func (a *Adapter) EstimateTokens(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return providers.EstimateTokens(text), nil
}

// IsAvailable reports whether the mock serves its probe model. There is no
// remote endpoint to call.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	return ctx.Err() == nil && a.provider.SupportsModel(probeModel)
}

func convertToLibraryRequest(req *llm.CanonicalRequest) *llmprovider.GenerateRequest {
	messages := make([]llmprovider.Message, 0, len(req.History)*2+1)
	for _, turn := range req.History {
		messages = append(messages,
			textMessage("user", turn.User),
			textMessage("assistant", turn.Assistant),
		)
	}
	messages = append(messages, textMessage("user", req.Prompt))

	return &llmprovider.GenerateRequest{
		Messages: messages,
		Model:    req.Model,
		Params: &llmprovider.RequestParams{
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
			System:      req.System,
		},
	}
}

func textMessage(role, text string) llmprovider.Message {
	return llmprovider.Message{
		Role: role,
		Blocks: []*llmprovider.Block{
			{BlockType: blockTypeText, TextContent: &text},
		},
	}
}

func responseText(resp *llmprovider.GenerateResponse) string {
	var text strings.Builder
	for _, block := range resp.Blocks {
		if block == nil || block.BlockType != blockTypeText || block.TextContent == nil {
			continue
		}
		text.WriteString(*block.TextContent)
	}
	return text.String()
}
