package preparation

import "promptlab/internal/domain/models/llm"

// BuildInput is everything the request builder assembles
type BuildInput struct {
	Prompt      string
	System      *string
	Model       string
	History     []llm.HistoryTurn
	MaxTokens   *int
	Temperature *float64
}

// Build assembles the canonical request. Pure: no validation, no I/O.
// A blank system prompt is dropped.
func Build(in BuildInput) *llm.CanonicalRequest {
	req := &llm.CanonicalRequest{
		Prompt:      in.Prompt,
		Model:       in.Model,
		MaxTokens:   in.MaxTokens,
		Temperature: in.Temperature,
		History:     append([]llm.HistoryTurn(nil), in.History...),
	}
	if in.System != nil && *in.System != "" {
		req.System = in.System
	}
	return req
}
