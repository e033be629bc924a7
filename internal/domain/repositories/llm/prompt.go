package llm

import (
	"context"

	"promptlab/internal/domain/models/llm"
)

// PromptRepository defines the interface for prompt data access
type PromptRepository interface {
	// CreatePrompt inserts a prompt; ID is generated when empty
	CreatePrompt(ctx context.Context, prompt *llm.Prompt) error

	// ListPromptsWithLatestResponse returns every prompt of a conversation
	// ordered oldest first, each joined with its most recent response (nil if none)
	ListPromptsWithLatestResponse(ctx context.Context, conversationID string) ([]llm.PromptWithResponse, error)
}
