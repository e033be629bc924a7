package llm

import (
	"context"
	"time"

	"promptlab/internal/domain/models/llm"
)

// ExecuteRequest is the already-parsed request handed over by the transport layer
type ExecuteRequest struct {
	UserID         string   `json:"-"`
	Provider       string   `json:"provider,omitempty"`
	Prompt         string   `json:"prompt"`
	SystemPrompt   *string  `json:"system_prompt,omitempty"`
	ConversationID *string  `json:"conversation_id,omitempty"`
	ContextFileIDs []string `json:"context_file_ids,omitempty"`
	Model          *string  `json:"model,omitempty"`
	MaxTokens      *int     `json:"max_tokens,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
}

// ExecuteResult is the plain result returned to the transport layer
type ExecuteResult struct {
	PromptID            string    `json:"prompt_id"`
	ResponseID          string    `json:"response_id"`
	ConversationID      string    `json:"conversation_id"`
	ConversationCreated bool      `json:"conversation_created"`
	Content             string    `json:"content"`
	InputTokens         int       `json:"input_tokens"`
	OutputTokens        int       `json:"output_tokens"`
	Cost                float64   `json:"cost"`
	LatencyMs           int64     `json:"latency_ms"`
	Model               string    `json:"model"`
	Provider            string    `json:"provider"`
	CreatedAt           time.Time `json:"created_at"`
}

// PreparedRequest is the output of request preparation: everything the
// downstream stages need without re-deriving it
type PreparedRequest struct {
	Request       *llm.CanonicalRequest
	ContextFileID *string
	History       []llm.HistoryTurn
	UserID        string
	Model         string
	Provider      llm.ProviderKind // empty unless the caller named one
	OriginalText  string
}

// ExecutionResult is what the provider router returns for one routed call
type ExecutionResult struct {
	Provider      llm.ProviderKind
	DisplayName   string
	Model         string
	Response      *GenerateResponse
	ExecutedAt    time.Time
	ContextFileID *string
}

// ExecutionService runs the full prompt pipeline
type ExecutionService interface {
	Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResult, error)
}

// HistoryService reads prior conversation turns
type HistoryService interface {
	LoadHistory(ctx context.Context, conversationID, userID string) ([]llm.HistoryTurn, error)
}
