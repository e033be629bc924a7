package llm

import "time"

// Prompt is one user turn as submitted (before context enrichment).
// Immutable once written.
type Prompt struct {
	ID              string    `json:"id" db:"id"`
	ConversationID  string    `json:"conversation_id" db:"conversation_id"`
	Content         string    `json:"content" db:"content"`
	SystemPrompt    *string   `json:"system_prompt,omitempty" db:"system_prompt"`
	ContextFileID   *string   `json:"context_file_id,omitempty" db:"context_file_id"`
	EstimatedTokens int       `json:"estimated_tokens" db:"estimated_tokens"`
	ActualTokens    *int      `json:"actual_tokens,omitempty" db:"actual_tokens"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// PromptWithResponse pairs a prompt with its most recent response, if any.
// Used to reconstruct conversation history.
type PromptWithResponse struct {
	Prompt   Prompt
	Response *Response
}
