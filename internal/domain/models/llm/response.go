package llm

import "time"

// Response is one provider reply to a Prompt. Immutable once written.
type Response struct {
	ID         string    `json:"id" db:"id"`
	PromptID   string    `json:"prompt_id" db:"prompt_id"`
	Provider   string    `json:"provider" db:"provider"`
	Model      string    `json:"model" db:"model"`
	Content    string    `json:"content" db:"content"`
	TokensUsed int       `json:"tokens_used" db:"tokens_used"`
	Cost       float64   `json:"cost" db:"cost"`
	LatencyMs  int64     `json:"latency_ms" db:"latency_ms"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
