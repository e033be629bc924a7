package llm

// HistoryTurn is one prior (user, assistant) exchange, oldest first in a history slice
type HistoryTurn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// CanonicalRequest is the provider-agnostic form of a prompt plus generation
// parameters. Built once by the request builder, consumed once by an adapter.
type CanonicalRequest struct {
	Prompt      string
	System      *string
	Model       string
	MaxTokens   *int
	Temperature *float64
	History     []HistoryTurn
}

// GetMaxTokens returns MaxTokens or the provided default
func (r *CanonicalRequest) GetMaxTokens(defaultValue int) int {
	if r.MaxTokens != nil && *r.MaxTokens > 0 {
		return *r.MaxTokens
	}
	return defaultValue
}
