package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"promptlab/internal/httputil"
	"promptlab/internal/service/llm/conversation"
)

// HistoryReader returns a conversation with its exchanges
type HistoryReader interface {
	GetConversationHistory(ctx context.Context, conversationID, userID string) (*conversation.ConversationHistory, error)
}

// ConversationHandler serves conversation reads
type ConversationHandler struct {
	history HistoryReader
	logger  *slog.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(history HistoryReader, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		history: history,
		logger:  logger,
	}
}

type exchangeResponse struct {
	PromptID     string     `json:"prompt_id"`
	Prompt       string     `json:"prompt"`
	SystemPrompt *string    `json:"system_prompt,omitempty"`
	PromptedAt   time.Time  `json:"prompted_at"`
	ResponseID   *string    `json:"response_id"`
	Response     *string    `json:"response"`
	Provider     string     `json:"provider,omitempty"`
	Model        string     `json:"model,omitempty"`
	TokensUsed   int        `json:"tokens_used"`
	Cost         float64    `json:"cost"`
	LatencyMs    int64      `json:"latency_ms"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}

type historyResponse struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Exchanges []exchangeResponse `json:"exchanges"`
}

// GetHistory returns every exchange of a conversation, oldest first
// GET /api/conversations/{id}/history
func (h *ConversationHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "conversation id is required",
			map[string]any{"request_id": httputil.GetRequestID(r)})
		return
	}

	history, err := h.history.GetConversationHistory(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	conv := history.Conversation
	out := historyResponse{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		Exchanges: make([]exchangeResponse, 0, len(history.Exchanges)),
	}
	for _, ex := range history.Exchanges {
		item := exchangeResponse{
			PromptID:     ex.Prompt.ID,
			Prompt:       ex.Prompt.Content,
			SystemPrompt: ex.Prompt.SystemPrompt,
			PromptedAt:   ex.Prompt.CreatedAt,
		}
		if resp := ex.Response; resp != nil {
			item.ResponseID = &resp.ID
			item.Response = &resp.Content
			item.Provider = resp.Provider
			item.Model = resp.Model
			item.TokensUsed = resp.TokensUsed
			item.Cost = resp.Cost
			item.LatencyMs = resp.LatencyMs
			item.RespondedAt = &resp.CreatedAt
		}
		out.Exchanges = append(out.Exchanges, item)
	}

	httputil.RespondJSON(w, http.StatusOK, out)
}
