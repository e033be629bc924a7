package conversation

import (
	"context"
	"log/slog"

	llmModels "promptlab/internal/domain/models/llm"
	llmRepo "promptlab/internal/domain/repositories/llm"
	llmSvc "promptlab/internal/domain/services/llm"
)

// HistoryLoader implements the HistoryService interface.
// Read-only: it never writes to the store.
type HistoryLoader struct {
	conversationRepo llmRepo.ConversationRepository
	promptRepo       llmRepo.PromptRepository
	logger           *slog.Logger
}

// NewHistoryLoader creates a new history loader
func NewHistoryLoader(
	conversationRepo llmRepo.ConversationRepository,
	promptRepo llmRepo.PromptRepository,
	logger *slog.Logger,
) *HistoryLoader {
	return &HistoryLoader{
		conversationRepo: conversationRepo,
		promptRepo:       promptRepo,
		logger:           logger,
	}
}

var _ llmSvc.HistoryService = (*HistoryLoader)(nil)

// ConversationHistory is a conversation with every exchange, oldest first
type ConversationHistory struct {
	Conversation *llmModels.Conversation
	Exchanges    []llmModels.PromptWithResponse
}

// LoadHistory returns the (user, assistant) pairs of a conversation, oldest first.
// Prompts without a response are skipped. Returns domain.ErrNotFound when the
// conversation does not exist for userID.
func (l *HistoryLoader) LoadHistory(ctx context.Context, conversationID, userID string) ([]llmModels.HistoryTurn, error) {
	history, err := l.GetConversationHistory(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	turns := BuildTurns(history.Exchanges)
	l.logger.Debug("history loaded",
		"conversation_id", conversationID,
		"prompts", len(history.Exchanges),
		"turns", len(turns),
	)
	return turns, nil
}

// GetConversationHistory returns the conversation and its exchanges
func (l *HistoryLoader) GetConversationHistory(ctx context.Context, conversationID, userID string) (*ConversationHistory, error) {
	conv, err := l.conversationRepo.GetConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	exchanges, err := l.promptRepo.ListPromptsWithLatestResponse(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	return &ConversationHistory{
		Conversation: conv,
		Exchanges:    exchanges,
	}, nil
}

// BuildTurns pairs each answered prompt's original text with its latest response
func BuildTurns(exchanges []llmModels.PromptWithResponse) []llmModels.HistoryTurn {
	turns := make([]llmModels.HistoryTurn, 0, len(exchanges))
	for _, ex := range exchanges {
		if ex.Response == nil {
			continue
		}
		turns = append(turns, llmModels.HistoryTurn{
			User:      ex.Prompt.Content,
			Assistant: ex.Response.Content,
		})
	}
	return turns
}
