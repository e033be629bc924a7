package llm

import (
	"context"
	"time"

	"promptlab/internal/domain/models/llm"
)

// ConversationRepository defines the interface for conversation data access
type ConversationRepository interface {
	// CreateConversation inserts a conversation; ID is generated when empty
	CreateConversation(ctx context.Context, conv *llm.Conversation) error

	// GetConversation retrieves a conversation by ID (scoped to user)
	// Returns domain.ErrNotFound if not found
	GetConversation(ctx context.Context, conversationID, userID string) (*llm.Conversation, error)

	// TouchConversation sets updated_at; the title is never modified.
	// Returns domain.ErrNotFound if not found
	TouchConversation(ctx context.Context, conversationID string, at time.Time) error
}
