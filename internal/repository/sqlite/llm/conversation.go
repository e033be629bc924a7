package llm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"promptlab/internal/database"
	"promptlab/internal/domain"
	llmModels "promptlab/internal/domain/models/llm"
	llmRepo "promptlab/internal/domain/repositories/llm"
	"promptlab/internal/repository/sqlite"
)

// SQLiteConversationRepository implements the ConversationRepository interface using SQLite
type SQLiteConversationRepository struct {
	db     *sql.DB
	tables *database.TableNames
	logger *slog.Logger
}

// NewConversationRepository creates a new SQLiteConversationRepository
func NewConversationRepository(config *sqlite.RepositoryConfig) llmRepo.ConversationRepository {
	return &SQLiteConversationRepository{
		db:     config.DB,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateConversation creates a new conversation
func (r *SQLiteConversationRepository) CreateConversation(ctx context.Context, conv *llmModels.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.tables.Conversations)

	executor := sqlite.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		conv.ID,
		conv.UserID,
		conv.Title,
		sqlite.ToUnix(conv.CreatedAt),
		sqlite.ToUnix(conv.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	return nil
}

// GetConversation retrieves a conversation by ID
func (r *SQLiteConversationRepository) GetConversation(ctx context.Context, conversationID, userID string) (*llmModels.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, created_at, updated_at
		FROM %s
		WHERE id = ? AND user_id = ?
	`, r.tables.Conversations)

	var (
		conv               llmModels.Conversation
		createdAt, updated int64
	)
	executor := sqlite.GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query, conversationID, userID).Scan(
		&conv.ID,
		&conv.UserID,
		&conv.Title,
		&createdAt,
		&updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("conversation %s not found", conversationID)}
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	conv.CreatedAt = sqlite.FromUnix(createdAt)
	conv.UpdatedAt = sqlite.FromUnix(updated)
	return &conv, nil
}

// TouchConversation refreshes updated_at
func (r *SQLiteConversationRepository) TouchConversation(ctx context.Context, conversationID string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET updated_at = ? WHERE id = ?`, r.tables.Conversations)

	executor := sqlite.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, sqlite.ToUnix(at), conversationID)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("conversation %s not found", conversationID)}
	}

	return nil
}
