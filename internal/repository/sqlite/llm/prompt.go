package llm

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"promptlab/internal/database"
	llmModels "promptlab/internal/domain/models/llm"
	llmRepo "promptlab/internal/domain/repositories/llm"
	"promptlab/internal/repository/sqlite"
)

// SQLitePromptRepository implements the PromptRepository interface using SQLite
type SQLitePromptRepository struct {
	db     *sql.DB
	tables *database.TableNames
	logger *slog.Logger
}

// NewPromptRepository creates a new SQLitePromptRepository
func NewPromptRepository(config *sqlite.RepositoryConfig) llmRepo.PromptRepository {
	return &SQLitePromptRepository{
		db:     config.DB,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreatePrompt inserts a prompt
func (r *SQLitePromptRepository) CreatePrompt(ctx context.Context, prompt *llmModels.Prompt) error {
	if prompt.ID == "" {
		prompt.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, conversation_id, content, system_prompt, context_file_id,
		                estimated_tokens, actual_tokens, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.tables.Prompts)

	executor := sqlite.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		prompt.ID,
		prompt.ConversationID,
		prompt.Content,
		prompt.SystemPrompt,
		prompt.ContextFileID,
		prompt.EstimatedTokens,
		prompt.ActualTokens,
		sqlite.ToUnix(prompt.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create prompt: %w", err)
	}

	return nil
}

// ListPromptsWithLatestResponse returns the prompts of a conversation, oldest
// first, each joined with its most recent response
func (r *SQLitePromptRepository) ListPromptsWithLatestResponse(ctx context.Context, conversationID string) ([]llmModels.PromptWithResponse, error) {
	query := fmt.Sprintf(`
		SELECT p.id, p.conversation_id, p.content, p.system_prompt, p.context_file_id,
		       p.estimated_tokens, p.actual_tokens, p.created_at,
		       r.id, r.provider, r.model, r.content, r.tokens_used, r.cost, r.latency_ms, r.created_at
		FROM %s p
		LEFT JOIN %s r ON r.id = (
			SELECT id FROM %s
			WHERE prompt_id = p.id
			ORDER BY created_at DESC, rowid DESC
			LIMIT 1
		)
		WHERE p.conversation_id = ?
		ORDER BY p.created_at ASC, p.rowid ASC
	`, r.tables.Prompts, r.tables.Responses, r.tables.Responses)

	executor := sqlite.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	results := []llmModels.PromptWithResponse{}
	for rows.Next() {
		var (
			item            llmModels.PromptWithResponse
			systemPrompt    sql.NullString
			contextFileID   sql.NullString
			actualTokens    sql.NullInt64
			promptCreatedAt int64
			respID          sql.NullString
			provider        sql.NullString
			model           sql.NullString
			content         sql.NullString
			tokensUsed      sql.NullInt64
			cost            sql.NullFloat64
			latencyMs       sql.NullInt64
			respCreatedAt   sql.NullInt64
		)

		err := rows.Scan(
			&item.Prompt.ID,
			&item.Prompt.ConversationID,
			&item.Prompt.Content,
			&systemPrompt,
			&contextFileID,
			&item.Prompt.EstimatedTokens,
			&actualTokens,
			&promptCreatedAt,
			&respID, &provider, &model, &content, &tokensUsed, &cost, &latencyMs, &respCreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}

		item.Prompt.CreatedAt = sqlite.FromUnix(promptCreatedAt)
		if systemPrompt.Valid {
			item.Prompt.SystemPrompt = &systemPrompt.String
		}
		if contextFileID.Valid {
			item.Prompt.ContextFileID = &contextFileID.String
		}
		if actualTokens.Valid {
			n := int(actualTokens.Int64)
			item.Prompt.ActualTokens = &n
		}

		if respID.Valid {
			item.Response = &llmModels.Response{
				ID:         respID.String,
				PromptID:   item.Prompt.ID,
				Provider:   provider.String,
				Model:      model.String,
				Content:    content.String,
				TokensUsed: int(tokensUsed.Int64),
				Cost:       cost.Float64,
				LatencyMs:  latencyMs.Int64,
				CreatedAt:  sqlite.FromUnix(respCreatedAt.Int64),
			}
		}

		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompts: %w", err)
	}

	return results, nil
}
