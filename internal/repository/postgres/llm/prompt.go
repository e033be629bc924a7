package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"promptlab/internal/database"
	"promptlab/internal/domain"
	llmModels "promptlab/internal/domain/models/llm"
	llmRepo "promptlab/internal/domain/repositories/llm"
	"promptlab/internal/repository/postgres"
)

// PostgresPromptRepository implements the PromptRepository interface using PostgreSQL
type PostgresPromptRepository struct {
	pool   *pgxpool.Pool
	tables *database.TableNames
	logger *slog.Logger
}

// NewPromptRepository creates a new PostgresPromptRepository
func NewPromptRepository(config *postgres.RepositoryConfig) llmRepo.PromptRepository {
	return &PostgresPromptRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreatePrompt inserts a prompt
func (r *PostgresPromptRepository) CreatePrompt(ctx context.Context, prompt *llmModels.Prompt) error {
	if prompt.ID == "" {
		prompt.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, conversation_id, content, system_prompt, context_file_id,
		                estimated_tokens, actual_tokens, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Prompts)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		prompt.ID,
		prompt.ConversationID,
		prompt.Content,
		prompt.SystemPrompt,
		prompt.ContextFileID,
		prompt.EstimatedTokens,
		prompt.ActualTokens,
		prompt.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.NotFoundError{Message: fmt.Sprintf("conversation %s or context file not found", prompt.ConversationID)}
		}
		return fmt.Errorf("create prompt: %w", err)
	}

	return nil
}

// ListPromptsWithLatestResponse returns the prompts of a conversation, oldest
// first, each joined with its most recent response
func (r *PostgresPromptRepository) ListPromptsWithLatestResponse(ctx context.Context, conversationID string) ([]llmModels.PromptWithResponse, error) {
	query := fmt.Sprintf(`
		SELECT p.id, p.conversation_id, p.content, p.system_prompt, p.context_file_id,
		       p.estimated_tokens, p.actual_tokens, p.created_at,
		       r.id, r.provider, r.model, r.content, r.tokens_used, r.cost, r.latency_ms, r.created_at
		FROM %s p
		LEFT JOIN LATERAL (
			SELECT id, provider, model, content, tokens_used, cost, latency_ms, created_at
			FROM %s
			WHERE prompt_id = p.id
			ORDER BY created_at DESC
			LIMIT 1
		) r ON TRUE
		WHERE p.conversation_id = $1
		ORDER BY p.created_at ASC, p.id ASC
	`, r.tables.Prompts, r.tables.Responses)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, conversationID)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return []llmModels.PromptWithResponse{}, nil
		}
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	results := []llmModels.PromptWithResponse{}
	for rows.Next() {
		var (
			item       llmModels.PromptWithResponse
			respID     *string
			provider   *string
			model      *string
			content    *string
			tokensUsed *int
			cost       *float64
			latencyMs  *int64
			createdAt  *time.Time
		)

		err := rows.Scan(
			&item.Prompt.ID,
			&item.Prompt.ConversationID,
			&item.Prompt.Content,
			&item.Prompt.SystemPrompt,
			&item.Prompt.ContextFileID,
			&item.Prompt.EstimatedTokens,
			&item.Prompt.ActualTokens,
			&item.Prompt.CreatedAt,
			&respID, &provider, &model, &content, &tokensUsed, &cost, &latencyMs, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}

		if respID != nil {
			item.Response = &llmModels.Response{
				ID:         *respID,
				PromptID:   item.Prompt.ID,
				Provider:   deref(provider),
				Model:      deref(model),
				Content:    deref(content),
				TokensUsed: deref(tokensUsed),
				Cost:       deref(cost),
				LatencyMs:  deref(latencyMs),
				CreatedAt:  deref(createdAt),
			}
		}

		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompts: %w", err)
	}

	return results, nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
