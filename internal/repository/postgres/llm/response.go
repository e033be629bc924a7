package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"promptlab/internal/database"
	"promptlab/internal/domain"
	llmModels "promptlab/internal/domain/models/llm"
	llmRepo "promptlab/internal/domain/repositories/llm"
	"promptlab/internal/repository/postgres"
)

// PostgresResponseRepository implements the ResponseRepository interface using PostgreSQL
type PostgresResponseRepository struct {
	pool   *pgxpool.Pool
	tables *database.TableNames
	logger *slog.Logger
}

// NewResponseRepository creates a new PostgresResponseRepository
func NewResponseRepository(config *postgres.RepositoryConfig) llmRepo.ResponseRepository {
	return &PostgresResponseRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateResponse inserts a response
func (r *PostgresResponseRepository) CreateResponse(ctx context.Context, resp *llmModels.Response) error {
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, prompt_id, provider, model, content, tokens_used, cost, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Responses)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		resp.ID,
		resp.PromptID,
		resp.Provider,
		resp.Model,
		resp.Content,
		resp.TokensUsed,
		resp.Cost,
		resp.LatencyMs,
		resp.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.NotFoundError{Message: fmt.Sprintf("prompt %s not found", resp.PromptID)}
		}
		return fmt.Errorf("create response: %w", err)
	}

	return nil
}
