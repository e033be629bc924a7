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

// SQLiteResponseRepository implements the ResponseRepository interface using SQLite
type SQLiteResponseRepository struct {
	db     *sql.DB
	tables *database.TableNames
	logger *slog.Logger
}

// NewResponseRepository creates a new SQLiteResponseRepository
func NewResponseRepository(config *sqlite.RepositoryConfig) llmRepo.ResponseRepository {
	return &SQLiteResponseRepository{
		db:     config.DB,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateResponse inserts a response
func (r *SQLiteResponseRepository) CreateResponse(ctx context.Context, resp *llmModels.Response) error {
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, prompt_id, provider, model, content, tokens_used, cost, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.tables.Responses)

	executor := sqlite.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		resp.ID,
		resp.PromptID,
		resp.Provider,
		resp.Model,
		resp.Content,
		resp.TokensUsed,
		resp.Cost,
		resp.LatencyMs,
		sqlite.ToUnix(resp.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create response: %w", err)
	}

	return nil
}
