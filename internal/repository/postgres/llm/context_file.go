package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"promptlab/internal/database"
	"promptlab/internal/domain"
	llmModels "promptlab/internal/domain/models/llm"
	llmRepo "promptlab/internal/domain/repositories/llm"
	"promptlab/internal/repository/postgres"
)

// PostgresContextFileRepository implements the ContextFileRepository interface using PostgreSQL
type PostgresContextFileRepository struct {
	pool   *pgxpool.Pool
	tables *database.TableNames
	logger *slog.Logger
}

// NewContextFileRepository creates a new PostgresContextFileRepository
func NewContextFileRepository(config *postgres.RepositoryConfig) llmRepo.ContextFileRepository {
	return &PostgresContextFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetContextFile retrieves file metadata by ID
func (r *PostgresContextFileRepository) GetContextFile(ctx context.Context, fileID string) (*llmModels.ContextFile, error) {
	query := fmt.Sprintf(`
		SELECT id, name, size, content_type, storage_path, uploaded_at
		FROM %s
		WHERE id = $1
	`, r.tables.ContextFiles)

	var file llmModels.ContextFile
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, fileID).Scan(
		&file.ID,
		&file.Name,
		&file.Size,
		&file.ContentType,
		&file.StoragePath,
		&file.UploadedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("context file %s not found", fileID)}
		}
		return nil, fmt.Errorf("get context file: %w", err)
	}

	return &file, nil
}
