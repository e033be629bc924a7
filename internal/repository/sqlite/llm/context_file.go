package llm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"promptlab/internal/database"
	"promptlab/internal/domain"
	llmModels "promptlab/internal/domain/models/llm"
	llmRepo "promptlab/internal/domain/repositories/llm"
	"promptlab/internal/repository/sqlite"
)

// SQLiteContextFileRepository implements the ContextFileRepository interface using SQLite
type SQLiteContextFileRepository struct {
	db     *sql.DB
	tables *database.TableNames
	logger *slog.Logger
}

// NewContextFileRepository creates a new SQLiteContextFileRepository
func NewContextFileRepository(config *sqlite.RepositoryConfig) *SQLiteContextFileRepository {
	return &SQLiteContextFileRepository{
		db:     config.DB,
		tables: config.Tables,
		logger: config.Logger,
	}
}

var _ llmRepo.ContextFileRepository = (*SQLiteContextFileRepository)(nil)

// GetContextFile retrieves file metadata by ID
func (r *SQLiteContextFileRepository) GetContextFile(ctx context.Context, fileID string) (*llmModels.ContextFile, error) {
	query := fmt.Sprintf(`
		SELECT id, name, size, content_type, storage_path, uploaded_at
		FROM %s
		WHERE id = ?
	`, r.tables.ContextFiles)

	var (
		file       llmModels.ContextFile
		uploadedAt int64
	)
	executor := sqlite.GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query, fileID).Scan(
		&file.ID,
		&file.Name,
		&file.Size,
		&file.ContentType,
		&file.StoragePath,
		&uploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("context file %s not found", fileID)}
		}
		return nil, fmt.Errorf("get context file: %w", err)
	}

	file.UploadedAt = sqlite.FromUnix(uploadedAt)
	return &file, nil
}

// CreateContextFile registers file metadata. Uploading itself happens
// outside this service; this is used by seeding and tests.
func (r *SQLiteContextFileRepository) CreateContextFile(ctx context.Context, file *llmModels.ContextFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, size, content_type, storage_path, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.tables.ContextFiles)

	executor := sqlite.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		file.ID,
		file.Name,
		file.Size,
		file.ContentType,
		file.StoragePath,
		sqlite.ToUnix(file.UploadedAt),
	)
	if err != nil {
		return fmt.Errorf("create context file: %w", err)
	}

	return nil
}
