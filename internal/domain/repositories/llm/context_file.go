package llm

import (
	"context"

	"promptlab/internal/domain/models/llm"
)

// ContextFileRepository provides read access to uploaded file metadata
type ContextFileRepository interface {
	// GetContextFile returns file metadata by ID
	// Returns domain.ErrNotFound if not found
	GetContextFile(ctx context.Context, fileID string) (*llm.ContextFile, error)
}
