package preparation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"promptlab/internal/domain"
	llmRepo "promptlab/internal/domain/repositories/llm"
	"promptlab/internal/storage"
)

const userPromptDivider = "\n=== User Prompt ===\n"

// EnrichedPrompt is the prompt with file contents spliced in
type EnrichedPrompt struct {
	Text string

	// ContextFileID is the first referenced file that exists, recorded on the Prompt
	ContextFileID *string

	// FilesUsed counts files whose contents were included
	FilesUsed int
}

// ContextEnricher prepends referenced file contents to a prompt
type ContextEnricher interface {
	Enrich(ctx context.Context, prompt string, fileIDs []string) (*EnrichedPrompt, error)
}

// Enricher loads file metadata from the repository and bytes from the file store
type Enricher struct {
	files  llmRepo.ContextFileRepository
	store  storage.FileStore
	logger *slog.Logger
}

// NewEnricher creates a new enricher
func NewEnricher(files llmRepo.ContextFileRepository, store storage.FileStore, logger *slog.Logger) *Enricher {
	return &Enricher{
		files:  files,
		store:  store,
		logger: logger,
	}
}

var _ ContextEnricher = (*Enricher)(nil)

// Enrich emits one "=== File: <name> ===" block per readable file, then the
// divider and the user text. Files that cannot be located are logged and
// skipped; with none found the prompt passes through unchanged.
func (e *Enricher) Enrich(ctx context.Context, prompt string, fileIDs []string) (*EnrichedPrompt, error) {
	result := &EnrichedPrompt{Text: prompt}
	if len(fileIDs) == 0 {
		return result, nil
	}

	var blocks []string
	for _, fileID := range fileIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file, err := e.files.GetContextFile(ctx, fileID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				e.logger.Warn("context file not found, skipping", "file_id", fileID)
				continue
			}
			return nil, fmt.Errorf("load context file %s: %w", fileID, err)
		}

		if result.ContextFileID == nil {
			id := file.ID
			result.ContextFileID = &id
		}

		data, err := e.store.ReadFile(ctx, file.StoragePath)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			e.logger.Warn("context file unreadable, skipping",
				"file_id", fileID,
				"storage_path", file.StoragePath,
				"error", err,
			)
			continue
		}

		blocks = append(blocks, fmt.Sprintf("=== File: %s ===\n%s\n", file.Name, data))
	}

	if len(blocks) == 0 {
		return result, nil
	}

	result.Text = strings.Join(blocks, "\n") + userPromptDivider + prompt
	result.FilesUsed = len(blocks)
	return result, nil
}
