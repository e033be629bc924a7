// Package persistence writes one completed exchange (conversation, prompt,
// response) atomically.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"promptlab/internal/config"
	"promptlab/internal/domain"
	llmModels "promptlab/internal/domain/models/llm"
	"promptlab/internal/domain/repositories"
	llmRepo "promptlab/internal/domain/repositories/llm"
)

// SaveExchangeInput is one successful provider call to store
type SaveExchangeInput struct {
	UserID string

	// ConversationID is nil to start a new conversation
	ConversationID *string

	// Prompt is the caller's original text, never the enriched one
	Prompt          string
	SystemPrompt    *string
	ContextFileID   *string
	EstimatedTokens int

	// ActualTokens is the provider-reported prompt size, nil when unknown
	ActualTokens *int

	Provider string
	Model    string
	Content  string

	// TokensUsed counts completion tokens only
	TokensUsed int
	Cost       float64
	LatencyMs  int64
}

// SaveExchangeResult identifies the rows written
type SaveExchangeResult struct {
	ConversationID string
	PromptID       string
	ResponseID     string
	Created        bool
	CreatedAt      time.Time
}

// Service stores exchanges through the repositories inside one transaction
type Service struct {
	conversationRepo llmRepo.ConversationRepository
	promptRepo       llmRepo.PromptRepository
	responseRepo     llmRepo.ResponseRepository
	txManager        repositories.TransactionManager
	logger           *slog.Logger
	now              func() time.Time
}

// NewService creates a new persistence service
func NewService(
	conversationRepo llmRepo.ConversationRepository,
	promptRepo llmRepo.PromptRepository,
	responseRepo llmRepo.ResponseRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *Service {
	return &Service{
		conversationRepo: conversationRepo,
		promptRepo:       promptRepo,
		responseRepo:     responseRepo,
		txManager:        txManager,
		logger:           logger,
		now:              time.Now,
	}
}

// SaveExchange locates (or creates) the conversation, then inserts the
// prompt and the response. Either all three writes commit or none do.
// The updated_at refresh runs after commit and only logs on failure.
func (s *Service) SaveExchange(ctx context.Context, in *SaveExchangeInput) (*SaveExchangeResult, error) {
	if in == nil {
		return nil, errors.New("save exchange: input is required")
	}

	now := s.now().UTC()
	result := &SaveExchangeResult{CreatedAt: now}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		conversationID, created, err := s.resolveConversation(txCtx, in, now)
		if err != nil {
			return err
		}

		prompt := &llmModels.Prompt{
			ConversationID:  conversationID,
			Content:         in.Prompt,
			SystemPrompt:    in.SystemPrompt,
			ContextFileID:   in.ContextFileID,
			EstimatedTokens: in.EstimatedTokens,
			ActualTokens:    in.ActualTokens,
			CreatedAt:       now,
		}
		if err := s.promptRepo.CreatePrompt(txCtx, prompt); err != nil {
			return fmt.Errorf("create prompt: %w", err)
		}

		response := &llmModels.Response{
			PromptID:   prompt.ID,
			Provider:   in.Provider,
			Model:      in.Model,
			Content:    in.Content,
			TokensUsed: in.TokensUsed,
			Cost:       in.Cost,
			LatencyMs:  in.LatencyMs,
			CreatedAt:  now,
		}
		if err := s.responseRepo.CreateResponse(txCtx, response); err != nil {
			return fmt.Errorf("create response: %w", err)
		}

		result.ConversationID = conversationID
		result.PromptID = prompt.ID
		result.ResponseID = response.ID
		result.Created = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Created {
		if err := s.conversationRepo.TouchConversation(ctx, result.ConversationID, now); err != nil {
			s.logger.Warn("failed to touch conversation",
				"conversation_id", result.ConversationID,
				"error", err,
			)
		}
	}

	s.logger.Info("exchange saved",
		"conversation_id", result.ConversationID,
		"prompt_id", result.PromptID,
		"response_id", result.ResponseID,
		"created", result.Created,
	)
	return result, nil
}

func (s *Service) resolveConversation(ctx context.Context, in *SaveExchangeInput, now time.Time) (string, bool, error) {
	if in.ConversationID != nil && *in.ConversationID != "" {
		conv, err := s.conversationRepo.GetConversation(ctx, *in.ConversationID, in.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return "", false, err
			}
			return "", false, fmt.Errorf("get conversation: %w", err)
		}
		return conv.ID, false, nil
	}

	conv := &llmModels.Conversation{
		UserID:    in.UserID,
		Title:     llmModels.TitleFromPrompt(in.Prompt, config.MaxConversationTitleLength),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversationRepo.CreateConversation(ctx, conv); err != nil {
		return "", false, fmt.Errorf("create conversation: %w", err)
	}
	return conv.ID, true, nil
}
