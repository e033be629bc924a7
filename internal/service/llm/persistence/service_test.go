package persistence

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"promptlab/internal/database"
	"promptlab/internal/domain"
	llmModels "promptlab/internal/domain/models/llm"
	llmRepo "promptlab/internal/domain/repositories/llm"
	"promptlab/internal/repository/sqlite"
	sqliteLLM "promptlab/internal/repository/sqlite/llm"
	"promptlab/internal/service/llm/conversation"
)

type testStore struct {
	db      *sql.DB
	tables  *database.TableNames
	convs   llmRepo.ConversationRepository
	prompts llmRepo.PromptRepository
	resps   llmRepo.ResponseRepository
	service *Service
	logger  *slog.Logger
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()

	tables := database.NewTableNames("test_")
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), tables)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &sqlite.RepositoryConfig{DB: db, Tables: tables, Logger: logger}

	s := &testStore{
		db:      db,
		tables:  tables,
		convs:   sqliteLLM.NewConversationRepository(cfg),
		prompts: sqliteLLM.NewPromptRepository(cfg),
		resps:   sqliteLLM.NewResponseRepository(cfg),
		logger:  logger,
	}
	s.service = NewService(s.convs, s.prompts, s.resps, sqlite.NewTransactionManager(db, logger), logger)
	return s
}

func (s *testStore) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func exchange(conversationID *string, prompt, content string) *SaveExchangeInput {
	return &SaveExchangeInput{
		UserID:          "user-1",
		ConversationID:  conversationID,
		Prompt:          prompt,
		EstimatedTokens: 3,
		Provider:        "gemini",
		Model:           "gemini-1.5-flash",
		Content:         content,
		TokensUsed:      6,
		Cost:            0.00125,
		LatencyMs:       42,
	}
}

func TestSaveExchange_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.service.SaveExchange(ctx, exchange(nil, "What is 2+2?", "4"))
	if err != nil {
		t.Fatalf("SaveExchange() error = %v", err)
	}
	if !first.Created {
		t.Error("expected a new conversation")
	}
	if first.ConversationID == "" || first.PromptID == "" || first.ResponseID == "" {
		t.Fatalf("missing ids: %+v", first)
	}

	second, err := s.service.SaveExchange(ctx, exchange(&first.ConversationID, "And 3+3?", "6"))
	if err != nil {
		t.Fatalf("SaveExchange() second error = %v", err)
	}
	if second.Created || second.ConversationID != first.ConversationID {
		t.Errorf("second exchange = %+v, want same conversation", second)
	}

	loader := conversation.NewHistoryLoader(s.convs, s.prompts, s.logger)
	turns, err := loader.LoadHistory(ctx, first.ConversationID, "user-1")
	if err != nil {
		t.Fatalf("LoadHistory() error = %v", err)
	}
	want := []llmModels.HistoryTurn{
		{User: "What is 2+2?", Assistant: "4"},
		{User: "And 3+3?", Assistant: "6"},
	}
	if len(turns) != len(want) {
		t.Fatalf("got %d turns, want %d", len(turns), len(want))
	}
	for i := range want {
		if turns[i] != want[i] {
			t.Errorf("turns[%d] = %+v, want %+v", i, turns[i], want[i])
		}
	}

	conv, err := s.convs.GetConversation(ctx, first.ConversationID, "user-1")
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if conv.Title != "What is 2+2?" {
		t.Errorf("Title = %q", conv.Title)
	}
}

func TestSaveExchange_TouchKeepsTitle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.service.now = func() time.Time { return start }

	first, err := s.service.SaveExchange(ctx, exchange(nil, "first question", "a"))
	if err != nil {
		t.Fatalf("SaveExchange() error = %v", err)
	}

	later := start.Add(time.Hour)
	s.service.now = func() time.Time { return later }
	if _, err := s.service.SaveExchange(ctx, exchange(&first.ConversationID, "second question", "b")); err != nil {
		t.Fatalf("SaveExchange() error = %v", err)
	}

	conv, err := s.convs.GetConversation(ctx, first.ConversationID, "user-1")
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if !conv.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", conv.UpdatedAt, later)
	}
	if !conv.CreatedAt.Equal(start) {
		t.Errorf("CreatedAt = %v, want %v", conv.CreatedAt, start)
	}
	if conv.Title != "first question" {
		t.Errorf("Title = %q, want unchanged", conv.Title)
	}

	// touching again with the same instant is harmless
	if err := s.convs.TouchConversation(ctx, first.ConversationID, later); err != nil {
		t.Errorf("TouchConversation() error = %v", err)
	}
}

// failingResponses fails every insert after the prompt was written
type failingResponses struct{}

func (failingResponses) CreateResponse(ctx context.Context, resp *llmModels.Response) error {
	return errors.New("disk full")
}

func TestSaveExchange_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.service.responseRepo = failingResponses{}

	_, err := s.service.SaveExchange(ctx, exchange(nil, "What is 2+2?", "4"))
	if err == nil {
		t.Fatal("expected error")
	}

	for _, table := range []string{s.tables.Conversations, s.tables.Prompts, s.tables.Responses} {
		if n := s.count(t, table); n != 0 {
			t.Errorf("%s has %d rows after rollback, want 0", table, n)
		}
	}
}

func TestSaveExchange_ForeignConversation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.service.SaveExchange(ctx, exchange(nil, "mine", "ok"))
	if err != nil {
		t.Fatalf("SaveExchange() error = %v", err)
	}

	in := exchange(&first.ConversationID, "intruder", "no")
	in.UserID = "user-2"
	_, err = s.service.SaveExchange(ctx, in)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if n := s.count(t, s.tables.Prompts); n != 1 {
		t.Errorf("prompts = %d, want 1", n)
	}
}
