// Package app wires the store, providers and services shared by the
// server and the command-line tools.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"promptlab/internal/config"
	"promptlab/internal/database"
	"promptlab/internal/domain/repositories"
	llmRepo "promptlab/internal/domain/repositories/llm"
	"promptlab/internal/repository/postgres"
	postgresLLM "promptlab/internal/repository/postgres/llm"
	"promptlab/internal/repository/sqlite"
	sqliteLLM "promptlab/internal/repository/sqlite/llm"
)

// Store bundles the repositories of whichever backend DATABASE_URL selects
type Store struct {
	Driver        string
	Tables        *database.TableNames
	Conversations llmRepo.ConversationRepository
	Prompts       llmRepo.PromptRepository
	Responses     llmRepo.ResponseRepository
	ContextFiles  llmRepo.ContextFileRepository
	TxManager     repositories.TransactionManager

	ping  func(ctx context.Context) error
	exec  func(ctx context.Context, stmt string) error
	close func()
}

// IsPostgresURL reports whether url selects the PostgreSQL store
func IsPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// OpenStore connects to PostgreSQL for postgres:// URLs and opens a SQLite
// file otherwise. The schema is created if missing.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	tables := database.NewTableNames(cfg.TablePrefix)

	if IsPostgresURL(cfg.DatabaseURL) {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database connected", "driver", "postgres")

		repoConfig := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
		return &Store{
			Driver:        "postgres",
			Tables:        tables,
			Conversations: postgresLLM.NewConversationRepository(repoConfig),
			Prompts:       postgresLLM.NewPromptRepository(repoConfig),
			Responses:     postgresLLM.NewResponseRepository(repoConfig),
			ContextFiles:  postgresLLM.NewContextFileRepository(repoConfig),
			TxManager:     postgres.NewTransactionManager(pool, logger),
			ping:          pool.Ping,
			exec: func(ctx context.Context, stmt string) error {
				_, err := pool.Exec(ctx, stmt)
				return err
			},
			close: pool.Close,
		}, nil
	}

	db, err := sqlite.Open(ctx, cfg.DatabaseURL, tables)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	logger.Info("database connected", "driver", "sqlite", "path", cfg.DatabaseURL)

	repoConfig := &sqlite.RepositoryConfig{DB: db, Tables: tables, Logger: logger}
	return &Store{
		Driver:        "sqlite",
		Tables:        tables,
		Conversations: sqliteLLM.NewConversationRepository(repoConfig),
		Prompts:       sqliteLLM.NewPromptRepository(repoConfig),
		Responses:     sqliteLLM.NewResponseRepository(repoConfig),
		ContextFiles:  sqliteLLM.NewContextFileRepository(repoConfig),
		TxManager:     sqlite.NewTransactionManager(db, logger),
		ping:          db.PingContext,
		exec: func(ctx context.Context, stmt string) error {
			_, err := db.ExecContext(ctx, stmt)
			return err
		},
		close: func() { _ = db.Close() },
	}, nil
}

// PingContext checks the database is reachable
func (s *Store) PingContext(ctx context.Context) error {
	return s.ping(ctx)
}

// DropTables removes every table for the configured prefix
func (s *Store) DropTables(ctx context.Context) error {
	for _, stmt := range database.DropStatements(s.Tables) {
		if err := s.exec(ctx, stmt); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool
func (s *Store) Close() {
	s.close()
}
