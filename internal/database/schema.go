package database

import "fmt"

// PostgresSchema returns idempotent DDL for the PostgreSQL store.
// Prompts cascade with their conversation, responses with their prompt;
// deleting a context file nulls the prompt reference.
func PostgresSchema(t *TableNames) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			title VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t.Conversations),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			size BIGINT NOT NULL DEFAULT 0 CHECK (size >= 0),
			content_type TEXT NOT NULL DEFAULT '',
			storage_path TEXT NOT NULL,
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t.ContextFiles),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			system_prompt TEXT,
			context_file_id UUID REFERENCES %s(id) ON DELETE SET NULL,
			estimated_tokens INTEGER NOT NULL DEFAULT 0 CHECK (estimated_tokens >= 0),
			actual_tokens INTEGER CHECK (actual_tokens >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t.Prompts, t.Conversations, t.ContextFiles),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			prompt_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			content TEXT NOT NULL,
			tokens_used INTEGER NOT NULL DEFAULT 0 CHECK (tokens_used >= 0),
			cost DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (cost >= 0),
			latency_ms BIGINT NOT NULL DEFAULT 0 CHECK (latency_ms >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t.Responses, t.Prompts),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_conversation_idx ON %s (conversation_id, created_at)`, t.Prompts, t.Prompts),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_prompt_idx ON %s (prompt_id, created_at)`, t.Responses, t.Responses),
	}
}

// SQLiteSchema returns idempotent DDL for the SQLite store.
// Timestamps are stored as unix nanoseconds.
func SQLiteSchema(t *TableNames) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`, t.Conversations),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			size INTEGER NOT NULL DEFAULT 0 CHECK (size >= 0),
			content_type TEXT NOT NULL DEFAULT '',
			storage_path TEXT NOT NULL,
			uploaded_at INTEGER NOT NULL
		)`, t.ContextFiles),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			system_prompt TEXT,
			context_file_id TEXT REFERENCES %s(id) ON DELETE SET NULL,
			estimated_tokens INTEGER NOT NULL DEFAULT 0 CHECK (estimated_tokens >= 0),
			actual_tokens INTEGER CHECK (actual_tokens >= 0),
			created_at INTEGER NOT NULL
		)`, t.Prompts, t.Conversations, t.ContextFiles),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			prompt_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			content TEXT NOT NULL,
			tokens_used INTEGER NOT NULL DEFAULT 0 CHECK (tokens_used >= 0),
			cost REAL NOT NULL DEFAULT 0 CHECK (cost >= 0),
			latency_ms INTEGER NOT NULL DEFAULT 0 CHECK (latency_ms >= 0),
			created_at INTEGER NOT NULL
		)`, t.Responses, t.Prompts),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_conversation_idx ON %s (conversation_id, created_at)`, t.Prompts, t.Prompts),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_prompt_idx ON %s (prompt_id, created_at)`, t.Responses, t.Responses),
	}
}

// DropStatements removes every table for the prefix, dependents first.
// Valid for both stores.
func DropStatements(t *TableNames) []string {
	return []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, t.Responses),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, t.Prompts),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, t.ContextFiles),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, t.Conversations),
	}
}
