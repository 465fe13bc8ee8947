package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) a SQLite database at the given DSN.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS agents (
			agent_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			system_prompt TEXT,
			namespace TEXT,
			primary_model TEXT,
			fallback_model TEXT,
			opening_message TEXT,
			quick_messages TEXT,
			is_paid INTEGER NOT NULL DEFAULT 0,
			credits INTEGER NOT NULL DEFAULT 5,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertAgent creates or replaces an agent record.
func (s *SQLiteStore) UpsertAgent(ctx context.Context, agent *domain.AgentRecord) error {
	quickMessages, _ := json.Marshal(agent.QuickMessages)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agents (agent_id, name, description, system_prompt, namespace,
			primary_model, fallback_model, opening_message, quick_messages,
			is_paid, credits, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(agent_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			system_prompt = excluded.system_prompt,
			namespace = excluded.namespace,
			primary_model = excluded.primary_model,
			fallback_model = excluded.fallback_model,
			opening_message = excluded.opening_message,
			quick_messages = excluded.quick_messages,
			is_paid = excluded.is_paid,
			credits = excluded.credits,
			updated_at = excluded.updated_at`,
		agent.AgentID, agent.Name, agent.Description, agent.SystemPrompt, agent.Namespace,
		agent.PrimaryModel, agent.FallbackModel, agent.OpeningMessage, string(quickMessages),
		agent.IsPaid, agent.Credits, agent.CreatedAt, agent.UpdatedAt)
	return err
}

// GetAgent retrieves an agent record by ID. Returns nil when not found.
func (s *SQLiteStore) GetAgent(ctx context.Context, agentID string) (*domain.AgentRecord, error) {
	var agent domain.AgentRecord
	var description, systemPrompt, namespace sql.NullString
	var primaryModel, fallbackModel, openingMessage, quickMessages sql.NullString
	var createdAt, updatedAt time.Time

	err := s.db.QueryRowContext(ctx,
		`SELECT agent_id, name, description, system_prompt, namespace,
			primary_model, fallback_model, opening_message, quick_messages,
			is_paid, credits, created_at, updated_at
		FROM agents WHERE agent_id = ?`, agentID).Scan(
		&agent.AgentID, &agent.Name, &description, &systemPrompt, &namespace,
		&primaryModel, &fallbackModel, &openingMessage, &quickMessages,
		&agent.IsPaid, &agent.Credits, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	agent.Description = description.String
	agent.SystemPrompt = systemPrompt.String
	agent.Namespace = namespace.String
	agent.PrimaryModel = primaryModel.String
	agent.FallbackModel = fallbackModel.String
	agent.OpeningMessage = openingMessage.String
	agent.CreatedAt = createdAt
	agent.UpdatedAt = updatedAt
	if quickMessages.Valid && quickMessages.String != "" {
		if err := json.Unmarshal([]byte(quickMessages.String), &agent.QuickMessages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quick messages: %w", err)
		}
	}

	return &agent, nil
}

// DecrementCredits decreases an agent's credits by one, never below zero.
func (s *SQLiteStore) DecrementCredits(ctx context.Context, agentID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE agents SET credits = credits - 1, updated_at = CURRENT_TIMESTAMP
		WHERE agent_id = ? AND credits > 0`, agentID)
	return err
}
