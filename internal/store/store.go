// Package store persists agent configuration records.
package store

import (
	"context"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

// Store is the persistence interface for agent records.
type Store interface {
	// UpsertAgent creates or replaces an agent record.
	UpsertAgent(ctx context.Context, agent *domain.AgentRecord) error

	// GetAgent returns an agent record, or nil when none exists.
	GetAgent(ctx context.Context, agentID string) (*domain.AgentRecord, error)

	// DecrementCredits decreases an agent's credits by one, stopping at zero.
	DecrementCredits(ctx context.Context, agentID string) error

	// Close releases the underlying resources.
	Close() error
}
