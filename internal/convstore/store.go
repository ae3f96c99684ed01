// Package convstore persists workflow conversations and their pending
// clarification requests, so a suspended multi-turn run survives outside one
// process's memory.
package convstore

import (
	"context"
	"time"

	"server/internal/domain"
)

// Record is one stored conversation. PendingRequestID and PendingPrompt are
// set while the workflow is suspended waiting for a caller answer.
type Record struct {
	ID               string             `json:"id"`
	PartitionKey     string             `json:"partition_key"`
	Turns            []domain.AgentTurn `json:"turns"`
	UserTurns        int                `json:"user_turns"`
	PendingRequestID string             `json:"pending_request_id,omitempty"`
	PendingPrompt    string             `json:"pending_prompt,omitempty"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// Filter selects records for Query. Zero values match everything.
type Filter struct {
	PartitionKey     string
	PendingRequestID string
	PendingOnly      bool
	Limit            int
}

// Store is the conversation-store capability port. Get returns
// domain.ErrNotFound for unknown ids.
type Store interface {
	Get(ctx context.Context, id, partitionKey string) (*Record, error)
	Upsert(ctx context.Context, rec *Record) (*Record, error)
	Query(ctx context.Context, f Filter) ([]Record, error)
}
