package convstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
	"server/internal/sqlinline"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a conversation store backed by PostgreSQL.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Get fetches one conversation by id within a partition.
func (s *PostgresStore) Get(ctx context.Context, id, partitionKey string) (*Record, error) {
	return scanRecord(s.pool.QueryRow(ctx, sqlinline.QGetConversation, id, partitionKey))
}

// Upsert inserts or replaces the conversation record and returns the stored
// copy with its refreshed timestamp.
func (s *PostgresStore) Upsert(ctx context.Context, rec *Record) (*Record, error) {
	turns, err := json.Marshal(rec.Turns)
	if err != nil {
		return nil, fmt.Errorf("convstore: marshal turns: %w", err)
	}
	row := s.pool.QueryRow(ctx, sqlinline.QUpsertConversation,
		rec.ID,
		rec.PartitionKey,
		turns,
		rec.UserTurns,
		rec.PendingRequestID,
		rec.PendingPrompt,
	)
	return scanRecord(row)
}

// Query lists conversations matching the filter, most recent first.
func (s *PostgresStore) Query(ctx context.Context, f Filter) ([]Record, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, sqlinline.QQueryConversations, f.PartitionKey, f.PendingRequestID, f.PendingOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("convstore: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec       Record
		turns     []byte
		updatedAt time.Time
	)
	err := row.Scan(&rec.ID, &rec.PartitionKey, &turns, &rec.UserTurns, &rec.PendingRequestID, &rec.PendingPrompt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("convstore: scan: %w", err)
	}
	if len(turns) > 0 {
		if err := json.Unmarshal(turns, &rec.Turns); err != nil {
			return nil, fmt.Errorf("convstore: unmarshal turns: %w", err)
		}
	}
	rec.UpdatedAt = updatedAt
	return &rec, nil
}

var _ Store = (*PostgresStore)(nil)
