package convstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"server/internal/domain"
)

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, id, partitionKey string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok || (partitionKey != "" && rec.PartitionKey != partitionKey) {
		return nil, domain.ErrNotFound
	}
	out := cloneRecord(rec)
	return &out, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, rec *Record) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneRecord(*rec)
	stored.UpdatedAt = time.Now().UTC()
	s.records[stored.ID] = stored
	out := cloneRecord(stored)
	return &out, nil
}

func (s *MemoryStore) Query(ctx context.Context, f Filter) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, rec := range s.records {
		if f.PartitionKey != "" && rec.PartitionKey != f.PartitionKey {
			continue
		}
		if f.PendingRequestID != "" && rec.PendingRequestID != f.PendingRequestID {
			continue
		}
		if f.PendingOnly && rec.PendingRequestID == "" {
			continue
		}
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func cloneRecord(rec Record) Record {
	out := rec
	out.Turns = make([]domain.AgentTurn, len(rec.Turns))
	copy(out.Turns, rec.Turns)
	return out
}

var _ Store = (*MemoryStore)(nil)
