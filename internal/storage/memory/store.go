// Package memory is an in-memory exchange recorder, used when no database
// path is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tjfontaine/wirebridge/internal/storage"
)

// Store records exchanges in memory.
type Store struct {
	mu        sync.RWMutex
	exchanges map[string]*storage.Exchange
}

var _ storage.Recorder = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		exchanges: make(map[string]*storage.Exchange),
	}
}

// SaveExchange stores an exchange record.
func (s *Store) SaveExchange(ctx context.Context, ex *storage.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.exchanges[ex.ID]; exists {
		return fmt.Errorf("exchange %s already exists", ex.ID)
	}

	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}

	s.exchanges[ex.ID] = ex
	return nil
}

// GetExchange retrieves an exchange by ID.
func (s *Store) GetExchange(ctx context.Context, id string) (*storage.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ex, exists := s.exchanges[id]
	if !exists {
		return nil, fmt.Errorf("exchange %s not found", id)
	}

	return ex, nil
}

// ListExchanges returns exchange summaries newest first.
func (s *Store) ListExchanges(ctx context.Context, opts storage.ListOptions) ([]storage.ExchangeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.ExchangeSummary
	for _, ex := range s.exchanges {
		if opts.Direction != "" && ex.Direction != opts.Direction {
			continue
		}
		if opts.Model != "" && ex.Model != opts.Model {
			continue
		}
		out = append(out, storage.ExchangeSummary{
			ID:           ex.ID,
			Direction:    ex.Direction,
			Model:        ex.Model,
			Streaming:    ex.Streaming,
			Status:       ex.Status,
			Duration:     ex.Duration,
			FinishReason: ex.FinishReason,
			CreatedAt:    ex.CreatedAt,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
