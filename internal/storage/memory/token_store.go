package memory

import (
	"context"
	"sort"
	"sync"

	"solana-token-scanner/internal/domain"
	"solana-token-scanner/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu      sync.RWMutex
	records map[string]*domain.TokenRecord // keyed by address
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		records: make(map[string]*domain.TokenRecord),
	}
}

// Upsert records one sighting of a token.
func (s *TokenStore) Upsert(_ context.Context, r *domain.TokenRecord) error {
	if r == nil || r.Address == "" {
		return storage.ErrInvalidInput
	}

	firstSeen := r.FirstSeenAt
	if firstSeen == 0 || firstSeen > r.LastSeenAt {
		firstSeen = r.LastSeenAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[r.Address]
	if !ok {
		rec := copyRecord(r)
		rec.FirstSeenAt = firstSeen
		rec.TimesSeen = 1
		s.records[r.Address] = rec
		return nil
	}

	existing.Symbol = r.Symbol
	existing.Name = r.Name
	existing.Tags = copyTags(r.Tags)
	existing.FirstSeenAt = min(existing.FirstSeenAt, firstSeen)
	existing.LastSeenAt = max(existing.LastSeenAt, r.LastSeenAt)
	existing.TimesSeen++
	return nil
}

// GetByAddress retrieves a record by token address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByAddress(_ context.Context, address string) (*domain.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.records[address]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyRecord(r), nil
}

// ListSeenSince retrieves records with LastSeenAt >= sinceMs.
func (s *TokenStore) ListSeenSince(_ context.Context, sinceMs int64) ([]*domain.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TokenRecord
	for _, r := range s.records {
		if r.LastSeenAt >= sinceMs {
			result = append(result, copyRecord(r))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].LastSeenAt != result[j].LastSeenAt {
			return result[i].LastSeenAt > result[j].LastSeenAt
		}
		return result[i].Address < result[j].Address
	})
	return result, nil
}

func copyRecord(r *domain.TokenRecord) *domain.TokenRecord {
	c := *r
	c.Tags = copyTags(r.Tags)
	return &c
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

var _ storage.TokenStore = (*TokenStore)(nil)
