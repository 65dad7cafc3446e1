package memory

import (
	"context"
	"sort"
	"sync"

	"solana-token-scanner/internal/domain"
	"solana-token-scanner/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots []*domain.MarketSnapshot
	keys      map[storage.SnapshotKey]struct{}
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		keys: make(map[storage.SnapshotKey]struct{}),
	}
}

// InsertBulk adds snapshots atomically. Fails entire batch on any duplicate.
func (s *SnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.MarketSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	if err := storage.ValidateSnapshots(snapshots); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snapshots {
		if _, exists := s.keys[storage.KeyOf(snap)]; exists {
			return storage.ErrDuplicateKey
		}
	}

	for _, snap := range snapshots {
		s.snapshots = append(s.snapshots, copySnapshot(snap))
		s.keys[storage.KeyOf(snap)] = struct{}{}
	}
	return nil
}

// GetByAddress retrieves all snapshots for a token, ordered by scanned_at ASC.
func (s *SnapshotStore) GetByAddress(_ context.Context, address string) ([]*domain.MarketSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MarketSnapshot
	for _, snap := range s.snapshots {
		if snap.Address == address {
			result = append(result, copySnapshot(snap))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ScannedAt < result[j].ScannedAt
	})
	return result, nil
}

// GetByScanID retrieves all snapshots of one scan, ordered by address, pair_address.
func (s *SnapshotStore) GetByScanID(_ context.Context, scanID string) ([]*domain.MarketSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MarketSnapshot
	for _, snap := range s.snapshots {
		if snap.ScanID == scanID {
			result = append(result, copySnapshot(snap))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Address != result[j].Address {
			return result[i].Address < result[j].Address
		}
		return result[i].PairAddress < result[j].PairAddress
	})
	return result, nil
}

func copySnapshot(s *domain.MarketSnapshot) *domain.MarketSnapshot {
	c := *s
	if s.MarketCap != nil {
		mc := *s.MarketCap
		c.MarketCap = &mc
	}
	return &c
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
