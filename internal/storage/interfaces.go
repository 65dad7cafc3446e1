package storage

import (
	"context"

	"solana-token-scanner/internal/domain"
)

// TokenStore provides access to token_registry storage.
type TokenStore interface {
	// Upsert records one sighting of a token. The first sighting inserts the record;
	// later sightings replace symbol, name and tags, extend [FirstSeenAt, LastSeenAt]
	// and increment TimesSeen. The input's TimesSeen is ignored.
	// Returns ErrInvalidInput if address is empty.
	Upsert(ctx context.Context, r *domain.TokenRecord) error

	// GetByAddress retrieves a record by token address. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.TokenRecord, error)

	// ListSeenSince retrieves records with LastSeenAt >= sinceMs,
	// ordered by LastSeenAt DESC, then address ASC.
	ListSeenSince(ctx context.Context, sinceMs int64) ([]*domain.TokenRecord, error)
}

// SnapshotStore provides access to market_snapshots storage.
type SnapshotStore interface {
	// InsertBulk adds snapshots atomically. Fails entire batch on duplicate
	// (scan_id, address, pair_address). Returns ErrInvalidInput for empty keys.
	InsertBulk(ctx context.Context, snapshots []*domain.MarketSnapshot) error

	// GetByAddress retrieves all snapshots for a token, ordered by scanned_at ASC.
	GetByAddress(ctx context.Context, address string) ([]*domain.MarketSnapshot, error)

	// GetByScanID retrieves all snapshots of one scan, ordered by address, pair_address.
	GetByScanID(ctx context.Context, scanID string) ([]*domain.MarketSnapshot, error)
}

// SightingFromToken builds the registry sighting of t at seenAt (ms).
func SightingFromToken(t *domain.Token, seenAt int64) *domain.TokenRecord {
	tags := make([]string, len(t.JupiterTags))
	copy(tags, t.JupiterTags)
	return &domain.TokenRecord{
		Address:     t.BaseToken.Address,
		Symbol:      t.BaseToken.Symbol,
		Name:        t.BaseToken.Name,
		Tags:        tags,
		FirstSeenAt: seenAt,
		LastSeenAt:  seenAt,
		TimesSeen:   1,
	}
}

// SnapshotKey identifies a snapshot within the append-only store.
type SnapshotKey struct {
	ScanID      string
	Address     string
	PairAddress string
}

// KeyOf returns the key of s.
func KeyOf(s *domain.MarketSnapshot) SnapshotKey {
	return SnapshotKey{ScanID: s.ScanID, Address: s.Address, PairAddress: s.PairAddress}
}

// ValidateSnapshots checks keys and intra-batch uniqueness.
func ValidateSnapshots(snapshots []*domain.MarketSnapshot) error {
	seen := make(map[SnapshotKey]struct{}, len(snapshots))
	for _, s := range snapshots {
		if s == nil || s.ScanID == "" || s.Address == "" {
			return ErrInvalidInput
		}
		k := KeyOf(s)
		if _, exists := seen[k]; exists {
			return ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}
	return nil
}
