package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-token-scanner/internal/domain"
	"solana-token-scanner/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

// Upsert records one sighting of a token.
func (s *TokenStore) Upsert(ctx context.Context, r *domain.TokenRecord) error {
	if r == nil || r.Address == "" {
		return storage.ErrInvalidInput
	}

	firstSeen := r.FirstSeenAt
	if firstSeen == 0 || firstSeen > r.LastSeenAt {
		firstSeen = r.LastSeenAt
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		INSERT INTO token_registry (
			address, symbol, name, tags, first_seen_at, last_seen_at, times_seen
		) VALUES ($1, $2, $3, $4, $5, $6, 1)
		ON CONFLICT (address) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			tags = EXCLUDED.tags,
			first_seen_at = LEAST(token_registry.first_seen_at, EXCLUDED.first_seen_at),
			last_seen_at = GREATEST(token_registry.last_seen_at, EXCLUDED.last_seen_at),
			times_seen = token_registry.times_seen + 1
	`

	_, err := s.pool.Exec(ctx, query,
		r.Address,
		r.Symbol,
		r.Name,
		tags,
		firstSeen,
		r.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("upsert token record: %w", err)
	}
	return nil
}

// GetByAddress retrieves a record by token address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByAddress(ctx context.Context, address string) (*domain.TokenRecord, error) {
	query := `
		SELECT address, symbol, name, tags, first_seen_at, last_seen_at, times_seen
		FROM token_registry
		WHERE address = $1
	`

	row := s.pool.QueryRow(ctx, query, address)
	r, err := scanTokenRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token record: %w", err)
	}
	return r, nil
}

// ListSeenSince retrieves records with last_seen_at >= sinceMs.
func (s *TokenStore) ListSeenSince(ctx context.Context, sinceMs int64) ([]*domain.TokenRecord, error) {
	query := `
		SELECT address, symbol, name, tags, first_seen_at, last_seen_at, times_seen
		FROM token_registry
		WHERE last_seen_at >= $1
		ORDER BY last_seen_at DESC, address ASC
	`

	rows, err := s.pool.Query(ctx, query, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("list token records: %w", err)
	}
	defer rows.Close()

	var result []*domain.TokenRecord
	for rows.Next() {
		r, err := scanTokenRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token record: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token records: %w", err)
	}
	return result, nil
}

func scanTokenRecord(row pgx.Row) (*domain.TokenRecord, error) {
	var r domain.TokenRecord
	err := row.Scan(
		&r.Address,
		&r.Symbol,
		&r.Name,
		&r.Tags,
		&r.FirstSeenAt,
		&r.LastSeenAt,
		&r.TimesSeen,
	)
	if err != nil {
		return nil, err
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return &r, nil
}
