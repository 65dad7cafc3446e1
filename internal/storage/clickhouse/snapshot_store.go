package clickhouse

import (
	"context"
	"fmt"

	"solana-token-scanner/internal/domain"
	"solana-token-scanner/internal/storage"
)

// chRows is the subset of driver.Rows used by scanners.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertBulk adds snapshots. Fails entire batch on duplicate (scan_id, address, pair_address).
func (s *SnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.MarketSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	if err := storage.ValidateSnapshots(snapshots); err != nil {
		return err
	}

	// MergeTree does not enforce uniqueness, so check existing rows per scan.
	scans := make(map[string]struct{})
	for _, snap := range snapshots {
		scans[snap.ScanID] = struct{}{}
	}
	for scanID := range scans {
		existing, err := s.keysForScan(ctx, scanID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for _, snap := range snapshots {
			if _, dup := existing[storage.KeyOf(snap)]; dup {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO market_snapshots (
			scan_id, address, pair_address, scanned_at,
			price_usd, liquidity_usd, volume_h24, price_change_h24,
			buys, sells, market_cap
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.ScanID, snap.Address, snap.PairAddress, uint64(snap.ScannedAt),
			snap.PriceUSD, snap.LiquidityUSD, snap.VolumeH24, snap.PriceChangeH24,
			uint64(snap.Buys), uint64(snap.Sells), snap.MarketCap,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByAddress retrieves all snapshots for a token, ordered by scanned_at ASC.
func (s *SnapshotStore) GetByAddress(ctx context.Context, address string) ([]*domain.MarketSnapshot, error) {
	query := `
		SELECT scan_id, address, pair_address, scanned_at,
			price_usd, liquidity_usd, volume_h24, price_change_h24,
			buys, sells, market_cap
		FROM market_snapshots
		WHERE address = ?
		ORDER BY scanned_at ASC, scan_id ASC, pair_address ASC
	`

	rows, err := s.conn.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("query by address: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetByScanID retrieves all snapshots of one scan.
func (s *SnapshotStore) GetByScanID(ctx context.Context, scanID string) ([]*domain.MarketSnapshot, error) {
	query := `
		SELECT scan_id, address, pair_address, scanned_at,
			price_usd, liquidity_usd, volume_h24, price_change_h24,
			buys, sells, market_cap
		FROM market_snapshots
		WHERE scan_id = ?
		ORDER BY address ASC, pair_address ASC
	`

	rows, err := s.conn.Query(ctx, query, scanID)
	if err != nil {
		return nil, fmt.Errorf("query by scan id: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

func (s *SnapshotStore) keysForScan(ctx context.Context, scanID string) (map[storage.SnapshotKey]struct{}, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT address, pair_address FROM market_snapshots WHERE scan_id = ?
	`, scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[storage.SnapshotKey]struct{})
	for rows.Next() {
		k := storage.SnapshotKey{ScanID: scanID}
		if err := rows.Scan(&k.Address, &k.PairAddress); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func scanSnapshots(rows chRows) ([]*domain.MarketSnapshot, error) {
	var result []*domain.MarketSnapshot

	for rows.Next() {
		var snap domain.MarketSnapshot
		var scannedAt, buys, sells uint64

		err := rows.Scan(
			&snap.ScanID, &snap.Address, &snap.PairAddress, &scannedAt,
			&snap.PriceUSD, &snap.LiquidityUSD, &snap.VolumeH24, &snap.PriceChangeH24,
			&buys, &sells, &snap.MarketCap,
		)
		if err != nil {
			return nil, fmt.Errorf("scan market snapshot row: %w", err)
		}

		snap.ScannedAt = int64(scannedAt)
		snap.Buys = int64(buys)
		snap.Sells = int64(sells)
		result = append(result, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market snapshot rows: %w", err)
	}

	return result, nil
}
