package migrations

import (
	"context"
	"fmt"

	"solana-token-scanner/internal/storage/postgres"
)

// RunPostgresMigrations creates the token registry schema.
// Every file uses IF NOT EXISTS, so reruns are no-ops.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, m := range files {
		// pgx runs multi-statement text through the simple protocol when no args are given.
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply postgres migration %s: %w", m.name, err)
		}
	}
	return nil
}
