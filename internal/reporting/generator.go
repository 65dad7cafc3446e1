package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"solana-token-scanner/internal/domain"
	"solana-token-scanner/internal/storage"
)

// HistoryReport summarizes tokens surfaced by recent scans.
type HistoryReport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Since       time.Time    `json:"since"`
	Rows        []HistoryRow `json:"rows"`
}

// HistoryRow is one registry entry with its first and latest snapshot.
type HistoryRow struct {
	Address     string `json:"address"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	TimesSeen   int64  `json:"times_seen"`
	FirstSeenAt int64  `json:"first_seen_at"` // Unix ms
	LastSeenAt  int64  `json:"last_seen_at"`  // Unix ms
	Snapshots   int    `json:"snapshots"`

	// Zero when no snapshot was stored.
	LatestPriceUSD     float64 `json:"latest_price_usd"`
	LatestLiquidityUSD float64 `json:"latest_liquidity_usd"`

	// PriceChangePct compares latest and first stored price. Nil without two
	// snapshots or when the first price is zero.
	PriceChangePct *float64 `json:"price_change_pct,omitempty"`
}

// Generator produces history reports from stored data.
type Generator struct {
	tokenStore    storage.TokenStore
	snapshotStore storage.SnapshotStore
	now           func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(tokens storage.TokenStore, snapshots storage.SnapshotStore) *Generator {
	return &Generator{
		tokenStore:    tokens,
		snapshotStore: snapshots,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate reports tokens last seen within window, most recent first.
func (g *Generator) Generate(ctx context.Context, window time.Duration) (*HistoryReport, error) {
	now := g.now()
	since := now.Add(-window)

	records, err := g.tokenStore.ListSeenSince(ctx, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}

	rows := make([]HistoryRow, 0, len(records))
	for _, rec := range records {
		snaps, err := g.snapshotStore.GetByAddress(ctx, rec.Address)
		if err != nil {
			return nil, fmt.Errorf("load snapshots for %s: %w", rec.Address, err)
		}
		rows = append(rows, historyRow(rec, snaps))
	}

	return &HistoryReport{
		GeneratedAt: now,
		Since:       since,
		Rows:        rows,
	}, nil
}

func historyRow(rec *domain.TokenRecord, snaps []*domain.MarketSnapshot) HistoryRow {
	row := HistoryRow{
		Address:     rec.Address,
		Symbol:      rec.Symbol,
		Name:        rec.Name,
		TimesSeen:   rec.TimesSeen,
		FirstSeenAt: rec.FirstSeenAt,
		LastSeenAt:  rec.LastSeenAt,
		Snapshots:   len(snaps),
	}
	if len(snaps) == 0 {
		return row
	}

	// snapshots are ordered by scanned_at ASC
	first, latest := snaps[0], snaps[len(snaps)-1]
	row.LatestPriceUSD = latest.PriceUSD
	row.LatestLiquidityUSD = latest.LiquidityUSD
	if len(snaps) > 1 && first.PriceUSD != 0 {
		pct := (latest.PriceUSD - first.PriceUSD) / first.PriceUSD * 100
		row.PriceChangePct = &pct
	}
	return row
}

// RenderHistoryMarkdown renders a history report as Markdown string.
func RenderHistoryMarkdown(r *HistoryReport) string {
	var sb strings.Builder

	sb.WriteString("# Token History\n\n")
	printer.Fprintf(&sb, "Generated: %s | Since: %s\n\n",
		r.GeneratedAt.Format(time.RFC3339), r.Since.Format(time.RFC3339))

	if len(r.Rows) == 0 {
		sb.WriteString("No tokens seen in this window.\n")
		return sb.String()
	}

	sb.WriteString("| Token | Seen | First Seen | Last Seen | Price | Liq | Change |\n")
	sb.WriteString("|-------|------|------------|-----------|-------|-----|--------|\n")
	for _, row := range r.Rows {
		change := "-"
		if row.PriceChangePct != nil {
			change = printer.Sprintf("%+.1f%%", *row.PriceChangePct)
		}
		printer.Fprintf(&sb, "| %s (%s) | %d | %s | %s | $%.4f | $%.0f | %s |\n",
			escapeCell(row.Symbol), escapeCell(row.Name), row.TimesSeen,
			formatMs(row.FirstSeenAt), formatMs(row.LastSeenAt),
			row.LatestPriceUSD, row.LatestLiquidityUSD, change,
		)
	}
	sb.WriteString("\n")

	return sb.String()
}

func formatMs(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
