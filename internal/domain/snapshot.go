package domain

// MarketSnapshot is the market data of one token observed by one scan.
// Corresponds to market_snapshots table in ClickHouse. Scores are never stored.
type MarketSnapshot struct {
	ScanID         string   // deterministic scan hash
	Address        string   // base token address
	PairAddress    string   // pair the data came from
	ScannedAt      int64    // scan time (ms)
	PriceUSD       float64  // USD price
	LiquidityUSD   float64  // pool liquidity
	VolumeH24      float64  // 24h volume
	PriceChangeH24 float64  // 24h price change (%)
	Buys           int64    // 24h buys
	Sells          int64    // 24h sells
	MarketCap      *float64 // derived market cap (nullable)
}

// SnapshotFromToken builds a snapshot of t for the given scan.
func SnapshotFromToken(scanID string, scannedAt int64, t *Token) *MarketSnapshot {
	return &MarketSnapshot{
		ScanID:         scanID,
		Address:        t.BaseToken.Address,
		PairAddress:    t.PairAddress,
		ScannedAt:      scannedAt,
		PriceUSD:       t.PriceUSD,
		LiquidityUSD:   t.LiquidityUSD,
		VolumeH24:      t.VolumeH24,
		PriceChangeH24: t.PriceChangeH24,
		Buys:           t.TxnsH24.Buys,
		Sells:          t.TxnsH24.Sells,
		MarketCap:      t.MarketCap,
	}
}
