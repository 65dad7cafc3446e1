package domain

// TrendingToken is a discovery candidate from the trending list.
// Read-only once produced by the trending source.
type TrendingToken struct {
	Address     string   // token mint address, merge key
	Tags        []string // upstream-assigned labels
	DailyVolume float64  // 24h volume reported by the trending feed (>= 0)
}
