package domain

// TokenRecord is the registry entry for a token seen by at least one scan.
// Corresponds to token_registry table in PostgreSQL.
type TokenRecord struct {
	Address     string   // PRIMARY KEY, base token address
	Symbol      string   // latest symbol
	Name        string   // latest name
	Tags        []string // latest trending tags
	FirstSeenAt int64    // first scan that surfaced the token (ms)
	LastSeenAt  int64    // latest scan that surfaced the token (ms)
	TimesSeen   int64    // number of scans that surfaced the token
}
