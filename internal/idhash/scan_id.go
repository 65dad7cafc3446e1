package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// ComputeScanID computes a deterministic scan_id using SHA256.
// Formula: SHA256(started_at|classifier|sorted(addresses) joined by ",")
// Address order does not affect the result.
// Returns hex-encoded hash (64 characters).
func ComputeScanID(startedAt int64, classifier string, addresses []string) string {
	sorted := make([]string, len(addresses))
	copy(sorted, addresses)
	sort.Strings(sorted)

	data := fmt.Sprintf("%d|%s|%s",
		startedAt,
		classifier,
		strings.Join(sorted, ","),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
