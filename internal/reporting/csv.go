package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"
)

var csvHeader = []string{
	"rank", "category", "symbol", "name", "address",
	"price_usd", "liquidity_usd", "volume_h24", "price_change_h24", "score",
}

// RenderCSV renders report rows as CSV string.
// Score is empty for classifiers that do not score.
func RenderCSV(r *Report) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// csv.Writer only fails on the underlying writer, which is a strings.Builder.
	_ = w.Write(csvHeader)
	for _, row := range r.Rows() {
		score := ""
		if row.Score != nil {
			score = strconv.FormatFloat(*row.Score, 'f', 4, 64)
		}
		_ = w.Write([]string{
			strconv.Itoa(row.Rank),
			row.Category,
			row.Symbol,
			row.Name,
			row.Address,
			strconv.FormatFloat(row.PriceUSD, 'f', -1, 64),
			strconv.FormatFloat(row.LiquidityUSD, 'f', 2, 64),
			strconv.FormatFloat(row.VolumeH24, 'f', 2, 64),
			strconv.FormatFloat(row.PriceChangeH24, 'f', 2, 64),
			score,
		})
	}
	w.Flush()

	return sb.String()
}
