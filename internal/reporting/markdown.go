package reporting

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer groups thousands in money columns.
var printer = message.NewPrinter(language.English)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Token Scan Report\n\n")
	printer.Fprintf(&sb, "Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339))
	if r.ScanID != "" {
		printer.Fprintf(&sb, "Scan: `%s`\n\n", r.ScanID)
	}
	printer.Fprintf(&sb, "Classifier: %s (%s) | Tokens: %d\n\n", r.Classifier, r.Kind, r.TokenCount)

	if len(r.Sections) == 0 {
		sb.WriteString("No tokens found matching the criteria.\n")
		return sb.String()
	}

	for _, s := range r.Sections {
		if s.Category != "" {
			printer.Fprintf(&sb, "## %s (%d)\n\n", s.Category, len(s.Rows))
		} else {
			printer.Fprintf(&sb, "## Results (%d)\n\n", len(s.Rows))
		}

		sb.WriteString("| # | Token | Price | 24h Vol | Liq | 24h | Score | Address |\n")
		sb.WriteString("|---|-------|-------|---------|-----|-----|-------|---------|\n")
		for _, row := range s.Rows {
			printer.Fprintf(&sb, "| %d | %s (%s) | $%.4f | $%.0f | $%.0f | %+.1f%% | %s | `%s` |\n",
				row.Rank,
				escapeCell(row.Symbol), escapeCell(row.Name),
				row.PriceUSD, row.VolumeH24, row.LiquidityUSD, row.PriceChangeH24,
				formatScore(row.Score),
				row.Address,
			)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatScore(s *float64) string {
	if s == nil {
		return "-"
	}
	return printer.Sprintf("%.2f", *s)
}

// escapeCell keeps token names from breaking the table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
