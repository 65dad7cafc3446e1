package reporting

import (
	"time"

	"solana-token-scanner/internal/classifier"
	"solana-token-scanner/internal/domain"
)

// Report is the presentation form of one scan result.
type Report struct {
	// Metadata
	ScanID      string    `json:"scan_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Classifier  string    `json:"classifier"`
	Kind        string    `json:"kind"`
	TokenCount  int       `json:"token_count"`

	// Sections are per category for categorized results, a single
	// untitled section for filtered ones. Empty categories are omitted.
	Sections []Section `json:"sections"`
}

// Section is one ranked group of rows.
type Section struct {
	Category string `json:"category,omitempty"`
	Rows     []Row  `json:"rows"`
}

// Row is one token line.
type Row struct {
	Rank           int      `json:"rank"` // 1-based within its section
	Category       string   `json:"category,omitempty"`
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	URL            string   `json:"url,omitempty"`
	PriceUSD       float64  `json:"price_usd"`
	LiquidityUSD   float64  `json:"liquidity_usd"`
	VolumeH24      float64  `json:"volume_h24"`
	PriceChangeH24 float64  `json:"price_change_h24"`
	Score          *float64 `json:"score,omitempty"`
}

// Rows returns all rows in section order.
func (r *Report) Rows() []Row {
	var out []Row
	for _, s := range r.Sections {
		out = append(out, s.Rows...)
	}
	return out
}

// Build converts a classifier result into a Report.
func Build(res *classifier.Result, generatedAt time.Time) *Report {
	r := &Report{
		GeneratedAt: generatedAt.UTC(),
		Sections:    []Section{},
	}
	if res == nil {
		return r
	}

	r.Classifier = res.Classifier
	r.Kind = res.Kind.String()
	r.TokenCount = res.Count()

	if res.Kind == classifier.KindFiltered {
		if len(res.Tokens) > 0 {
			r.Sections = append(r.Sections, Section{Rows: buildRows("", res.Tokens)})
		}
		return r
	}

	for _, c := range domain.Categories {
		tokens := res.Categories[c]
		if len(tokens) == 0 {
			continue
		}
		r.Sections = append(r.Sections, Section{
			Category: c.String(),
			Rows:     buildRows(c.String(), tokens),
		})
	}
	return r
}

func buildRows(category string, tokens []*domain.Token) []Row {
	rows := make([]Row, 0, len(tokens))
	for i, t := range tokens {
		row := Row{
			Rank:           i + 1,
			Category:       category,
			Symbol:         t.BaseToken.Symbol,
			Name:           t.BaseToken.Name,
			Address:        t.BaseToken.Address,
			URL:            t.URL,
			PriceUSD:       t.PriceUSD,
			LiquidityUSD:   t.LiquidityUSD,
			VolumeH24:      t.VolumeH24,
			PriceChangeH24: t.PriceChangeH24,
		}
		if t.Score != nil {
			s := *t.Score
			row.Score = &s
		}
		rows = append(rows, row)
	}
	return rows
}
