package reporting

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-scanner/internal/classifier"
	"solana-token-scanner/internal/domain"
)

var genTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func token(symbol, name string, price, liq, vol, change float64, score *float64) *domain.Token {
	return &domain.Token{
		BaseToken:      domain.BaseToken{Address: symbol + "Mint", Symbol: symbol, Name: name},
		URL:            "https://dexscreener.com/solana/" + symbol,
		PriceUSD:       price,
		LiquidityUSD:   liq,
		VolumeH24:      vol,
		PriceChangeH24: change,
		Score:          score,
	}
}

func f64(v float64) *float64 { return &v }

func categorized() *classifier.Result {
	return &classifier.Result{
		Kind:       classifier.KindCategorized,
		Classifier: "Enhanced Meme Token Classifier",
		Categories: map[domain.Category][]*domain.Token{
			domain.CategoryMoonshot: {
				token("BONK", "Bonk", 0.0000231, 2_500_000, 1_234_567.8, 12.34, f64(9.1)),
				token("WIF", "dogwifhat", 2.5, 5_000_000, 40_000_000, -3.21, f64(8.6)),
			},
			domain.CategorySolidInvestment: {},
			domain.CategoryPotential: {
				token("PIPE", "Pipe | Token", 0.01, 150_000, 20_000, 0, f64(5.5)),
			},
			domain.CategoryRisky: {},
		},
	}
}

func TestBuild_Categorized(t *testing.T) {
	r := Build(categorized(), genTime)

	assert.Equal(t, "Enhanced Meme Token Classifier", r.Classifier)
	assert.Equal(t, "categorized", r.Kind)
	assert.Equal(t, 3, r.TokenCount)
	require.Len(t, r.Sections, 2, "empty categories are omitted")

	assert.Equal(t, "Moonshot", r.Sections[0].Category)
	assert.Equal(t, 1, r.Sections[0].Rows[0].Rank)
	assert.Equal(t, 2, r.Sections[0].Rows[1].Rank)
	assert.Equal(t, "Potential", r.Sections[1].Category)
	assert.Equal(t, 1, r.Sections[1].Rows[0].Rank)
	assert.Len(t, r.Rows(), 3)
}

func TestBuild_Filtered(t *testing.T) {
	res := &classifier.Result{
		Kind:       classifier.KindFiltered,
		Classifier: "Threshold Classifier",
		Tokens:     []*domain.Token{token("AAA", "Alpha", 1, 200_000, 50_000, 4, nil)},
	}
	r := Build(res, genTime)

	require.Len(t, r.Sections, 1)
	assert.Empty(t, r.Sections[0].Category)
	assert.Nil(t, r.Sections[0].Rows[0].Score)
}

func TestBuild_Empty(t *testing.T) {
	r := Build(&classifier.Result{Kind: classifier.KindFiltered, Classifier: "Threshold Classifier"}, genTime)
	assert.Empty(t, r.Sections)
	assert.Contains(t, RenderMarkdown(r), "No tokens found matching the criteria.")

	assert.Empty(t, Build(nil, genTime).Sections)
}

func TestBuild_CopiesScore(t *testing.T) {
	res := categorized()
	r := Build(res, genTime)
	*res.Categories[domain.CategoryMoonshot][0].Score = 0

	assert.Equal(t, 9.1, *r.Sections[0].Rows[0].Score)
}

func TestRenderMarkdown(t *testing.T) {
	r := Build(categorized(), genTime)
	r.ScanID = "abc123"
	md := RenderMarkdown(r)

	assert.Contains(t, md, "# Token Scan Report")
	assert.Contains(t, md, "Generated: 2024-03-01T12:00:00Z")
	assert.Contains(t, md, "Scan: `abc123`")
	assert.Contains(t, md, "## Moonshot (2)")
	assert.Contains(t, md, "## Potential (1)")
	assert.NotContains(t, md, "## Risky")
	assert.Contains(t, md, "| 1 | BONK (Bonk) | $0.0000 | $1,234,568 | $2,500,000 | +12.3% | 9.10 |")
	assert.Contains(t, md, "| 2 | WIF (dogwifhat) | $2.5000 | $40,000,000 | $5,000,000 | -3.2% | 8.60 |")
	assert.Contains(t, md, `PIPE (Pipe \| Token)`)
}

func TestRenderCSV(t *testing.T) {
	out := RenderCSV(Build(categorized(), genTime))

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		"1", "Moonshot", "BONK", "Bonk", "BONKMint",
		"0.0000231", "2500000.00", "1234567.80", "12.34", "9.1000",
	}, records[1])
	assert.Equal(t, "Pipe | Token", records[3][3])
}

func TestRenderCSV_NoScore(t *testing.T) {
	res := &classifier.Result{
		Kind:   classifier.KindFiltered,
		Tokens: []*domain.Token{token("A,B", "Comma, Inc", 1, 1, 1, 1, nil)},
	}
	records, err := csv.NewReader(strings.NewReader(RenderCSV(Build(res, genTime)))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A,B", records[1][2])
	assert.Equal(t, "", records[1][9])
}
