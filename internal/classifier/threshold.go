package classifier

import (
	"math"
	"sort"

	"solana-token-scanner/internal/domain"
)

// ThresholdParams are the pass/fail thresholds shared by Threshold and ScoredThreshold.
type ThresholdParams struct {
	MinLiquidityUSD     float64
	Min24hVolume        float64
	MinTransactions     int64
	MaxPriceIncrease24h float64
	RequiredSocials     []string
}

func (p ThresholdParams) parameters() map[string]any {
	return map[string]any{
		"min_liquidity_usd":      p.MinLiquidityUSD,
		"min_24h_volume":         p.Min24hVolume,
		"min_transactions":       p.MinTransactions,
		"max_price_increase_24h": p.MaxPriceIncrease24h,
		"required_socials":       append([]string{}, p.RequiredSocials...),
	}
}

// checks holds the outcome of each threshold check for one token.
type checks struct {
	liquidity    bool
	volume       bool
	transactions bool
	price        bool
	social       bool
}

func (p ThresholdParams) check(t *domain.Token) checks {
	c := checks{
		liquidity:    t.LiquidityUSD >= p.MinLiquidityUSD,
		volume:       t.VolumeH24 >= p.Min24hVolume,
		transactions: t.TxnsH24.Total() >= p.MinTransactions,
		price:        math.Abs(t.PriceChangeH24) <= p.MaxPriceIncrease24h,
	}
	for _, s := range p.RequiredSocials {
		if t.HasSocial(s) {
			c.social = true
			break
		}
	}
	return c
}

func (c checks) all() bool {
	return c.liquidity && c.volume && c.transactions && c.price && c.social
}

// Threshold keeps tokens passing every check, in input order.
type Threshold struct {
	params ThresholdParams
}

// NewThreshold creates a Threshold classifier.
func NewThreshold(p ThresholdParams) *Threshold {
	return &Threshold{params: p}
}

// Name implements Classifier.
func (c *Threshold) Name() string {
	return "Threshold Classifier"
}

// Parameters implements Classifier.
func (c *Threshold) Parameters() map[string]any {
	return c.params.parameters()
}

// Classify implements Classifier.
func (c *Threshold) Classify(tokens []*domain.Token) *Result {
	out := make([]*domain.Token, 0, len(tokens))
	for _, t := range tokens {
		if c.params.check(t).all() {
			out = append(out, t)
		}
	}
	return newFiltered(c.Name(), out)
}

// Scored threshold weights.
const (
	scoredLiquidityWeight    = 3
	scoredVolumeWeight       = 3
	scoredTransactionsWeight = 2
	scoredPriceWeight        = 2
	scoredSocialWeight       = 2

	// ScoredThresholdCutoff is the score a token must exceed to be kept.
	ScoredThresholdCutoff = 5
)

// ScoredThreshold scores each passed check, keeps tokens scoring above
// ScoredThresholdCutoff and ranks them by score descending.
type ScoredThreshold struct {
	params ThresholdParams
}

// NewScoredThreshold creates a ScoredThreshold classifier.
func NewScoredThreshold(p ThresholdParams) *ScoredThreshold {
	return &ScoredThreshold{params: p}
}

// Name implements Classifier.
func (c *ScoredThreshold) Name() string {
	return "Advanced Weighted Classifier"
}

// Parameters implements Classifier.
func (c *ScoredThreshold) Parameters() map[string]any {
	return c.params.parameters()
}

// Score returns the weighted pass count for t.
func (c *ScoredThreshold) Score(t *domain.Token) int {
	ch := c.params.check(t)
	score := 0
	if ch.liquidity {
		score += scoredLiquidityWeight
	}
	if ch.volume {
		score += scoredVolumeWeight
	}
	if ch.transactions {
		score += scoredTransactionsWeight
	}
	if ch.price {
		score += scoredPriceWeight
	}
	if ch.social {
		score += scoredSocialWeight
	}
	return score
}

// Classify implements Classifier. Kept tokens get Score attached.
func (c *ScoredThreshold) Classify(tokens []*domain.Token) *Result {
	out := make([]*domain.Token, 0, len(tokens))
	for _, t := range tokens {
		score := c.Score(t)
		if score <= ScoredThresholdCutoff {
			continue
		}
		s := float64(score)
		t.Score = &s
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScoreValue() > out[j].ScoreValue()
	})
	return newFiltered(c.Name(), out)
}

var (
	_ Classifier = (*Threshold)(nil)
	_ Classifier = (*ScoredThreshold)(nil)
)
