package classifier

import (
	"math"
	"sort"
	"time"

	"solana-token-scanner/internal/domain"
)

// Sub-score weights. They sum to 1; the weighted sum is scaled to [0,10].
const (
	WeightLiquidity     = 0.10
	WeightVolume        = 0.25
	WeightTransactions  = 0.15
	WeightPrice         = 0.10
	WeightSocial        = 0.20
	WeightMomentum      = 0.15
	WeightAge           = 0.03
	WeightConcentration = 0.02

	maxTotal = 10.0
)

// Fixed grading breakpoints.
const (
	stablePriceChangePct = 20.0  // |Δ24h| at or below scores 1
	distributedHolderPct = 20.0  // top holder share below scores 1
	establishedAgeHours  = 720.0 // 30 days
	neutralScore         = 0.5   // missing age or holder data
)

// WeightedParams configure the WeightedScore classifier.
type WeightedParams struct {
	MinLiquidityUSD        float64
	GoodLiquidityUSD       float64
	Min24hVolume           float64
	Good24hVolume          float64
	MinTransactions        int64
	GoodTransactions       int64
	MaxPriceIncrease24h    float64
	RequiredSocials        []string
	MinAgeHours            float64
	MaxHolderConcentration float64
}

// Option configures WeightedScore.
type Option func(*WeightedScore)

// WithClock sets the time source used for age grading.
func WithClock(now func() time.Time) Option {
	return func(c *WeightedScore) {
		c.now = now
	}
}

// WeightedScore grades every token on eight sub-scores and assigns a category.
type WeightedScore struct {
	params WeightedParams
	now    func() time.Time
}

// NewWeightedScore creates a WeightedScore classifier.
func NewWeightedScore(p WeightedParams, opts ...Option) *WeightedScore {
	c := &WeightedScore{params: p, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Classifier.
func (c *WeightedScore) Name() string {
	return "Enhanced Meme Token Classifier"
}

// Parameters implements Classifier.
func (c *WeightedScore) Parameters() map[string]any {
	p := c.params
	return map[string]any{
		"min_liquidity_usd":        p.MinLiquidityUSD,
		"good_liquidity_usd":       p.GoodLiquidityUSD,
		"min_24h_volume":           p.Min24hVolume,
		"good_24h_volume":          p.Good24hVolume,
		"min_transactions":         p.MinTransactions,
		"good_transactions":        p.GoodTransactions,
		"max_price_increase_24h":   p.MaxPriceIncrease24h,
		"required_socials":         append([]string{}, p.RequiredSocials...),
		"min_age_hours":            p.MinAgeHours,
		"max_holder_concentration": p.MaxHolderConcentration,
	}
}

// Classify implements Classifier. Every token gets Breakdown and Score attached;
// tokens without a category are left out of the result.
func (c *WeightedScore) Classify(tokens []*domain.Token) *Result {
	result := newCategorized(c.Name())
	nowMs := c.now().UnixMilli()

	for _, t := range tokens {
		b := c.Breakdown(t, nowMs)
		total := b.Total
		t.Breakdown = &b
		t.Score = &total

		if cat, ok := AssignCategory(b); ok {
			result.Categories[cat] = append(result.Categories[cat], t)
		}
	}

	for _, cat := range domain.Categories {
		list := result.Categories[cat]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].ScoreValue() > list[j].ScoreValue()
		})
	}
	return result
}

// Breakdown computes the sub-scores and total for t at nowMs.
func (c *WeightedScore) Breakdown(t *domain.Token, nowMs int64) domain.ScoreBreakdown {
	p := c.params
	b := domain.ScoreBreakdown{
		Liquidity:     gradeRange(t.LiquidityUSD, p.MinLiquidityUSD, p.GoodLiquidityUSD),
		Volume:        gradeRange(t.VolumeH24, p.Min24hVolume, p.Good24hVolume),
		Transactions:  gradeRange(float64(t.TxnsH24.Total()), float64(p.MinTransactions), float64(p.GoodTransactions)),
		Price:         gradePriceMovement(t.PriceChangeH24, p.MaxPriceIncrease24h),
		Social:        gradeSocials(t, p.RequiredSocials),
		Momentum:      gradeMomentum(t),
		Age:           gradeAge(t.LaunchTimestampMs, nowMs, p.MinAgeHours),
		Concentration: gradeConcentration(t.TopHolderPct, p.MaxHolderConcentration),
	}

	sum := b.Liquidity*WeightLiquidity +
		b.Volume*WeightVolume +
		b.Transactions*WeightTransactions +
		b.Price*WeightPrice +
		b.Social*WeightSocial +
		b.Momentum*WeightMomentum +
		b.Age*WeightAge +
		b.Concentration*WeightConcentration
	b.Total = clamp(sum*maxTotal, 0, maxTotal)
	return b
}

// gradeRange is 0 below lo, 1 at or above good, linear between.
func gradeRange(v, lo, good float64) float64 {
	switch {
	case v < lo:
		return 0
	case v >= good:
		return 1
	default:
		return clamp01((v - lo) / (good - lo))
	}
}

// gradePriceMovement is 1 for |Δ| ≤ 20%, decaying linearly to 0 at limit.
func gradePriceMovement(changePct, limit float64) float64 {
	change := math.Abs(changePct)
	switch {
	case change > limit:
		return 0
	case change <= stablePriceChangePct:
		return 1
	default:
		return clamp01(1 - (change-stablePriceChangePct)/(limit-stablePriceChangePct))
	}
}

// gradeSocials rewards required channels, extra channels and twitter reach.
func gradeSocials(t *domain.Token, required []string) float64 {
	if len(required) == 0 {
		return 0
	}

	types := t.SocialTypes()
	present := 0
	for _, r := range required {
		if t.HasSocial(r) {
			present++
		}
	}

	base := float64(present) / float64(len(required))
	extra := math.Min(0.2, 0.05*float64(len(types)-present))

	followerBonus := 0.0
	for _, s := range t.Socials {
		if s.Type != "twitter" || s.Followers == nil {
			continue
		}
		switch f := *s.Followers; {
		case f > 10000:
			followerBonus = 0.2
		case f > 5000:
			followerBonus = 0.1
		case f > 1000:
			followerBonus = 0.05
		default:
			followerBonus = 0
		}
	}

	return clamp01(base + extra + followerBonus)
}

// gradeMomentum scores the buy/sell ratio plus a volume trend bonus.
func gradeMomentum(t *domain.Token) float64 {
	sells := t.TxnsH24.Sells
	if sells == 0 {
		sells = 1
	}
	ratio := float64(t.TxnsH24.Buys) / float64(sells)

	var score float64
	switch {
	case ratio >= 1.5:
		score = 1
	case ratio >= 1:
		score = 0.7
	case ratio >= 0.7:
		score = 0.4
	}

	if t.VolumeChangeH24 != nil {
		switch vc := *t.VolumeChangeH24; {
		case vc > 50:
			score += 0.3
		case vc > 0:
			score += 0.2
		case vc > -20:
			score += 0.1
		}
	}

	return clamp01(score)
}

// gradeAge is 0 below minAgeHours, 1 past 30 days, linear between.
func gradeAge(launchMs *int64, nowMs int64, minAgeHours float64) float64 {
	if launchMs == nil {
		return neutralScore
	}
	ageHours := float64(nowMs-*launchMs) / float64(time.Hour/time.Millisecond)

	switch {
	case ageHours < minAgeHours:
		return 0
	case ageHours > establishedAgeHours:
		return 1
	default:
		return clamp01((ageHours - minAgeHours) / (establishedAgeHours - minAgeHours))
	}
}

// gradeConcentration is 0 above limit, 1 below 20%, linear between.
func gradeConcentration(topHolderPct *float64, limit float64) float64 {
	if topHolderPct == nil {
		return neutralScore
	}
	pct := *topHolderPct

	switch {
	case pct > limit:
		return 0
	case pct < distributedHolderPct:
		return 1
	default:
		return clamp01((limit - pct) / (limit - distributedHolderPct))
	}
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

var _ Classifier = (*WeightedScore)(nil)
