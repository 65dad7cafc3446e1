package classifier

import (
	"time"

	"solana-token-scanner/internal/domain"
)

var testNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func socials(types ...string) []domain.Social {
	out := make([]domain.Social, len(types))
	for i, t := range types {
		out[i] = domain.Social{Type: t}
	}
	return out
}

func hoursAgo(h float64) *int64 {
	ms := testNow.Add(-time.Duration(h * float64(time.Hour))).UnixMilli()
	return &ms
}

func f64(v float64) *float64 { return &v }

// strongToken has the market data of a healthy, well-socialized token.
func strongToken(addr string) *domain.Token {
	return &domain.Token{
		BaseToken:         domain.BaseToken{Address: addr, Symbol: addr},
		LiquidityUSD:      250000,
		VolumeH24:         600000,
		TxnsH24:           domain.Txns{Buys: 200, Sells: 50},
		PriceChangeH24:    5,
		Socials:           socials("twitter", "telegram"),
		LaunchTimestampMs: hoursAgo(100),
	}
}

func mustWeighted() *WeightedScore {
	p, err := weightedParams(defaultWeightedConfig())
	if err != nil {
		panic(err)
	}
	return NewWeightedScore(p, WithClock(fixedClock))
}

func mustThreshold() ThresholdParams {
	p, err := thresholdParams(defaultThresholdConfig())
	if err != nil {
		panic(err)
	}
	return p
}
