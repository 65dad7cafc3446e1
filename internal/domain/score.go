package domain

// ScoreBreakdown holds the normalized sub-scores of a weighted classification.
// Every sub-score is in [0,1]; Total is in [0,10].
type ScoreBreakdown struct {
	Liquidity     float64
	Volume        float64
	Transactions  float64
	Price         float64
	Social        float64
	Momentum      float64
	Age           float64
	Concentration float64

	Total float64
}

// Components returns sub-scores keyed by name.
func (b ScoreBreakdown) Components() map[string]float64 {
	return map[string]float64{
		"liquidity":     b.Liquidity,
		"volume":        b.Volume,
		"transactions":  b.Transactions,
		"price":         b.Price,
		"social":        b.Social,
		"momentum":      b.Momentum,
		"age":           b.Age,
		"concentration": b.Concentration,
	}
}
