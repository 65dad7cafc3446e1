package classifier

import (
	"fmt"
	"strings"
)

// Classifier types accepted by FromConfig.
const (
	TypeThreshold       = "threshold"
	TypeSimple          = "simple"
	TypeScoredThreshold = "scored-threshold"
	TypeEnhanced        = "enhanced"
	TypeWeighted        = "weighted"
)

// Config selects a classifier and its parameters.
// Nil fields are missing; the json names match the parameter file format.
type Config struct {
	Type string `json:"type"`

	MinLiquidityUSD        *float64 `json:"min_liquidity_usd,omitempty"`
	GoodLiquidityUSD       *float64 `json:"good_liquidity_usd,omitempty"`
	Min24hVolume           *float64 `json:"min_24h_volume,omitempty"`
	Good24hVolume          *float64 `json:"good_24h_volume,omitempty"`
	MinTransactions        *int64   `json:"min_transactions,omitempty"`
	GoodTransactions       *int64   `json:"good_transactions,omitempty"`
	MaxPriceIncrease24h    *float64 `json:"max_price_increase_24h,omitempty"`
	RequiredSocials        []string `json:"required_socials,omitempty"`
	MinAgeHours            *float64 `json:"min_age_hours,omitempty"`
	MaxHolderConcentration *float64 `json:"max_holder_concentration,omitempty"`
}

// DefaultConfig returns the default parameter set for typ.
func DefaultConfig(typ string) (Config, error) {
	switch normalizeType(typ) {
	case TypeThreshold:
		cfg := defaultThresholdConfig()
		cfg.Type = TypeThreshold
		return cfg, nil
	case TypeSimple:
		cfg := defaultThresholdConfig()
		cfg.Type = TypeSimple
		return cfg, nil
	case TypeEnhanced:
		return defaultWeightedConfig(), nil
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownClassifier, typ)
	}
}

func defaultThresholdConfig() Config {
	return Config{
		MinLiquidityUSD:     float64Ptr(100000),
		Min24hVolume:        float64Ptr(50000),
		MinTransactions:     int64Ptr(50),
		MaxPriceIncrease24h: float64Ptr(500),
		RequiredSocials:     []string{"twitter", "telegram"},
	}
}

func defaultWeightedConfig() Config {
	return Config{
		Type:                   TypeEnhanced,
		MinLiquidityUSD:        float64Ptr(50000),
		GoodLiquidityUSD:       float64Ptr(200000),
		Min24hVolume:           float64Ptr(100000),
		Good24hVolume:          float64Ptr(500000),
		MinTransactions:        int64Ptr(100),
		GoodTransactions:       int64Ptr(300),
		MaxPriceIncrease24h:    float64Ptr(1000),
		RequiredSocials:        []string{"twitter", "telegram"},
		MinAgeHours:            float64Ptr(24),
		MaxHolderConcentration: float64Ptr(80),
	}
}

// FromConfig creates a Classifier from cfg.
// Missing or inconsistent parameters fail here, never during Classify.
func FromConfig(cfg Config, opts ...Option) (Classifier, error) {
	switch normalizeType(cfg.Type) {
	case TypeThreshold:
		p, err := thresholdParams(cfg)
		if err != nil {
			return nil, err
		}
		return NewThreshold(p), nil
	case TypeSimple:
		p, err := thresholdParams(cfg)
		if err != nil {
			return nil, err
		}
		return NewScoredThreshold(p), nil
	case TypeEnhanced:
		p, err := weightedParams(cfg)
		if err != nil {
			return nil, err
		}
		return NewWeightedScore(p, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownClassifier, cfg.Type)
	}
}

// normalizeType maps aliases to their canonical type.
func normalizeType(typ string) string {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case TypeThreshold:
		return TypeThreshold
	case TypeSimple, TypeScoredThreshold:
		return TypeSimple
	case TypeEnhanced, TypeWeighted:
		return TypeEnhanced
	default:
		return ""
	}
}

func thresholdParams(cfg Config) (ThresholdParams, error) {
	if cfg.MinLiquidityUSD == nil {
		return ThresholdParams{}, missing("min_liquidity_usd")
	}
	if cfg.Min24hVolume == nil {
		return ThresholdParams{}, missing("min_24h_volume")
	}
	if cfg.MinTransactions == nil {
		return ThresholdParams{}, missing("min_transactions")
	}
	if cfg.MaxPriceIncrease24h == nil {
		return ThresholdParams{}, missing("max_price_increase_24h")
	}
	if cfg.RequiredSocials == nil {
		return ThresholdParams{}, missing("required_socials")
	}
	if len(cfg.RequiredSocials) == 0 {
		return ThresholdParams{}, invalid("required_socials must not be empty")
	}
	if *cfg.MaxPriceIncrease24h < 0 {
		return ThresholdParams{}, invalid("max_price_increase_24h must not be negative")
	}

	return ThresholdParams{
		MinLiquidityUSD:     *cfg.MinLiquidityUSD,
		Min24hVolume:        *cfg.Min24hVolume,
		MinTransactions:     *cfg.MinTransactions,
		MaxPriceIncrease24h: *cfg.MaxPriceIncrease24h,
		RequiredSocials:     append([]string{}, cfg.RequiredSocials...),
	}, nil
}

func weightedParams(cfg Config) (WeightedParams, error) {
	required := []struct {
		name string
		set  bool
	}{
		{"min_liquidity_usd", cfg.MinLiquidityUSD != nil},
		{"good_liquidity_usd", cfg.GoodLiquidityUSD != nil},
		{"min_24h_volume", cfg.Min24hVolume != nil},
		{"good_24h_volume", cfg.Good24hVolume != nil},
		{"min_transactions", cfg.MinTransactions != nil},
		{"good_transactions", cfg.GoodTransactions != nil},
		{"max_price_increase_24h", cfg.MaxPriceIncrease24h != nil},
		{"required_socials", cfg.RequiredSocials != nil},
		{"min_age_hours", cfg.MinAgeHours != nil},
		{"max_holder_concentration", cfg.MaxHolderConcentration != nil},
	}
	for _, r := range required {
		if !r.set {
			return WeightedParams{}, missing(r.name)
		}
	}

	p := WeightedParams{
		MinLiquidityUSD:        *cfg.MinLiquidityUSD,
		GoodLiquidityUSD:       *cfg.GoodLiquidityUSD,
		Min24hVolume:           *cfg.Min24hVolume,
		Good24hVolume:          *cfg.Good24hVolume,
		MinTransactions:        *cfg.MinTransactions,
		GoodTransactions:       *cfg.GoodTransactions,
		MaxPriceIncrease24h:    *cfg.MaxPriceIncrease24h,
		RequiredSocials:        append([]string{}, cfg.RequiredSocials...),
		MinAgeHours:            *cfg.MinAgeHours,
		MaxHolderConcentration: *cfg.MaxHolderConcentration,
	}

	switch {
	case p.GoodLiquidityUSD <= p.MinLiquidityUSD:
		return WeightedParams{}, invalid("good_liquidity_usd must exceed min_liquidity_usd")
	case p.Good24hVolume <= p.Min24hVolume:
		return WeightedParams{}, invalid("good_24h_volume must exceed min_24h_volume")
	case p.GoodTransactions <= p.MinTransactions:
		return WeightedParams{}, invalid("good_transactions must exceed min_transactions")
	case p.MaxPriceIncrease24h <= stablePriceChangePct:
		return WeightedParams{}, invalid("max_price_increase_24h must exceed 20")
	case len(p.RequiredSocials) == 0:
		return WeightedParams{}, invalid("required_socials must not be empty")
	case p.MinAgeHours < 0 || p.MinAgeHours >= establishedAgeHours:
		return WeightedParams{}, invalid("min_age_hours must be in [0, 720)")
	case p.MaxHolderConcentration <= distributedHolderPct:
		return WeightedParams{}, invalid("max_holder_concentration must exceed 20")
	}

	return p, nil
}

func missing(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingParameter, name)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, msg)
}

func float64Ptr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64       { return &v }
