// Package normalization converts upstream pair records into canonical tokens.
package normalization

import (
	"errors"
	"fmt"

	"solana-token-scanner/internal/dexscreener"
	"solana-token-scanner/internal/domain"
)

// ErrNormalization is returned when a required numeric field is present but not numeric.
var ErrNormalization = errors.New("normalization error")

// Normalizer fills defaults on raw pairs and converts them to domain tokens.
type Normalizer struct{}

// New creates a new Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Fill applies defaults to p in place:
//   - marketCap = priceUsd * baseToken.totalSupply when both are non-zero numbers
//   - pairCreatedAt = createAt when pairCreatedAt is absent
//   - info = {socials: []} when info is absent
//
// Fill is idempotent.
func (n *Normalizer) Fill(p *dexscreener.Pair) error {
	price, err := p.PriceUSD.Decimal()
	if err != nil {
		return fmt.Errorf("%w: priceUsd: %v", ErrNormalization, err)
	}
	supply, err := p.BaseToken.TotalSupply.Decimal()
	if err != nil {
		return fmt.Errorf("%w: baseToken.totalSupply: %v", ErrNormalization, err)
	}
	if !price.IsZero() && !supply.IsZero() {
		p.MarketCap = domain.NumberFromString(price.Mul(supply).String())
	}

	if !p.PairCreatedAt.IsSet() {
		p.PairCreatedAt = p.CreateAt
	}

	if p.Info == nil {
		p.Info = &dexscreener.Info{}
	}
	if p.Info.Socials == nil {
		p.Info.Socials = []dexscreener.Social{}
	}

	return nil
}

// Normalize fills a copy of p and converts it to a Token.
// The caller's pair is not modified.
func (n *Normalizer) Normalize(p dexscreener.Pair) (*domain.Token, error) {
	if p.Info != nil {
		info := *p.Info
		p.Info = &info
	}
	if err := n.Fill(&p); err != nil {
		return nil, err
	}

	price, err := required("priceUsd", p.PriceUSD)
	if err != nil {
		return nil, err
	}
	liquidity, err := required("liquidity.usd", p.Liquidity.USD)
	if err != nil {
		return nil, err
	}
	volume, err := required("volume.h24", p.Volume.H24)
	if err != nil {
		return nil, err
	}
	priceChange, err := required("priceChange.h24", p.PriceChange.H24)
	if err != nil {
		return nil, err
	}
	buys, err := requiredInt("txns.h24.buys", p.Txns.H24.Buys)
	if err != nil {
		return nil, err
	}
	sells, err := requiredInt("txns.h24.sells", p.Txns.H24.Sells)
	if err != nil {
		return nil, err
	}

	t := &domain.Token{
		BaseToken: domain.BaseToken{
			Address: p.BaseToken.Address,
			Symbol:  p.BaseToken.Symbol,
			Name:    p.BaseToken.Name,
		},
		PairAddress:    p.PairAddress,
		ChainID:        p.ChainID,
		DexID:          p.DexID,
		URL:            p.URL,
		PriceUSD:       price,
		LiquidityUSD:   nonNegative(liquidity),
		VolumeH24:      nonNegative(volume),
		PriceChangeH24: priceChange,
		TxnsH24: domain.Txns{
			Buys:  max(buys, 0),
			Sells: max(sells, 0),
		},
		JupiterTags: []string{},
	}

	if p.VolumeChange != nil {
		t.VolumeChangeH24 = optional(p.VolumeChange.H24)
	}
	t.MarketCap = optional(p.MarketCap)
	if created, err := p.PairCreatedAt.Int(); err == nil {
		t.PairCreatedAtMs = created
	}

	t.Socials = make([]domain.Social, 0, len(p.Info.Socials))
	for _, s := range p.Info.Socials {
		social := domain.Social{Type: s.Type}
		if s.Followers.IsSet() {
			if f, err := s.Followers.Int(); err == nil {
				social.Followers = &f
			}
		}
		t.Socials = append(t.Socials, social)
	}

	if p.Info.LaunchDate.IsSet() {
		if ms, err := p.Info.LaunchDate.Int(); err == nil && ms > 0 {
			t.LaunchTimestampMs = &ms
		}
	}
	if len(p.Info.TopHolders) > 0 {
		t.TopHolderPct = optional(p.Info.TopHolders[0].Percentage)
	}

	return t, nil
}

func required(field string, v domain.Number) (float64, error) {
	f, err := v.Float()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrNormalization, field, err)
	}
	return f, nil
}

func requiredInt(field string, v domain.Number) (int64, error) {
	i, err := v.Int()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrNormalization, field, err)
	}
	return i, nil
}

// optional returns nil for absent or unparsable values.
func optional(v domain.Number) *float64 {
	if !v.IsSet() {
		return nil
	}
	f, err := v.Float()
	if err != nil {
		return nil
	}
	return &f
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
