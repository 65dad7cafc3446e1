package dexscreener

import (
	"encoding/json"

	"solana-token-scanner/internal/domain"
)

// TokensResponse is the response of GET /tokens/{addresses}.
// Pairs are kept raw so that one malformed record does not fail the batch.
type TokensResponse struct {
	SchemaVersion string            `json:"schemaVersion"`
	Pairs         []json.RawMessage `json:"pairs"`
}

// Pair is a pair record as reported by DexScreener.
// Numeric fields arrive as numbers or numeric strings.
type Pair struct {
	ChainID       string        `json:"chainId"`
	DexID         string        `json:"dexId"`
	URL           string        `json:"url"`
	PairAddress   string        `json:"pairAddress"`
	BaseToken     PairToken     `json:"baseToken"`
	QuoteToken    PairToken     `json:"quoteToken"`
	PriceNative   domain.Number `json:"priceNative"`
	PriceUSD      domain.Number `json:"priceUsd"`
	Liquidity     Liquidity     `json:"liquidity"`
	Volume        Windowed      `json:"volume"`
	VolumeChange  *Windowed     `json:"volumeChange,omitempty"`
	PriceChange   Windowed      `json:"priceChange"`
	Txns          TxnWindows    `json:"txns"`
	FDV           domain.Number `json:"fdv"`
	MarketCap     domain.Number `json:"marketCap"`
	PairCreatedAt domain.Number `json:"pairCreatedAt"`
	CreateAt      domain.Number `json:"createAt"`
	Info          *Info         `json:"info,omitempty"`
}

// PairToken is the base or quote side of a pair.
type PairToken struct {
	Address     string        `json:"address"`
	Name        string        `json:"name"`
	Symbol      string        `json:"symbol"`
	TotalSupply domain.Number `json:"totalSupply"`
}

// Liquidity is pool liquidity.
type Liquidity struct {
	USD   domain.Number `json:"usd"`
	Base  domain.Number `json:"base"`
	Quote domain.Number `json:"quote"`
}

// Windowed holds a value per time window.
type Windowed struct {
	M5  domain.Number `json:"m5"`
	H1  domain.Number `json:"h1"`
	H6  domain.Number `json:"h6"`
	H24 domain.Number `json:"h24"`
}

// TxnWindows holds buy/sell counts per time window.
type TxnWindows struct {
	M5  TxnCount `json:"m5"`
	H1  TxnCount `json:"h1"`
	H6  TxnCount `json:"h6"`
	H24 TxnCount `json:"h24"`
}

// TxnCount is a buy/sell count.
type TxnCount struct {
	Buys  domain.Number `json:"buys"`
	Sells domain.Number `json:"sells"`
}

// Info is optional token metadata.
type Info struct {
	ImageURL   string        `json:"imageUrl,omitempty"`
	Websites   []Website     `json:"websites,omitempty"`
	Socials    []Social      `json:"socials"`
	LaunchDate domain.Number `json:"launchDate"`
	TopHolders []Holder      `json:"topHolders,omitempty"`
}

// Website is a project link.
type Website struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Social is a social channel.
type Social struct {
	Type      string        `json:"type"`
	URL       string        `json:"url,omitempty"`
	Followers domain.Number `json:"followers"`
}

// Holder is a top holder entry.
type Holder struct {
	Address    string        `json:"address,omitempty"`
	Percentage domain.Number `json:"percentage"`
}
