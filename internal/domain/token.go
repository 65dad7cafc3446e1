package domain

// BaseToken identifies the token being evaluated within a pair.
type BaseToken struct {
	Address string
	Symbol  string
	Name    string
}

// Txns holds transaction counts for a window.
type Txns struct {
	Buys  int64
	Sells int64
}

// Total returns buys + sells.
func (t Txns) Total() int64 {
	return t.Buys + t.Sells
}

// Social is a social channel attached to a token.
type Social struct {
	Type      string // twitter, telegram, discord, ...
	Followers *int64 // follower count when the upstream reports it
}

// Token is the merged, normalized unit of work of a scan.
// Optional upstream fields are nil when absent; numeric fields default to zero.
type Token struct {
	BaseToken   BaseToken
	PairAddress string
	ChainID     string
	DexID       string
	URL         string

	PriceUSD        float64
	LiquidityUSD    float64
	VolumeH24       float64
	VolumeChangeH24 *float64 // percent, when reported
	PriceChangeH24  float64  // percent, signed
	TxnsH24         Txns

	Socials           []Social
	LaunchTimestampMs *int64   // info.launchDate (ms)
	PairCreatedAtMs   int64    // 0 when unknown
	TopHolderPct      *float64 // largest holder share, percent
	MarketCap         *float64 // price * total supply, when both known

	JupiterTags        []string
	JupiterDailyVolume float64

	// Set by classifiers; scan-scoped.
	Score     *float64
	Breakdown *ScoreBreakdown
}

// Address returns the base token address.
func (t *Token) Address() string {
	return t.BaseToken.Address
}

// HasSocial reports whether a social channel of the given type is present.
func (t *Token) HasSocial(typ string) bool {
	for _, s := range t.Socials {
		if s.Type == typ {
			return true
		}
	}
	return false
}

// SocialTypes returns the distinct social types in first-seen order.
func (t *Token) SocialTypes() []string {
	seen := make(map[string]struct{}, len(t.Socials))
	types := make([]string, 0, len(t.Socials))
	for _, s := range t.Socials {
		if _, ok := seen[s.Type]; ok {
			continue
		}
		seen[s.Type] = struct{}{}
		types = append(types, s.Type)
	}
	return types
}

// ScoreValue returns the attached score or 0.
func (t *Token) ScoreValue() float64 {
	if t.Score == nil {
		return 0
	}
	return *t.Score
}
