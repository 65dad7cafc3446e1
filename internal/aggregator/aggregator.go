// Package aggregator builds the candidate token set of one scan.
// Flow: trending list → address batches → pair data → filter → normalize → merge
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"solana-token-scanner/internal/dexscreener"
	"solana-token-scanner/internal/domain"
	"solana-token-scanner/internal/normalization"
	"solana-token-scanner/internal/observability"
)

// DefaultBatchSize is the number of addresses per pair request.
const DefaultBatchSize = 30

// Rejection reasons.
const (
	RejectMissingAddress = "missing_address"
	RejectNotNumeric     = "not_numeric"
	RejectLowLiquidity   = "below_min_liquidity"
	RejectLowVolume      = "below_min_volume"
	RejectNormalization  = "normalization"
	RejectDuplicatePair  = "duplicate_pair"
)

// TrendingSource provides the candidate list. Failures yield an empty list.
type TrendingSource interface {
	FetchTrending(ctx context.Context) []domain.TrendingToken
}

// PairSource provides pair data for a batch of addresses. Failures yield an empty batch.
type PairSource interface {
	FetchBatch(ctx context.Context, addresses []string) []dexscreener.Pair
}

// Aggregator runs the acquisition half of a scan.
type Aggregator struct {
	trending   TrendingSource
	pairs      PairSource
	normalizer *normalization.Normalizer
	batchSize  int
	logger     *log.Logger
}

// Options for creating Aggregator.
type Options struct {
	Trending   TrendingSource            // required
	Pairs      PairSource                // required
	Normalizer *normalization.Normalizer // defaults to normalization.New()
	BatchSize  int                       // defaults to DefaultBatchSize
	Logger     *log.Logger
}

// New creates a new Aggregator.
func New(opts Options) *Aggregator {
	a := &Aggregator{
		trending:   opts.Trending,
		pairs:      opts.Pairs,
		normalizer: opts.Normalizer,
		batchSize:  opts.BatchSize,
		logger:     opts.Logger,
	}
	if a.normalizer == nil {
		a.normalizer = normalization.New()
	}
	if a.batchSize <= 0 {
		a.batchSize = DefaultBatchSize
	}
	if a.logger == nil {
		a.logger = log.New(io.Discard, "", 0)
	}
	return a
}

// BatchSize returns the configured batch size.
func (a *Aggregator) BatchSize() int {
	return a.batchSize
}

// Scan returns the normalized tokens whose pairs meet the liquidity and volume minimums,
// in batch order. Batches are fetched sequentially.
// The only error is ctx being done between batches.
func (a *Aggregator) Scan(ctx context.Context, minLiquidity, minVolume float64) ([]*domain.Token, error) {
	trending := a.trending.FetchTrending(ctx)
	if len(trending) == 0 {
		return []*domain.Token{}, nil
	}

	byAddress := make(map[string]domain.TrendingToken, len(trending))
	addresses := make([]string, 0, len(trending))
	for _, t := range trending {
		addresses = append(addresses, t.Address)
		key := strings.ToLower(t.Address)
		if _, ok := byAddress[key]; !ok {
			byAddress[key] = t
		}
	}

	batches := Chunk(addresses, a.batchSize)
	tokens := make([]*domain.Token, 0, len(addresses))

	// A pair is reported for both its base and its quote token, so it can
	// come back in two batches. Keep the first copy.
	type pairKey struct{ address, pair string }
	seen := make(map[pairKey]struct{}, len(addresses))

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan aborted before batch %d/%d: %w", i+1, len(batches), err)
		}

		a.logger.Printf("Processing batch %d/%d of %d tokens...", i+1, len(batches), len(batch))
		pairs := a.pairs.FetchBatch(ctx, batch)

		accepted := 0
		for _, pair := range pairs {
			tok, reason := a.accept(pair, minLiquidity, minVolume)
			if tok == nil {
				observability.RecordPairRejected(reason)
				continue
			}
			key := pairKey{tok.Address(), tok.PairAddress}
			if _, dup := seen[key]; dup {
				observability.RecordPairRejected(RejectDuplicatePair)
				continue
			}
			seen[key] = struct{}{}

			if t, ok := byAddress[strings.ToLower(tok.Address())]; ok {
				tok.JupiterTags = append([]string{}, t.Tags...)
				tok.JupiterDailyVolume = t.DailyVolume
			}

			tokens = append(tokens, tok)
			accepted++
		}
		a.logger.Printf("  Batch %d: %d pairs, %d accepted", i+1, len(pairs), accepted)
	}

	observability.RecordTokensAccepted(len(tokens))
	return tokens, nil
}

// accept applies the basic criteria and normalizes the pair.
// It returns nil and the rejection reason when the pair is dropped.
func (a *Aggregator) accept(pair dexscreener.Pair, minLiquidity, minVolume float64) (*domain.Token, string) {
	if pair.BaseToken.Address == "" {
		return nil, RejectMissingAddress
	}

	liquidity, err := pair.Liquidity.USD.Float()
	if err != nil {
		return nil, RejectNotNumeric
	}
	volume, err := pair.Volume.H24.Float()
	if err != nil {
		return nil, RejectNotNumeric
	}
	if liquidity < minLiquidity {
		return nil, RejectLowLiquidity
	}
	if volume < minVolume {
		return nil, RejectLowVolume
	}

	tok, err := a.normalizer.Normalize(pair)
	if err != nil {
		if errors.Is(err, normalization.ErrNormalization) {
			a.logger.Printf("Dropping pair %s: %v", pair.PairAddress, err)
		}
		return nil, RejectNormalization
	}
	return tok, ""
}

// Chunk splits addresses into consecutive batches of size n; the last may be shorter.
// Non-positive n yields a single batch.
func Chunk(addresses []string, n int) [][]string {
	if len(addresses) == 0 {
		return [][]string{}
	}
	if n <= 0 {
		n = len(addresses)
	}

	batches := make([][]string, 0, (len(addresses)+n-1)/n)
	for start := 0; start < len(addresses); start += n {
		end := min(start+n, len(addresses))
		batches = append(batches, addresses[start:end])
	}
	return batches
}
