// Package dexscreener fetches pair data for batches of token addresses.
package dexscreener

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"

	"solana-token-scanner/internal/observability"
	"solana-token-scanner/internal/ratelimit"
	"solana-token-scanner/internal/upstream"
)

// DefaultBaseURL is the DexScreener API root.
const DefaultBaseURL = "https://api.dexscreener.com/latest/dex"

// RejectMalformed is the rejection reason for pairs that fail to decode.
const RejectMalformed = "malformed"

// Client fetches pair data. Every request waits for a rate-limit slot.
type Client struct {
	http    *upstream.Client
	limiter *ratelimit.Limiter
	baseURL string
	logger  *log.Logger
}

// Options for creating Client.
type Options struct {
	HTTP    *upstream.Client   // required
	Limiter *ratelimit.Limiter // required
	BaseURL string             // defaults to DefaultBaseURL
	Logger  *log.Logger
}

// NewClient creates a new pair client.
func NewClient(opts Options) *Client {
	c := &Client{
		http:    opts.HTTP,
		limiter: opts.Limiter,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		logger:  opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard, "", 0)
	}
	return c
}

// FetchBatch returns all pairs reported for the given addresses.
// Failures are logged and yield an empty result for this batch only.
func (c *Client) FetchBatch(ctx context.Context, addresses []string) []Pair {
	if len(addresses) == 0 {
		return []Pair{}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Printf("Rate limit wait aborted: %v", err)
		observability.RecordBatch("cancelled")
		return []Pair{}
	}

	url := c.baseURL + "/tokens/" + strings.Join(addresses, ",")

	var resp TokensResponse
	if err := c.http.GetJSON(ctx, url, &resp); err != nil {
		c.logger.Printf("Error fetching DexScreener batch of %d: %v", len(addresses), err)
		observability.RecordBatch("failed")
		return []Pair{}
	}

	observability.RecordBatch("success")
	return c.decodePairs(resp.Pairs)
}

// decodePairs decodes each pair on its own. Records with unexpected field
// types are logged, counted and dropped.
func (c *Client) decodePairs(raw []json.RawMessage) []Pair {
	pairs := make([]Pair, 0, len(raw))
	for i, msg := range raw {
		var p Pair
		if err := json.Unmarshal(msg, &p); err != nil {
			c.logger.Printf("Dropping malformed pair %d: %v", i, err)
			observability.RecordPairRejected(RejectMalformed)
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs
}
