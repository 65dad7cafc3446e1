// Package jupiter fetches the trending token list used as the scan's candidate set.
package jupiter

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/url"
	"strings"

	"solana-token-scanner/internal/domain"
	"solana-token-scanner/internal/observability"
	"solana-token-scanner/internal/solana"
	"solana-token-scanner/internal/upstream"
)

// Defaults for the trending endpoint.
const (
	DefaultBaseURL     = "https://tokens.jup.ag"
	DefaultTrendingTag = "birdeye-trending"
)

// trendingToken is the raw list item. Unknown fields are ignored.
type trendingToken struct {
	Address     string        `json:"address"`
	Symbol      string        `json:"symbol"`
	Name        string        `json:"name"`
	Tags        []string      `json:"tags"`
	DailyVolume domain.Number `json:"daily_volume"`
}

// Client fetches trending tokens.
type Client struct {
	http          *upstream.Client
	baseURL       string
	tag           string
	strictAddress bool
	logger        *log.Logger
}

// Options for creating Client.
type Options struct {
	HTTP    *upstream.Client // required
	BaseURL string           // defaults to DefaultBaseURL
	Tag     string           // defaults to DefaultTrendingTag

	// StrictAddresses drops entries that are not valid Solana public keys.
	StrictAddresses bool

	Logger *log.Logger
}

// NewClient creates a new trending client.
func NewClient(opts Options) *Client {
	c := &Client{
		http:          opts.HTTP,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		tag:           opts.Tag,
		strictAddress: opts.StrictAddresses,
		logger:        opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.tag == "" {
		c.tag = DefaultTrendingTag
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard, "", 0)
	}
	return c
}

// FetchTrending returns the trending list in upstream order.
// Transport and decode failures are logged and yield an empty result.
func (c *Client) FetchTrending(ctx context.Context) []domain.TrendingToken {
	endpoint := c.baseURL + "/tokens?" + url.Values{"tags": {c.tag}}.Encode()

	// Items stay raw so that one malformed entry is dropped on its own.
	var raw []json.RawMessage
	if err := c.http.GetJSON(ctx, endpoint, &raw); err != nil {
		c.logger.Printf("Error fetching trending tokens: %v", err)
		observability.RecordTrendingFetched(0)
		return []domain.TrendingToken{}
	}

	tokens := make([]domain.TrendingToken, 0, len(raw))
	for i, msg := range raw {
		var r trendingToken
		if err := json.Unmarshal(msg, &r); err != nil {
			c.logger.Printf("Skipping malformed trending entry %d: %v", i, err)
			observability.RecordTrendingDropped("malformed")
			continue
		}
		if r.Address == "" {
			observability.RecordTrendingDropped("missing_address")
			continue
		}
		if c.strictAddress && !solana.IsValidAddress(r.Address) {
			c.logger.Printf("Skipping trending token with invalid address %q", r.Address)
			observability.RecordTrendingDropped("invalid_address")
			continue
		}

		volume, err := r.DailyVolume.Float()
		if err != nil || volume < 0 {
			volume = 0
		}

		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}

		tokens = append(tokens, domain.TrendingToken{
			Address:     r.Address,
			Tags:        tags,
			DailyVolume: volume,
		})
	}

	c.logger.Printf("Found %d trending tokens", len(tokens))
	observability.RecordTrendingFetched(len(tokens))
	return tokens
}
