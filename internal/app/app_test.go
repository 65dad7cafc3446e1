package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-scanner/internal/classifier"
	"solana-token-scanner/internal/config"
)

func fakeUpstreams(t *testing.T) (jupiterURL, dexURL string) {
	t.Helper()

	jup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"address": "MintGood", "tags": ["birdeye-trending"], "daily_volume": 900000},
			{"address": "MintThin", "tags": ["birdeye-trending"], "daily_volume": 10}
		]`))
	}))
	t.Cleanup(jup.Close)

	dex := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/tokens/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"pairs": [
			{
				"chainId": "solana", "pairAddress": "PairGood",
				"baseToken": {"address": "MintGood", "name": "Good", "symbol": "GOOD", "totalSupply": "1000000"},
				"priceUsd": "0.5",
				"liquidity": {"usd": 250000},
				"volume": {"h24": 600000},
				"priceChange": {"h24": 12},
				"txns": {"h24": {"buys": 200, "sells": 50}},
				"info": {"socials": [{"type": "twitter"}]}
			},
			{
				"chainId": "solana", "pairAddress": "PairThin",
				"baseToken": {"address": "MintThin", "name": "Thin", "symbol": "THIN"},
				"priceUsd": "0.1",
				"liquidity": {"usd": 500},
				"volume": {"h24": 100},
				"priceChange": {"h24": 1},
				"txns": {"h24": {"buys": 1, "sells": 1}}
			}
		]}`))
	}))
	t.Cleanup(dex.Close)

	return jup.URL, dex.URL
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	jupURL, dexURL := fakeUpstreams(t)

	cc, err := classifier.DefaultConfig(classifier.TypeThreshold)
	require.NoError(t, err)

	cfg := &config.Config{
		JupiterBaseURL:     jupURL,
		DexScreenerBaseURL: dexURL,
		TrendingTag:        "birdeye-trending",
		UpstreamTimeout:    5 * time.Second,
		BatchSize:          30,
		RateLimitRequests:  300,
		RateLimitWindow:    time.Minute,
		MinLiquidity:       100_000,
		MinVolume:          10_000,
		Classifier:         cc,
		UseMemory:          true,
		KafkaTopic:         "token-scans",
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestBuild_ScanEndToEnd(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer

	a, err := Build(ctx, Options{Config: testConfig(t), LogOutput: &logs})
	require.NoError(t, err)
	defer a.Close()

	run, err := a.Orchestrator.Scan(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, run.Scanned, "thin pair is below the liquidity floor")
	require.Len(t, run.Result.Tokens, 1)
	got := run.Result.Tokens[0]
	assert.Equal(t, "MintGood", got.BaseToken.Address)
	assert.Equal(t, []string{"birdeye-trending"}, got.JupiterTags)
	require.NotNil(t, got.MarketCap)
	assert.InDelta(t, 500000.0, *got.MarketCap, 1e-9)

	assert.True(t, run.Published)
	assert.Contains(t, logs.String(), `"type":"scan_result"`)
	assert.Contains(t, logs.String(), "[orchestrator] ")

	history, err := a.History.Generate(ctx, time.Hour)
	require.NoError(t, err)
	require.Len(t, history.Rows, 1)
	assert.Equal(t, "MintGood", history.Rows[0].Address)
	assert.Equal(t, 1, history.Rows[0].Snapshots)
}

func TestBuild_InvalidClassifier(t *testing.T) {
	cfg := testConfig(t)
	cfg.Classifier = classifier.Config{Type: "nope"}

	_, err := Build(context.Background(), Options{Config: cfg})
	assert.ErrorIs(t, err, classifier.ErrUnknownClassifier)
}
