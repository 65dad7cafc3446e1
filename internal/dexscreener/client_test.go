package dexscreener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"solana-token-scanner/internal/ratelimit"
	"solana-token-scanner/internal/upstream"
)

const samplePairs = `{
	"schemaVersion": "1.0.0",
	"pairs": [
		{
			"chainId": "solana",
			"dexId": "raydium",
			"pairAddress": "PAIR1",
			"baseToken": {"address": "TokenA", "name": "Alpha", "symbol": "ALP", "totalSupply": "1000000"},
			"quoteToken": {"address": "So11111111111111111111111111111111111111112", "name": "Wrapped SOL", "symbol": "SOL"},
			"priceUsd": "0.0123",
			"liquidity": {"usd": 250000},
			"volume": {"h24": 600000},
			"volumeChange": {"h24": 12.5},
			"priceChange": {"h24": -3.2},
			"txns": {"h24": {"buys": 200, "sells": 50}},
			"pairCreatedAt": 1700000000000,
			"info": {"socials": [{"type": "twitter", "followers": 12000}, {"type": "telegram"}]}
		},
		{
			"chainId": "solana",
			"pairAddress": "PAIR2",
			"baseToken": {"address": "TokenB", "symbol": "BET"},
			"priceUsd": 2,
			"liquidity": {"usd": "oops"},
			"volume": {"h24": null}
		}
	]
}`

func newTestClient(url string, limiter *ratelimit.Limiter) *Client {
	if limiter == nil {
		limiter = ratelimit.New("test", 0, 0)
	}
	return NewClient(Options{
		HTTP:    upstream.NewClient("dexscreener-test"),
		Limiter: limiter,
		BaseURL: url,
	})
}

func TestClient_FetchBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokens/TokenA,TokenB" {
			t.Errorf("expected comma-joined path, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePairs))
	}))
	defer server.Close()

	pairs := newTestClient(server.URL, nil).FetchBatch(context.Background(), []string{"TokenA", "TokenB"})

	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}

	p := pairs[0]
	if p.BaseToken.Address != "TokenA" || p.BaseToken.Symbol != "ALP" {
		t.Errorf("unexpected base token: %+v", p.BaseToken)
	}
	if price, err := p.PriceUSD.Float(); err != nil || price != 0.0123 {
		t.Errorf("expected price 0.0123, got %v (err %v)", price, err)
	}
	if buys, _ := p.Txns.H24.Buys.Int(); buys != 200 {
		t.Errorf("expected 200 buys, got %d", buys)
	}
	if p.VolumeChange == nil || !p.VolumeChange.H24.IsSet() {
		t.Error("expected volumeChange.h24 to be set")
	}
	if p.Info == nil || len(p.Info.Socials) != 2 {
		t.Fatalf("expected 2 socials, got %+v", p.Info)
	}
	if p.Info.Socials[1].Followers.IsSet() {
		t.Error("expected telegram followers to be absent")
	}

	// Malformed values survive decoding and fail only on coercion.
	q := pairs[1]
	if _, err := q.Liquidity.USD.Float(); err == nil {
		t.Error("expected coercion error for liquidity \"oops\"")
	}
	if q.Volume.H24.IsSet() {
		t.Error("expected null volume to be absent")
	}
	if q.Info != nil {
		t.Error("expected info to be absent")
	}
}

func TestClient_FetchBatch_Empty(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	pairs := newTestClient(server.URL, nil).FetchBatch(context.Background(), nil)
	if pairs == nil || len(pairs) != 0 {
		t.Errorf("expected empty slice, got %v", pairs)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("expected no request, got %d", calls)
	}
}

func TestClient_FetchBatch_NullPairs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"schemaVersion": "1.0.0", "pairs": null}`))
	}))
	defer server.Close()

	pairs := newTestClient(server.URL, nil).FetchBatch(context.Background(), []string{"TokenA"})
	if pairs == nil || len(pairs) != 0 {
		t.Errorf("expected empty slice, got %v", pairs)
	}
}

func TestClient_FetchBatch_FailSoft(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"rate limited", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"pairs": [`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			pairs := newTestClient(server.URL, nil).FetchBatch(context.Background(), []string{"TokenA"})
			if pairs == nil || len(pairs) != 0 {
				t.Errorf("expected empty slice, got %v", pairs)
			}
		})
	}
}

func TestClient_FetchBatch_RespectsRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"pairs": []}`))
	}))
	defer server.Close()

	// 10 requests per second => 100ms spacing.
	limiter := ratelimit.New("test", 10, time.Second)
	client := newTestClient(server.URL, limiter)

	start := time.Now()
	for i := 0; i < 3; i++ {
		client.FetchBatch(context.Background(), []string{"TokenA"})
	}
	elapsed := time.Since(start)

	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 requests, got %d", calls)
	}
	if elapsed < 190*time.Millisecond {
		t.Errorf("expected at least 2 intervals between 3 calls, took %v", elapsed)
	}
}

func TestClient_FetchBatch_CancelledContext(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	limiter := ratelimit.New("test", 1, time.Hour)
	client := newTestClient(server.URL, limiter)
	client.FetchBatch(context.Background(), []string{"TokenA"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if pairs := client.FetchBatch(ctx, []string{"TokenA"}); len(pairs) != 0 {
		t.Errorf("expected empty result, got %d pairs", len(pairs))
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected only the first request, got %d", calls)
	}
}

func TestClient_FetchBatch_DropsOnlyMalformedPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"pairs": [
			{"pairAddress": "GOOD", "baseToken": {"address": "TokenA", "symbol": "ALP"},
			 "priceUsd": "1.5", "liquidity": {"usd": 250000}, "volume": {"h24": 90000}},
			{"pairAddress": "BAD", "baseToken": {"address": "TokenB", "symbol": "BET"},
			 "priceUsd": "2", "liquidity": "250000", "volume": {"h24": 90000}}
		]}`))
	}))
	defer server.Close()

	pairs := newTestClient(server.URL, nil).FetchBatch(context.Background(), []string{"TokenA", "TokenB"})

	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].PairAddress != "GOOD" {
		t.Errorf("expected pair GOOD, got %s", pairs[0].PairAddress)
	}
}
