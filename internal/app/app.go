// Package app wires configuration into a ready-to-run scanner.
package app

import (
	"context"
	"fmt"
	"io"
	"log"

	"solana-token-scanner/internal/aggregator"
	"solana-token-scanner/internal/classifier"
	"solana-token-scanner/internal/config"
	"solana-token-scanner/internal/dexscreener"
	"solana-token-scanner/internal/jupiter"
	"solana-token-scanner/internal/normalization"
	"solana-token-scanner/internal/orchestrator"
	"solana-token-scanner/internal/publish"
	"solana-token-scanner/internal/ratelimit"
	"solana-token-scanner/internal/reporting"
	"solana-token-scanner/internal/storage"
	chstore "solana-token-scanner/internal/storage/clickhouse"
	"solana-token-scanner/internal/storage/memory"
	"solana-token-scanner/internal/storage/migrations"
	pgstore "solana-token-scanner/internal/storage/postgres"
	"solana-token-scanner/internal/upstream"
)

// App holds the wired components of one process.
type App struct {
	Orchestrator *orchestrator.Orchestrator
	History      *reporting.Generator
}

// Options for Build.
type Options struct {
	Config *config.Config // required, validated

	// LogOutput receives component logs. Nil discards them.
	LogOutput io.Writer
}

// Build connects stores, upstream clients and the publish sink.
// Close must be called to release them.
func Build(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	out := opts.LogOutput
	if out == nil {
		out = io.Discard
	}
	newLogger := func(component string) *log.Logger {
		return log.New(out, "["+component+"] ", log.LstdFlags|log.Lshortfile)
	}

	cls, err := classifier.FromConfig(cfg.Classifier)
	if err != nil {
		return nil, err
	}

	stores, err := createStores(ctx, cfg, newLogger("storage"))
	if err != nil {
		return nil, err
	}

	sink, err := createSink(cfg, newLogger("publish"))
	if err != nil {
		stores.close()
		return nil, err
	}

	// One lazily-opened HTTP session shared by both upstreams.
	httpClient := upstream.NewClient("market-data",
		upstream.WithTimeout(cfg.UpstreamTimeout),
		upstream.WithMaxRetries(cfg.UpstreamMaxRetries),
	)

	trending := jupiter.NewClient(jupiter.Options{
		HTTP:            httpClient,
		BaseURL:         cfg.JupiterBaseURL,
		Tag:             cfg.TrendingTag,
		StrictAddresses: cfg.StrictAddresses,
		Logger:          newLogger("jupiter"),
	})
	pairs := dexscreener.NewClient(dexscreener.Options{
		HTTP:    httpClient,
		Limiter: ratelimit.New("dexscreener", cfg.RateLimitRequests, cfg.RateLimitWindow),
		BaseURL: cfg.DexScreenerBaseURL,
		Logger:  newLogger("dexscreener"),
	})
	agg := aggregator.New(aggregator.Options{
		Trending:   trending,
		Pairs:      pairs,
		Normalizer: normalization.New(),
		BatchSize:  cfg.BatchSize,
		Logger:     newLogger("aggregator"),
	})

	orch, err := orchestrator.New(orchestrator.Options{
		Scanner:       agg,
		Classifier:    cls,
		TokenStore:    stores.tokens,
		SnapshotStore: stores.snapshots,
		Sink:          sink,
		MinLiquidity:  cfg.MinLiquidity,
		MinVolume:     cfg.MinVolume,
		Closers:       append([]io.Closer{httpClient}, stores.closers...),
		Logger:        newLogger("orchestrator"),
	})
	if err != nil {
		sink.Close()
		stores.close()
		return nil, err
	}

	return &App{
		Orchestrator: orch,
		History:      reporting.NewGenerator(stores.tokens, stores.snapshots),
	}, nil
}

// Close releases every resource acquired by Build.
func (a *App) Close() error {
	return a.Orchestrator.Close()
}

type stores struct {
	tokens    storage.TokenStore
	snapshots storage.SnapshotStore
	closers   []io.Closer
}

func (s *stores) close() {
	for _, c := range s.closers {
		_ = c.Close()
	}
}

// createStores picks PostgreSQL for the registry and ClickHouse for snapshots
// when their DSNs are set, in-memory stores otherwise.
func createStores(ctx context.Context, cfg *config.Config, logger *log.Logger) (*stores, error) {
	s := &stores{
		tokens:    memory.NewTokenStore(),
		snapshots: memory.NewSnapshotStore(),
	}

	if cfg.UsePostgres() {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		s.tokens = pgstore.NewTokenStore(pool)
		s.closers = append(s.closers, pool)
		logger.Printf("Token registry: postgres")
	} else {
		logger.Printf("Token registry: memory")
	}

	if cfg.UseClickhouse() {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		s.snapshots = chstore.NewSnapshotStore(conn)
		s.closers = append(s.closers, conn)
		logger.Printf("Snapshot store: clickhouse")
	} else {
		logger.Printf("Snapshot store: memory")
	}

	return s, nil
}

// createSink publishes to Kafka when brokers are configured, to the log otherwise.
func createSink(cfg *config.Config, logger *log.Logger) (publish.Sink, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Printf("No Kafka brokers configured, publishing to log")
		return publish.NewLogSink(logger), nil
	}
	sink, err := publish.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to kafka: %w", err)
	}
	logger.Printf("Publishing to Kafka topic %s (%d brokers)", cfg.KafkaTopic, len(cfg.KafkaBrokers))
	return sink, nil
}
