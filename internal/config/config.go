// Package config builds the scanner configuration from .env, environment
// variables, command-line flags and an optional classifier parameter file.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"solana-token-scanner/internal/aggregator"
	"solana-token-scanner/internal/classifier"
	"solana-token-scanner/internal/dexscreener"
	"solana-token-scanner/internal/jupiter"
	"solana-token-scanner/internal/upstream"
)

// ErrInvalidConfig is returned for malformed or inconsistent configuration.
var ErrInvalidConfig = errors.New("invalid config")

// Defaults.
const (
	DefaultRateLimitRequests = 300
	DefaultRateLimitWindow   = 60 * time.Second
	DefaultMinLiquidity      = 100000
	DefaultMinVolume         = 10000
	DefaultClassifier        = classifier.TypeEnhanced
	DefaultKafkaTopic        = "token-scans"
	DefaultScanInterval      = 15 * time.Minute
	DefaultHTTPAddr          = ":9090"
)

// Config is the complete scanner configuration. It is not modified after Load.
type Config struct {
	// Upstreams
	JupiterBaseURL     string
	DexScreenerBaseURL string
	TrendingTag        string
	UpstreamTimeout    time.Duration
	UpstreamMaxRetries int
	StrictAddresses    bool

	// Acquisition
	BatchSize         int
	RateLimitRequests int
	RateLimitWindow   time.Duration
	MinLiquidity      float64
	MinVolume         float64

	// Classification
	Classifier           classifier.Config
	ClassifierParamsFile string

	// Storage. Empty DSNs fall back to in-memory stores.
	PostgresDSN   string
	ClickhouseDSN string
	UseMemory     bool

	// Publishing. No brokers means log-only publishing.
	KafkaBrokers []string
	KafkaTopic   string

	// Server
	ScanInterval time.Duration
	HTTPAddr     string
}

// Load parses args into a Config using fs. Environment variables provide the
// flag defaults. Callers may register their own flags on fs before calling Load.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	return load(fs, args, os.Getenv)
}

func load(fs *flag.FlagSet, args []string, getenv func(string) string) (*Config, error) {
	env := envReader{getenv: getenv}

	jupiterURL := fs.String("jupiter-base-url", env.stringVal("JUPITER_BASE_URL", jupiter.DefaultBaseURL), "Jupiter token API base URL")
	dexURL := fs.String("dexscreener-base-url", env.stringVal("DEXSCREENER_BASE_URL", dexscreener.DefaultBaseURL), "DexScreener API base URL")
	tag := fs.String("trending-tag", env.stringVal("TRENDING_TAG", jupiter.DefaultTrendingTag), "Jupiter trending tag")
	timeout := fs.Duration("upstream-timeout", env.durationVal("UPSTREAM_TIMEOUT", upstream.DefaultTimeout), "Upstream HTTP timeout")
	retries := fs.Int("upstream-max-retries", env.intVal("UPSTREAM_MAX_RETRIES", upstream.DefaultMaxRetries), "Upstream retries on transport errors (0 disables)")
	strict := fs.Bool("strict-addresses", env.boolVal("STRICT_ADDRESSES", true), "Drop trending entries with invalid Solana addresses")

	batchSize := fs.Int("batch-size", env.intVal("BATCH_SIZE", aggregator.DefaultBatchSize), "Addresses per DexScreener request")
	rlRequests := fs.Int("rate-limit-requests", env.intVal("RATE_LIMIT_REQUESTS", DefaultRateLimitRequests), "DexScreener requests per window")
	rlWindow := fs.Duration("rate-limit-window", env.durationVal("RATE_LIMIT_WINDOW", DefaultRateLimitWindow), "DexScreener rate limit window")
	minLiq := fs.Float64("min-liquidity", env.floatVal("MIN_LIQUIDITY", DefaultMinLiquidity), "Minimum pair liquidity (USD)")
	minVol := fs.Float64("min-volume", env.floatVal("MIN_VOLUME", DefaultMinVolume), "Minimum pair 24h volume (USD)")

	classifierType := fs.String("classifier", env.stringVal("DEFAULT_CLASSIFIER", DefaultClassifier), "Classifier: threshold, simple, enhanced")
	paramsFile := fs.String("classifier-params", env.stringVal("CLASSIFIER_PARAMS_FILE", ""), "JSON file overriding classifier parameters")

	postgresDSN := fs.String("postgres-dsn", env.stringVal("POSTGRES_DSN", ""), "PostgreSQL connection string (token registry)")
	clickhouseDSN := fs.String("clickhouse-dsn", env.stringVal("CLICKHOUSE_DSN", ""), "ClickHouse connection string (market snapshots)")
	useMemory := fs.Bool("use-memory", env.boolVal("USE_MEMORY", false), "Use in-memory storage even when DSNs are set")

	kafkaBrokers := fs.String("kafka-brokers", env.stringVal("KAFKA_BROKERS", ""), "Comma-separated Kafka brokers")
	kafkaTopic := fs.String("kafka-topic", env.stringVal("KAFKA_TOPIC", DefaultKafkaTopic), "Kafka topic for scan results")

	scanInterval := fs.Duration("scan-interval", env.durationVal("SCAN_INTERVAL", DefaultScanInterval), "Scheduled scan interval (0 disables)")
	httpAddr := fs.String("http-addr", env.stringVal("HTTP_ADDR", DefaultHTTPAddr), "HTTP listen address")

	if env.err != nil {
		return nil, env.err
	}
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := &Config{
		JupiterBaseURL:       *jupiterURL,
		DexScreenerBaseURL:   *dexURL,
		TrendingTag:          *tag,
		UpstreamTimeout:      *timeout,
		UpstreamMaxRetries:   *retries,
		StrictAddresses:      *strict,
		BatchSize:            *batchSize,
		RateLimitRequests:    *rlRequests,
		RateLimitWindow:      *rlWindow,
		MinLiquidity:         *minLiq,
		MinVolume:            *minVol,
		ClassifierParamsFile: *paramsFile,
		PostgresDSN:          *postgresDSN,
		ClickhouseDSN:        *clickhouseDSN,
		UseMemory:            *useMemory,
		KafkaBrokers:         splitList(*kafkaBrokers),
		KafkaTopic:           *kafkaTopic,
		ScanInterval:         *scanInterval,
		HTTPAddr:             *httpAddr,
	}

	cc, err := classifier.DefaultConfig(*classifierType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.ClassifierParamsFile != "" {
		if err := overlayParams(&cc, cfg.ClassifierParamsFile); err != nil {
			return nil, err
		}
	}
	cfg.Classifier = cc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlayParams reads a JSON parameter file over the defaults in cc.
// The file may name a different classifier type.
func overlayParams(cc *classifier.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read classifier params: %v", ErrInvalidConfig, err)
	}

	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return fmt.Errorf("%w: parse classifier params %s: %v", ErrInvalidConfig, path, err)
	}
	if header.Type != "" && header.Type != cc.Type {
		def, err := classifier.DefaultConfig(header.Type)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		*cc = def
	}

	if err := json.Unmarshal(data, cc); err != nil {
		return fmt.Errorf("%w: parse classifier params %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

// Validate checks ranges and builds the classifier once so that parameter
// errors surface at startup.
func (c *Config) Validate() error {
	var problems []string

	if c.JupiterBaseURL == "" {
		problems = append(problems, "jupiter base URL is required")
	}
	if c.DexScreenerBaseURL == "" {
		problems = append(problems, "dexscreener base URL is required")
	}
	if c.UpstreamTimeout <= 0 {
		problems = append(problems, "upstream timeout must be positive")
	}
	if c.UpstreamMaxRetries < 0 {
		problems = append(problems, "upstream max retries must not be negative")
	}
	if c.BatchSize <= 0 {
		problems = append(problems, "batch size must be positive")
	}
	if c.RateLimitRequests <= 0 {
		problems = append(problems, "rate limit requests must be positive")
	}
	if c.RateLimitWindow <= 0 {
		problems = append(problems, "rate limit window must be positive")
	}
	if c.MinLiquidity < 0 {
		problems = append(problems, "min liquidity must not be negative")
	}
	if c.MinVolume < 0 {
		problems = append(problems, "min volume must not be negative")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		problems = append(problems, "kafka topic is required when brokers are set")
	}
	if c.ScanInterval < 0 {
		problems = append(problems, "scan interval must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	if _, err := classifier.FromConfig(c.Classifier); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// UsePostgres reports whether the token registry is stored in PostgreSQL.
func (c *Config) UsePostgres() bool {
	return !c.UseMemory && c.PostgresDSN != ""
}

// UseClickhouse reports whether market snapshots are stored in ClickHouse.
func (c *Config) UseClickhouse() bool {
	return !c.UseMemory && c.ClickhouseDSN != ""
}

// envReader reads typed environment values, keeping the first parse error.
type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) stringVal(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) intVal(key string, def int) int {
	v := e.stringVal(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return n
}

func (e *envReader) floatVal(key string, def float64) float64 {
	v := e.stringVal(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return f
}

func (e *envReader) boolVal(key string, def bool) bool {
	v := e.stringVal(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return b
}

// durationVal accepts Go durations ("90s") or plain seconds ("60").
func (e *envReader) durationVal(key string, def time.Duration) time.Duration {
	v := e.stringVal(key, "")
	if v == "" {
		return def
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v)
		return def
	}
	return d
}

func (e *envReader) fail(key, value string) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, value)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
