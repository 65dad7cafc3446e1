package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-scanner/internal/classifier"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(newFlagSet(), nil, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "https://tokens.jup.ag", cfg.JupiterBaseURL)
	assert.Equal(t, "https://api.dexscreener.com/latest/dex", cfg.DexScreenerBaseURL)
	assert.Equal(t, "birdeye-trending", cfg.TrendingTag)
	assert.Equal(t, 30, cfg.BatchSize)
	assert.Equal(t, 300, cfg.RateLimitRequests)
	assert.Equal(t, 60*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 100000.0, cfg.MinLiquidity)
	assert.Equal(t, 10000.0, cfg.MinVolume)
	assert.Equal(t, classifier.TypeEnhanced, cfg.Classifier.Type)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 0, cfg.UpstreamMaxRetries)
	assert.True(t, cfg.StrictAddresses)
	assert.False(t, cfg.UsePostgres())
	assert.False(t, cfg.UseClickhouse())
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_EnvOverrides(t *testing.T) {
	cfg, err := load(newFlagSet(), nil, envMap(map[string]string{
		"BATCH_SIZE":          "10",
		"RATE_LIMIT_REQUESTS": "60",
		"RATE_LIMIT_WINDOW":   "30",
		"MIN_LIQUIDITY":       "5000.5",
		"DEFAULT_CLASSIFIER":  "simple",
		"STRICT_ADDRESSES":    "false",
		"POSTGRES_DSN":        "postgres://localhost/scanner",
		"KAFKA_BROKERS":       "k1:9092, k2:9092,",
		"UPSTREAM_TIMEOUT":    "5s",
	}))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 60, cfg.RateLimitRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 5000.5, cfg.MinLiquidity)
	assert.Equal(t, classifier.TypeSimple, cfg.Classifier.Type)
	assert.False(t, cfg.StrictAddresses)
	assert.True(t, cfg.UsePostgres())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	cfg, err := load(newFlagSet(), []string{"--batch-size=5", "--use-memory"}, envMap(map[string]string{
		"BATCH_SIZE":     "10",
		"POSTGRES_DSN":   "postgres://localhost/scanner",
		"CLICKHOUSE_DSN": "clickhouse://localhost:9000/default",
	}))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.BatchSize)
	assert.False(t, cfg.UsePostgres())
	assert.False(t, cfg.UseClickhouse())
}

func TestLoad_InvalidEnv(t *testing.T) {
	_, err := load(newFlagSet(), nil, envMap(map[string]string{"BATCH_SIZE": "thirty"}))
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoad_UnknownClassifier(t *testing.T) {
	_, err := load(newFlagSet(), nil, envMap(map[string]string{"DEFAULT_CLASSIFIER": "magic"}))
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.True(t, errors.Is(err, classifier.ErrUnknownClassifier))
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero batch size", []string{"--batch-size=0"}},
		{"zero rate limit", []string{"--rate-limit-requests=0"}},
		{"negative liquidity", []string{"--min-liquidity=-1"}},
		{"negative retries", []string{"--upstream-max-retries=-1"}},
		{"zero timeout", []string{"--upstream-timeout=0s"}},
		{"brokers without topic", []string{"--kafka-brokers=k1:9092", "--kafka-topic="}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(newFlagSet(), tt.args, envMap(nil))
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestLoad_ClassifierParamsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"min_liquidity_usd": 75000, "required_socials": ["twitter"]}`), 0o644))

	cfg, err := load(newFlagSet(), []string{"--classifier-params=" + path}, envMap(nil))
	require.NoError(t, err)

	require.NotNil(t, cfg.Classifier.MinLiquidityUSD)
	assert.Equal(t, 75000.0, *cfg.Classifier.MinLiquidityUSD)
	assert.Equal(t, 200000.0, *cfg.Classifier.GoodLiquidityUSD)
	assert.Equal(t, []string{"twitter"}, cfg.Classifier.RequiredSocials)
}

func TestLoad_ClassifierParamsFileSwitchesType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type": "threshold", "min_transactions": 10}`), 0o644))

	cfg, err := load(newFlagSet(), []string{"--classifier-params", path}, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, classifier.TypeThreshold, cfg.Classifier.Type)
	assert.Equal(t, int64(10), *cfg.Classifier.MinTransactions)
	assert.Nil(t, cfg.Classifier.GoodLiquidityUSD)
}

func TestLoad_ClassifierParamsFileInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0o644))
	_, err := load(newFlagSet(), []string{"--classifier-params", bad}, envMap(nil))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	inconsistent := filepath.Join(dir, "inconsistent.json")
	require.NoError(t, os.WriteFile(inconsistent, []byte(`{"good_liquidity_usd": 10}`), 0o644))
	_, err = load(newFlagSet(), []string{"--classifier-params", inconsistent}, envMap(nil))
	assert.True(t, errors.Is(err, classifier.ErrInvalidParameter))

	_, err = load(newFlagSet(), []string{"--classifier-params", filepath.Join(dir, "missing.json")}, envMap(nil))
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nSCANNER_TEST_A=alpha\nexport SCANNER_TEST_B=\"beta\"\nSCANNER_TEST_C=from-file\ninvalid line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("SCANNER_TEST_C", "from-env")
	t.Setenv("SCANNER_TEST_A", "")
	t.Setenv("SCANNER_TEST_B", "")

	require.NoError(t, LoadEnvFile(path))

	assert.Equal(t, "alpha", os.Getenv("SCANNER_TEST_A"))
	assert.Equal(t, "beta", os.Getenv("SCANNER_TEST_B"))
	assert.Equal(t, "from-env", os.Getenv("SCANNER_TEST_C"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
}
