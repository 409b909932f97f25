package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()

	require.NoError(t, cfg.Validate())
	require.Equal(t, 30, cfg.TCMB.HistoryDays)
	require.Equal(t, "USDT", cfg.Binance.QuoteAsset)
	require.Equal(t, time.Hour, cfg.SymbolsCacheTTL())
	require.Equal(t, 10*time.Second, cfg.RequestTimeout())
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	// Arrange
	env := map[string]string{
		"FINNHUB_API_KEY":       "abc",
		"REQUEST_TIMEOUT_SEC":   "5",
		"TCMB_BASE_URL":         "http://bank.test/kurlar/",
		"HISTORY_DAYS":          "14",
		"COLLECT_CONCURRENCY":   "3",
		"FINNHUB_MAX_RPM":       "0",
		"SYMBOLS_CACHE_TTL_SEC": "60",
		"EXPORT_DIR":            "/tmp/out",
		"LOG_LEVEL":             "DEBUG",
	}
	cfg := Default()

	// Act
	applyEnv(&cfg, func(k string) string { return env[k] })

	// Assert
	require.Equal(t, "abc", cfg.Finnhub.APIKey)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout())
	require.Equal(t, "http://bank.test/kurlar", cfg.TCMB.BaseURL)
	require.Equal(t, 14, cfg.TCMB.HistoryDays)
	require.Equal(t, 3, cfg.TCMB.MaxConcurrency)
	require.Equal(t, 0, cfg.Finnhub.MaxRequestsPerMinute)
	require.Equal(t, time.Minute, cfg.SymbolsCacheTTL())
	require.Equal(t, "/tmp/out", cfg.Export.Dir)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyEnv_IgnoresGarbageNumbers(t *testing.T) {
	t.Parallel()

	cfg := Default()
	applyEnv(&cfg, func(k string) string {
		switch k {
		case "HISTORY_DAYS", "REQUEST_TIMEOUT_SEC":
			return "many"
		case "COLLECT_CONCURRENCY":
			return "12workers"
		}
		return ""
	})

	require.Equal(t, 30, cfg.TCMB.HistoryDays)
	require.Equal(t, 10, cfg.HTTP.RequestTimeoutSec)
	require.Equal(t, Default().TCMB.MaxConcurrency, cfg.TCMB.MaxConcurrency)
}

func TestRequestTimeout_Clamped(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.HTTP.RequestTimeoutSec = 90

	require.Equal(t, MaxRequestTimeout, cfg.RequestTimeout())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.TCMB.HistoryDays = 90
	cfg.TCMB.MaxConcurrency = 0
	cfg.Binance.QuoteAsset = ""

	err := cfg.Validate()

	require.ErrorContains(t, err, "history_days")
	require.ErrorContains(t, err, "max_concurrency")
	require.ErrorContains(t, err, "quote_asset")
}

func TestDecode_JSONAndYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "config.json")
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"tcmb":{"history_days":45},"binance":{"default_symbol":"ETHUSDT"}}`), 0o600))
	require.NoError(t, os.WriteFile(yamlPath, []byte("tcmb:\n  history_days: 21\nexport:\n  dir: exports\n"), 0o600))

	for path, check := range map[string]func(Config){
		jsonPath: func(c Config) {
			require.Equal(t, 45, c.TCMB.HistoryDays)
			require.Equal(t, "ETHUSDT", c.Binance.DefaultSymbol)
			require.Equal(t, 8, c.TCMB.MaxConcurrency)
		},
		yamlPath: func(c Config) {
			require.Equal(t, 21, c.TCMB.HistoryDays)
			require.Equal(t, "exports", c.Export.Dir)
			require.Equal(t, "veri", c.Export.BaseName)
		},
	} {
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		cfg := Default()
		require.NoError(t, decode(path, b, &cfg))
		check(cfg)
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Finnhub.APIKey)
	require.Equal(t, Default().TCMB, cfg.TCMB)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tcmb":`), 0o600))

	_, err := Load(path)

	require.ErrorContains(t, err, "parse config")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FINBOARD_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("FINBOARD_TEST_DOTENV", "")
	os.Unsetenv("FINBOARD_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	require.Equal(t, "loaded", os.Getenv("FINBOARD_TEST_DOTENV"))
}
