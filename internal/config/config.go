package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MaxRequestTimeout caps every upstream call.
const MaxRequestTimeout = 10 * time.Second

type HTTP struct {
	RequestTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
	UserAgent         string `json:"user_agent" yaml:"user_agent"`
}

type TCMB struct {
	BaseURL        string `json:"base_url" yaml:"base_url"`
	HistoryDays    int    `json:"history_days" yaml:"history_days"`
	MaxConcurrency int    `json:"max_concurrency" yaml:"max_concurrency"`
	Retries        int    `json:"retries" yaml:"retries"`
	RetryBackoffMs int    `json:"retry_backoff_ms" yaml:"retry_backoff_ms"`
}

type Finnhub struct {
	BaseURL              string `json:"base_url" yaml:"base_url"`
	APIKey               string `json:"api_key" yaml:"api_key"`
	MaxRequestsPerMinute int    `json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
	Burst                int    `json:"burst" yaml:"burst"`
	Exchange             string `json:"exchange" yaml:"exchange"`
	SymbolsFile          string `json:"symbols_file" yaml:"symbols_file"`
	BuildWorkers         int    `json:"build_workers" yaml:"build_workers"`
	BuildRetries         int    `json:"build_retries" yaml:"build_retries"`
}

type Binance struct {
	BaseURL            string `json:"base_url" yaml:"base_url"`
	QuoteAsset         string `json:"quote_asset" yaml:"quote_asset"`
	DefaultSymbol      string `json:"default_symbol" yaml:"default_symbol"`
	SymbolsCacheTTLSec int    `json:"symbols_cache_ttl_sec" yaml:"symbols_cache_ttl_sec"`
	KlineInterval      string `json:"kline_interval" yaml:"kline_interval"`
	KlineLimit         int    `json:"kline_limit" yaml:"kline_limit"`
	KlineShow          int    `json:"kline_show" yaml:"kline_show"`
}

type Export struct {
	Dir      string `json:"dir" yaml:"dir"`
	BaseName string `json:"base_name" yaml:"base_name"`
}

type Log struct {
	Level string `json:"level" yaml:"level"`
}

type Config struct {
	HTTP    HTTP    `json:"http" yaml:"http"`
	TCMB    TCMB    `json:"tcmb" yaml:"tcmb"`
	Finnhub Finnhub `json:"finnhub" yaml:"finnhub"`
	Binance Binance `json:"binance" yaml:"binance"`
	Export  Export  `json:"export" yaml:"export"`
	Log     Log     `json:"log" yaml:"log"`
}

func Default() Config {
	return Config{
		HTTP: HTTP{RequestTimeoutSec: 10, UserAgent: "finboard/1.0"},
		TCMB: TCMB{
			BaseURL:        "https://www.tcmb.gov.tr/kurlar",
			HistoryDays:    30,
			MaxConcurrency: 8,
			Retries:        2,
			RetryBackoffMs: 250,
		},
		Finnhub: Finnhub{
			BaseURL:              "https://finnhub.io/api/v1",
			MaxRequestsPerMinute: 60,
			Burst:                1,
			Exchange:             "US",
			SymbolsFile:          "us_list.csv",
			BuildWorkers:         4,
			BuildRetries:         3,
		},
		Binance: Binance{
			BaseURL:            "https://data-api.binance.vision/api/v3",
			QuoteAsset:         "USDT",
			DefaultSymbol:      "BTCUSDT",
			SymbolsCacheTTLSec: 3600,
			KlineInterval:      "15m",
			KlineLimit:         96,
			KlineShow:          20,
		},
		Export: Export{Dir: ".", BaseName: "veri"},
		Log:    Log{Level: "info"},
	}
}

// Load reads config from path, JSON or YAML by extension. If path is
// empty, config.json, config.yaml and config.yml are tried in turn; a
// missing file yields defaults. Environment variables override select
// fields, the API key in particular.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		for _, p := range []string{"config.json", "config.yaml", "config.yml"} {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv exports the variables of a .env file that are not already
// set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.RequestTimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("http.request_timeout_sec must be positive, got %d", c.HTTP.RequestTimeoutSec))
	}
	if c.TCMB.HistoryDays < 7 || c.TCMB.HistoryDays > 60 {
		errs = append(errs, fmt.Errorf("tcmb.history_days must be within 7..60, got %d", c.TCMB.HistoryDays))
	}
	if c.TCMB.MaxConcurrency < 1 || c.TCMB.MaxConcurrency > 32 {
		errs = append(errs, fmt.Errorf("tcmb.max_concurrency must be within 1..32, got %d", c.TCMB.MaxConcurrency))
	}
	if c.TCMB.Retries < 0 || c.Finnhub.BuildRetries < 0 {
		errs = append(errs, errors.New("retries must not be negative"))
	}
	if c.Finnhub.MaxRequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("finnhub.max_requests_per_minute must not be negative, got %d", c.Finnhub.MaxRequestsPerMinute))
	}
	if c.Binance.KlineLimit < 1 || c.Binance.KlineLimit > 1000 {
		errs = append(errs, fmt.Errorf("binance.kline_limit must be within 1..1000, got %d", c.Binance.KlineLimit))
	}
	if c.Binance.QuoteAsset == "" {
		errs = append(errs, errors.New("binance.quote_asset is required"))
	}
	return errors.Join(errs...)
}

// RequestTimeout is the per-call timeout, clamped to MaxRequestTimeout.
func (c Config) RequestTimeout() time.Duration {
	d := time.Duration(c.HTTP.RequestTimeoutSec) * time.Second
	if d <= 0 || d > MaxRequestTimeout {
		return MaxRequestTimeout
	}
	return d
}

func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.TCMB.RetryBackoffMs) * time.Millisecond
}

func (c Config) SymbolsCacheTTL() time.Duration {
	return time.Duration(c.Binance.SymbolsCacheTTLSec) * time.Second
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("FINNHUB_API_KEY"); v != "" {
		cfg.Finnhub.APIKey = v
	}
	if x, ok := envInt(getenv, "REQUEST_TIMEOUT_SEC"); ok && x > 0 {
		cfg.HTTP.RequestTimeoutSec = x
	}
	if v := getenv("TCMB_BASE_URL"); v != "" {
		cfg.TCMB.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv("FINNHUB_BASE_URL"); v != "" {
		cfg.Finnhub.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv("BINANCE_BASE_URL"); v != "" {
		cfg.Binance.BaseURL = strings.TrimRight(v, "/")
	}
	if x, ok := envInt(getenv, "HISTORY_DAYS"); ok && x > 0 {
		cfg.TCMB.HistoryDays = x
	}
	if x, ok := envInt(getenv, "COLLECT_CONCURRENCY"); ok && x > 0 {
		cfg.TCMB.MaxConcurrency = x
	}
	if x, ok := envInt(getenv, "FINNHUB_MAX_RPM"); ok && x >= 0 {
		cfg.Finnhub.MaxRequestsPerMinute = x
	}
	if x, ok := envInt(getenv, "SYMBOLS_CACHE_TTL_SEC"); ok && x >= 0 {
		cfg.Binance.SymbolsCacheTTLSec = x
	}
	if v := getenv("EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

// envInt reads an integer variable; unset or malformed values report false.
func envInt(getenv func(string) string, key string) (int, bool) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return 0, false
	}
	x, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return x, true
}
