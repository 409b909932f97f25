package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finboard/internal/config"
	"finboard/internal/dashboard"
	"finboard/internal/httpx"
	"finboard/internal/logging"
	"finboard/internal/ratelimit"
	"finboard/internal/source/binance"
	"finboard/internal/source/finnhub"
	"finboard/internal/source/tcmb"
)

// app holds what every command needs.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	svc     *dashboard.Service
	finnhub *finnhub.Client
}

var (
	configPath string
	logLevel   string
	dotEnvPath string
)

func newApp() (*app, error) {
	if err := config.LoadDotEnv(dotEnvPath); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	hc := httpx.New(cfg.RequestTimeout())
	hc.UserAgent = cfg.HTTP.UserAgent

	rates := tcmb.NewClient(tcmb.WithBaseURL(cfg.TCMB.BaseURL), tcmb.WithHTTPClient(hc))
	stocks := finnhub.NewClient(cfg.Finnhub.APIKey,
		finnhub.WithBaseURL(cfg.Finnhub.BaseURL),
		finnhub.WithHTTPClient(ratelimit.New(hc, cfg.Finnhub.MaxRequestsPerMinute, cfg.Finnhub.Burst)),
	)
	crypto := binance.NewClient(binance.WithBaseURL(cfg.Binance.BaseURL), binance.WithHTTPClient(hc))

	return &app{
		cfg:     cfg,
		log:     log,
		svc:     dashboard.NewService(rates, stocks, crypto, dashboard.SettingsFrom(cfg), log),
		finnhub: stocks,
	}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "finboard",
		Short:         "Exchange rates, stock quotes and crypto prices in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json or config.yaml (optional)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&dotEnvPath, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(ratesCmd(), historyCmd(), searchCmd(), quoteCmd(), cryptoCmd(), symbolsCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
