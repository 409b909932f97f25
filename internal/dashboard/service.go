// Package dashboard serves the rates, history, stock and crypto views
// and keeps the exportable datasets of a session.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finboard/internal/config"
	"finboard/internal/export"
	"finboard/internal/series"
	"finboard/internal/snapshot"
	"finboard/internal/source"
	"finboard/internal/source/binance"
	"finboard/internal/source/finnhub"
	"finboard/internal/source/tcmb"
)

// RatesClient reads central bank bulletins.
type RatesClient interface {
	Today(ctx context.Context) (tcmb.Bulletin, error)
	OnDate(ctx context.Context, day time.Time) (tcmb.Bulletin, error)
}

// StockClient searches and quotes equities.
type StockClient interface {
	Search(ctx context.Context, q string) ([]finnhub.SearchResult, error)
	Quote(ctx context.Context, symbol string) (finnhub.Quote, error)
	QuoteBIST(ctx context.Context, symbol string) (finnhub.Quote, error)
}

// CryptoClient reads spot market data.
type CryptoClient interface {
	binance.PriceLister
	Ticker24h(ctx context.Context, symbol string) (binance.Ticker24h, error)
	Klines(ctx context.Context, symbol, interval string, limit int) (series.Series, error)
}

// Settings tune the views.
type Settings struct {
	HistoryDays   int
	Concurrency   int
	Retries       int
	Backoff       time.Duration
	Timeout       time.Duration
	QuoteAsset    string
	DefaultPair   string
	PairsTTL      time.Duration
	KlineInterval string
	KlineLimit    int
	KlineShow     int
}

// SettingsFrom maps the configuration onto Settings.
func SettingsFrom(cfg config.Config) Settings {
	return Settings{
		HistoryDays:   cfg.TCMB.HistoryDays,
		Concurrency:   cfg.TCMB.MaxConcurrency,
		Retries:       cfg.TCMB.Retries,
		Backoff:       cfg.RetryBackoff(),
		Timeout:       cfg.RequestTimeout(),
		QuoteAsset:    cfg.Binance.QuoteAsset,
		DefaultPair:   cfg.Binance.DefaultSymbol,
		PairsTTL:      cfg.SymbolsCacheTTL(),
		KlineInterval: cfg.Binance.KlineInterval,
		KlineLimit:    cfg.Binance.KlineLimit,
		KlineShow:     cfg.Binance.KlineShow,
	}
}

// Service dispatches requests to views.
type Service struct {
	Rates    RatesClient
	Stocks   StockClient
	Crypto   CryptoClient
	Cache    *snapshot.Cache
	Session  *Session
	Settings Settings
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewService wires a service with a fresh cache and session.
func NewService(rates RatesClient, stocks StockClient, crypto CryptoClient, settings Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Rates:    rates,
		Stocks:   stocks,
		Crypto:   crypto,
		Cache:    snapshot.New(snapshot.WithLogger(logger)),
		Session:  NewSession(),
		Settings: settings,
		Logger:   logger,
		Now:      time.Now,
	}
}

// Handle serves req. A view with nothing to show returns a Result with
// Warning set; a panicking view returns ErrInternal.
func (s *Service) Handle(ctx context.Context, req Request) (res Result, err error) {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reqID := uuid.New().String()
	log = log.With(zap.String("request_id", reqID), zap.Stringer("view", req.View))
	start := s.now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("view panicked", zap.Any("panic", r), zap.Stack("stack"))
			res, err = Result{}, ErrInternal
		}
	}()

	dataset, tracked := req.View.Dataset()
	var ticket uint64
	if tracked {
		ticket = s.Session.Begin(dataset)
	}

	switch req.View {
	case Rates:
		res, err = s.rates(ctx, req)
	case History:
		res, err = s.history(ctx, log, req)
	case StockSearch:
		res, err = s.stock(ctx, req)
	case Crypto:
		res, err = s.crypto(ctx, req)
	default:
		return Result{}, fmt.Errorf("%w: unknown view %v", ErrInvalidRequest, req.View)
	}

	if errors.Is(err, source.ErrEmptyResult) {
		log.Info("view empty", zap.Error(err))
		return Result{View: req.View, RequestID: reqID, Title: res.Title, Warning: err.Error()}, nil
	}
	if err != nil {
		log.Warn("view failed", zap.Error(err))
		return Result{}, err
	}

	res.View, res.RequestID = req.View, reqID
	if tracked && !s.Session.Commit(dataset, ticket, res.Data) {
		log.Debug("result superseded by a newer request", zap.String("dataset", string(dataset)))
	}
	log.Info("view served", zap.Int("rows", len(res.Table.Rows)), zap.Duration("took", s.now().Sub(start)))
	return res, nil
}

// Export encodes the last table loaded into dataset d.
func (s *Service) Export(d Dataset, f export.Format, opts ...export.Option) (export.Payload, error) {
	return s.Session.Export(d, f, opts...)
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// emptyError is a user-facing "nothing to show" message that matches
// source.ErrEmptyResult.
type emptyError struct{ msg string }

func (e *emptyError) Error() string { return e.msg }

func (e *emptyError) Is(target error) bool { return target == source.ErrEmptyResult }

func empty(format string, args ...any) error {
	return &emptyError{msg: fmt.Sprintf(format, args...)}
}
