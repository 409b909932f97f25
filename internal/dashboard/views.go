package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"finboard/internal/aggregate"
	"finboard/internal/export"
	"finboard/internal/series"
	"finboard/internal/source"
	"finboard/internal/source/binance"
	"finboard/internal/source/finnhub"
	"finboard/internal/source/tcmb"
)

const (
	minHistoryDays  = 7
	maxHistoryDays  = 60
	defaultCurrency = "USD"
)

func (s *Service) rates(ctx context.Context, req Request) (Result, error) {
	b, err := s.Rates.Today(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("today's bulletin: %w", err)
	}
	res := Result{Title: "TCMB exchange rates"}
	if !b.Date.IsZero() {
		res.Title += " " + b.Date.Format("2006-01-02")
	}
	if len(b.Currencies) == 0 {
		return res, empty("the bulletin lists no currencies")
	}

	t := export.Table{Columns: []string{"Code", "Name", "Buying", "Selling"}}
	for _, c := range b.Currencies {
		t.Rows = append(t.Rows, export.Row{c.Code, c.Name, c.ForexBuying, c.ForexSelling})
	}
	res.Table, res.Data = t, t

	if req.Currency != "" {
		c, ok := b.Find(req.Currency)
		if !ok {
			return Result{}, fmt.Errorf("%w: currency %q is not in the bulletin", ErrInvalidRequest, req.Currency)
		}
		res.Metrics = []Metric{
			{Label: c.Name + " buying", Value: c.ForexBuying},
			{Label: c.Name + " selling", Value: c.ForexSelling},
			{Label: c.Name + " banknote buying", Value: c.BanknoteBuying},
			{Label: c.Name + " banknote selling", Value: c.BanknoteSelling},
		}
	}
	return res, nil
}

func (s *Service) history(ctx context.Context, log *zap.Logger, req Request) (Result, error) {
	days := req.Days
	if days == 0 {
		days = s.Settings.HistoryDays
	}
	if days < minHistoryDays || days > maxHistoryDays {
		return Result{}, fmt.Errorf("%w: days must be within %d..%d, got %d", ErrInvalidRequest, minHistoryDays, maxHistoryDays, days)
	}
	code := strings.ToUpper(strings.TrimSpace(req.Currency))
	if code == "" {
		code = defaultCurrency
	}

	adapter := &series.Adapter{
		Name:    "tcmb:" + code,
		Probe:   tcmb.RateProbe(s.Rates, code),
		Timeout: s.Settings.Timeout,
		Retries: s.Settings.Retries,
		Backoff: s.Settings.Backoff,
		Logger:  log,
	}
	hist := series.Collect(ctx, series.Days(s.now(), days), series.Identity, adapter,
		series.WithConcurrency(s.Settings.Concurrency), series.WithLogger(log))

	res := Result{Title: fmt.Sprintf("%s/TRY last %d days", code, days)}
	if hist.Empty() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		return res, empty("no data found for %s; the bank may not have published rates on these days", code)
	}

	t := export.FromSeries(hist, "Date", tcmb.FieldBuying, tcmb.FieldSelling)
	res.Table, res.Data = t, t
	sum := aggregate.Summarize(hist, tcmb.FieldSelling)
	res.Metrics = []Metric{
		{Label: "Average selling", Value: sum.Mean},
		{Label: "Lowest selling", Value: sum.Min},
		{Label: "Highest selling", Value: sum.Max},
		{Label: "Change (%)", Value: sum.ChangePct},
		{Label: "Days with data", Value: float64(sum.Count)},
	}
	return res, nil
}

func (s *Service) stock(ctx context.Context, req Request) (Result, error) {
	symbol := strings.TrimSpace(req.Symbol)
	var choices []Choice
	if symbol == "" {
		q := strings.TrimSpace(req.Query)
		if q == "" {
			return Result{}, fmt.Errorf("%w: enter a symbol or company name", ErrInvalidRequest)
		}
		matches, err := s.Stocks.Search(ctx, q)
		if err != nil {
			return Result{}, fmt.Errorf("search %q: %w", q, err)
		}
		for _, m := range matches {
			if m.Symbol != "" {
				choices = append(choices, Choice{Key: m.Symbol, Label: m.Description})
			}
		}
		if len(choices) == 0 {
			return Result{Title: "Stock search"}, empty("no results for %q", q)
		}
		if req.Pick < 0 || req.Pick >= len(choices) {
			return Result{}, fmt.Errorf("%w: pick %d is out of range 0..%d", ErrInvalidRequest, req.Pick, len(choices)-1)
		}
		symbol = choices[req.Pick].Key
	}
	var (
		q   finnhub.Quote
		err error
	)
	if finnhub.IsBIST(symbol) {
		symbol = finnhub.BISTSymbol(symbol)
		q, err = s.Stocks.QuoteBIST(ctx, symbol)
	} else {
		q, err = s.Stocks.Quote(ctx, symbol)
	}
	if err != nil {
		return Result{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	res := Result{Title: "Quote " + symbol, Choices: choices}
	if !q.Valid() {
		return res, empty("no price data for %s", symbol)
	}

	res.Table = export.Table{
		Columns: []string{"Symbol", "Last", "PrevClose", "High", "Low", "Change", "ChangePct"},
		Rows:    []export.Row{{symbol, q.Current, q.PrevClose, q.High, q.Low, q.Change, q.ChangePct}},
	}
	res.Data = res.Table
	res.Metrics = []Metric{
		{Label: "Last price", Value: q.Current},
		{Label: "Change", Value: q.Change},
		{Label: "Change (%)", Value: q.ChangePct},
		{Label: "Previous close", Value: q.PrevClose},
		{Label: "Day high", Value: q.High},
		{Label: "Day low", Value: q.Low},
	}
	return res, nil
}

func (s *Service) crypto(ctx context.Context, req Request) (Result, error) {
	pairs, err := s.Cache.GetOrRefresh(ctx, binance.PairsLoader(s.Crypto, s.Settings.QuoteAsset), s.Settings.PairsTTL)
	if err != nil {
		return Result{}, fmt.Errorf("pair list: %w", err)
	}
	if pairs.Len() == 0 {
		return Result{Title: "Crypto"}, empty("no %s pairs listed", s.Settings.QuoteAsset)
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol != "" {
		if _, ok := pairs.Get(symbol); !ok {
			return Result{}, fmt.Errorf("%w: %s is not a listed %s pair", ErrInvalidRequest, symbol, s.Settings.QuoteAsset)
		}
	} else {
		symbol = strings.ToUpper(s.Settings.DefaultPair)
		if _, ok := pairs.Get(symbol); !ok {
			symbol = pairs.Keys()[0]
		}
	}

	res := Result{Title: symbol + " last 24 hours"}
	tk, err := s.Crypto.Ticker24h(ctx, symbol)
	if errors.Is(err, source.ErrNotFound) {
		return res, empty("no data for %s", symbol)
	}
	if err != nil {
		return Result{}, fmt.Errorf("24h ticker %s: %w", symbol, err)
	}
	candles, err := s.Crypto.Klines(ctx, symbol, s.Settings.KlineInterval, s.Settings.KlineLimit)
	if err != nil {
		return Result{}, fmt.Errorf("klines %s: %w", symbol, err)
	}
	if candles.Empty() {
		return res, empty("no candles for %s", symbol)
	}

	cols := []string{binance.FieldOpen, binance.FieldClose, binance.FieldHigh, binance.FieldLow}
	res.Data = export.FromSeries(candles, "Time", cols...)
	show := s.Settings.KlineShow
	if show <= 0 {
		show = candles.Len()
	}
	res.Table = export.FromSeries(candles.Tail(show), "Time", cols...)
	closing := aggregate.Summarize(candles, binance.FieldClose)
	res.Metrics = []Metric{
		{Label: "Last price", Value: tk.LastPrice},
		{Label: "Change", Value: tk.PriceChange},
		{Label: "Change (%)", Value: tk.PriceChangePercent},
		{Label: "Previous close", Value: tk.PrevClosePrice},
		{Label: "High (24h)", Value: tk.HighPrice},
		{Label: "Low (24h)", Value: tk.LowPrice},
		{Label: "Average close", Value: closing.Mean},
	}
	return res, nil
}
