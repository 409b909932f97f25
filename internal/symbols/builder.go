// Package symbols builds and reads the stock symbol list used by the
// stock search view.
package symbols

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"finboard/internal/source"
	"finboard/internal/source/finnhub"
)

// CommonStock is the only instrument type kept in the list.
const CommonStock = "Common Stock"

// Lister returns an exchange's full symbol listing.
type Lister interface {
	StockSymbols(ctx context.Context, exchange string) ([]finnhub.StockSymbol, error)
}

// Quoter fetches a quote; a zero current price means no data.
type Quoter interface {
	Quote(ctx context.Context, symbol string) (finnhub.Quote, error)
}

// Builder fetches a listing, keeps common stocks with a description and
// optionally validates each one with a live quote.
type Builder struct {
	Lister   Lister
	Quoter   Quoter
	Exchange string
	Validate bool
	Workers  int
	Retries  int           // extra attempts on 429/5xx
	Backoff  time.Duration // first retry delay, doubled each attempt
	Timeout  time.Duration // per quote
	Limiter  *rate.Limiter // optional, gates every quote
	Logger   *zap.Logger
	// Progress, when set, is called after each validated symbol.
	Progress func(done, total int)
}

// Filter keeps common stocks with a non-empty description, in listing
// order, first occurrence of each symbol only.
func Filter(listing []finnhub.StockSymbol) []Entry {
	seen := make(map[string]struct{}, len(listing))
	out := make([]Entry, 0, len(listing))
	for _, s := range listing {
		code := strings.TrimSpace(s.Symbol)
		desc := strings.TrimSpace(s.Description)
		if s.Type != CommonStock || desc == "" || code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, Entry{Code: code, Name: desc})
	}
	return out
}

// Build returns the filtered, and when Validate is set, quote-checked
// symbol list. Symbols whose quote keeps failing are left out; a missing
// API key or a cancelled context aborts the build.
func (b *Builder) Build(ctx context.Context) ([]Entry, error) {
	log := b.Logger
	if log == nil {
		log = zap.NewNop()
	}
	exchange := b.Exchange
	if exchange == "" {
		exchange = "US"
	}

	listing, err := b.Lister.StockSymbols(ctx, exchange)
	if err != nil {
		return nil, fmt.Errorf("list %s symbols: %w", exchange, err)
	}
	candidates := Filter(listing)
	log.Info("symbol listing filtered",
		zap.String("exchange", exchange), zap.Int("listed", len(listing)), zap.Int("candidates", len(candidates)))
	if !b.Validate || len(candidates) == 0 {
		return candidates, nil
	}

	valid, err := b.validate(ctx, log, candidates)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(candidates))
	for i, e := range candidates {
		if valid[i] {
			out = append(out, e)
		}
	}
	log.Info("symbol list validated", zap.Int("valid", len(out)), zap.Int("dropped", len(candidates)-len(out)))
	return out, nil
}

func (b *Builder) validate(ctx context.Context, log *zap.Logger, candidates []Entry) ([]bool, error) {
	workers := b.Workers
	if workers <= 0 {
		workers = 4
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	valid := make([]bool, len(candidates))
	jobs := make(chan int, workers*2)
	var (
		wg       sync.WaitGroup
		done     atomic.Int32
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() { firstErr = err; cancel() })
	}

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			ok, err := b.check(ctx, candidates[i].Code)
			var ce *source.ConfigurationError
			switch {
			case errors.As(err, &ce):
				fail(err)
			case ctx.Err() != nil:
				fail(ctx.Err())
			case err != nil:
				log.Debug("quote failed, symbol dropped", zap.String("symbol", candidates[i].Code), zap.Error(err))
			default:
				valid[i] = ok
			}
			n := int(done.Add(1))
			if b.Progress != nil {
				b.Progress(n, len(candidates))
			}
		}
	}

	for range workers {
		wg.Add(1)
		go worker()
	}
enqueue:
	for i := range candidates {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break enqueue
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("validate symbols: %w", firstErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("validate symbols: %w", err)
	}
	return valid, nil
}

// check quotes symbol, retrying 429/5xx with exponential backoff.
func (b *Builder) check(ctx context.Context, symbol string) (bool, error) {
	backoff := b.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	timeout := b.Timeout
	if timeout <= 0 || timeout > 10*time.Second {
		timeout = 10 * time.Second
	}
	for attempt := 0; ; attempt++ {
		if b.Limiter != nil {
			if err := b.Limiter.Wait(ctx); err != nil {
				return false, err
			}
		}
		qctx, cancel := context.WithTimeout(ctx, timeout)
		q, err := b.Quoter.Quote(qctx, symbol)
		cancel()
		if err == nil {
			return q.Valid(), nil
		}
		if !source.IsTransient(err) || attempt >= b.Retries {
			return false, err
		}
		select {
		case <-time.After(backoff << attempt):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
