package series

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of probes kept in flight.
const DefaultConcurrency = 8

type collectConfig struct {
	concurrency int
	logger      *zap.Logger
}

// CollectOption configures Collect.
type CollectOption func(*collectConfig)

// WithConcurrency sets how many fetches may be in flight at once.
func WithConcurrency(n int) CollectOption {
	return func(c *collectConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger used for the collection summary.
func WithLogger(l *zap.Logger) CollectOption {
	return func(c *collectConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Collect calls f once per index and returns the successful points
// sorted by key. Absent periods are skipped; if every period is Absent
// the result is an empty Series.
//
// Fetches for different indices are independent and run concurrently;
// indices are dispatched in the order given. When two fetches yield the
// same key, the one dispatched first is kept.
func Collect[I any](ctx context.Context, indices []I, keyFn func(I) time.Time, f Fetcher, opts ...CollectOption) Series {
	cfg := collectConfig{concurrency: DefaultConcurrency, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Each fetch owns its slot, so results are gathered in dispatch order
	// and a duplicate key resolves the same way on every run.
	var (
		slots  = make([]Point, len(indices))
		found  = make([]bool, len(indices))
		mu     sync.Mutex
		absent int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i, idx := range indices {
		key := keyFn(idx)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			p, ok := f.Fetch(gctx, key)
			if !ok {
				mu.Lock()
				absent++
				mu.Unlock()
				return nil
			}
			slots[i], found[i] = p, true
			return nil
		})
	}
	_ = g.Wait()

	points := make([]Point, 0, len(indices))
	for i, p := range slots {
		if found[i] {
			points = append(points, p)
		}
	}
	s := New(points)
	cfg.logger.Debug("collection finished",
		zap.Int("requested", len(indices)), zap.Int("collected", s.Len()), zap.Int("absent", absent))
	return s
}
