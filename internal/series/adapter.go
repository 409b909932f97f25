package series

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"finboard/internal/source"
)

// MaxTimeout bounds a single remote probe.
const MaxTimeout = 10 * time.Second

// Fetcher performs one point-in-time fetch. ok == false is Absent: the
// source has nothing usable for key. Fetch never returns an error.
type Fetcher interface {
	Fetch(ctx context.Context, key time.Time) (p Point, ok bool)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, key time.Time) (Point, bool)

func (f FetcherFunc) Fetch(ctx context.Context, key time.Time) (Point, bool) { return f(ctx, key) }

// ProbeFunc is a source-level fetch that reports why it failed.
type ProbeFunc func(ctx context.Context, key time.Time) (Point, error)

// Adapter turns a ProbeFunc into a Fetcher. Every failure becomes
// Absent; transient ones are retried first.
type Adapter struct {
	Name    string
	Probe   ProbeFunc
	Timeout time.Duration // per attempt, clamped to MaxTimeout
	Retries int           // extra attempts for transient errors
	Backoff time.Duration // first retry delay, doubled each attempt
	Logger  *zap.Logger
	// Transient decides which errors are retried. Defaults to source.IsTransient.
	Transient func(error) bool
}

func (a *Adapter) Fetch(ctx context.Context, key time.Time) (Point, bool) {
	log := a.Logger
	if log == nil {
		log = zap.NewNop()
	}
	transient := a.Transient
	if transient == nil {
		transient = source.IsTransient
	}
	backoff := a.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		p, err := a.attempt(ctx, key)
		if err == nil {
			return p, true
		}
		if errors.Is(err, source.ErrNotFound) {
			log.Debug("no data for period", zap.String("source", a.Name), zap.Time("key", key))
			return Point{}, false
		}
		if !transient(err) || attempt >= a.Retries || ctx.Err() != nil {
			log.Debug("probe failed, skipping period",
				zap.String("source", a.Name), zap.Time("key", key), zap.Int("attempt", attempt+1), zap.Error(err))
			return Point{}, false
		}
		wait := backoff << attempt
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return Point{}, false
		case <-t.C:
		}
	}
}

func (a *Adapter) attempt(ctx context.Context, key time.Time) (p Point, err error) {
	timeout := a.Timeout
	if timeout <= 0 || timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("probe panic: %v", rec)
		}
	}()
	if a.Probe == nil {
		return Point{}, errors.New("nil probe")
	}
	return a.Probe(ctx, key)
}
