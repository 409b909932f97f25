// Package snapshot memoizes full-source listings (symbol lists and the
// like) for a bounded time-to-live.
package snapshot

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Snapshot maps a key (symbol, currency code) to descriptive metadata.
// It is never modified after creation; a refresh replaces it.
type Snapshot struct {
	entries   map[string]string
	createdAt time.Time
	ttl       time.Duration
}

// NewSnapshot copies entries into a snapshot created at createdAt.
func NewSnapshot(entries map[string]string, createdAt time.Time, ttl time.Duration) *Snapshot {
	return &Snapshot{entries: maps.Clone(entries), createdAt: createdAt, ttl: ttl}
}

func (s *Snapshot) Len() int { return len(s.entries) }

func (s *Snapshot) CreatedAt() time.Time { return s.createdAt }

func (s *Snapshot) TTL() time.Duration { return s.ttl }

// Get returns the metadata stored for key.
func (s *Snapshot) Get(key string) (string, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Keys returns all keys sorted.
func (s *Snapshot) Keys() []string {
	keys := slices.Collect(maps.Keys(s.entries))
	slices.Sort(keys)
	return keys
}

// Entries returns a copy of the mapping.
func (s *Snapshot) Entries() map[string]string { return maps.Clone(s.entries) }

// Stale reports whether the snapshot outlived its TTL at now.
func (s *Snapshot) Stale(now time.Time) bool { return now.Sub(s.createdAt) > s.ttl }

// Loader produces a full listing. Name identifies the loader: the cache
// keeps one snapshot and one in-flight refresh per name.
type Loader struct {
	Name string
	Load func(ctx context.Context) (map[string]string, error)
}

// DefaultLoadTimeout bounds a shared load once it no longer follows the
// context of the caller that started it.
const DefaultLoadTimeout = 30 * time.Second

// Cache holds the latest snapshot per loader.
type Cache struct {
	mu          sync.RWMutex
	items       map[string]*Snapshot
	sf          singleflight.Group
	now         func() time.Time
	log         *zap.Logger
	loadTimeout time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(c *Cache) { c.now = now } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(c *Cache) { c.log = l } }

// WithLoadTimeout bounds each shared load. Non-positive values are ignored.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{items: make(map[string]*Snapshot), now: time.Now, log: zap.NewNop(), loadTimeout: DefaultLoadTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrRefresh returns the cached snapshot for loader while it is
// younger than ttl, and loads a new one otherwise. Concurrent callers
// share one load. The load is detached from the caller that started it,
// so a caller giving up only stops its own wait. A failed load keeps the
// previous snapshot; an empty result is returned but not stored.
func (c *Cache) GetOrRefresh(ctx context.Context, loader Loader, ttl time.Duration) (*Snapshot, error) {
	if loader.Load == nil {
		return nil, fmt.Errorf("snapshot %q: nil loader", loader.Name)
	}
	if s, ok := c.fresh(loader.Name, ttl); ok {
		return s, nil
	}

	ch := c.sf.DoChan(loader.Name, func() (v any, err error) {
		// DoChan runs the flight on its own goroutine, where a panic
		// cannot be recovered by the caller.
		defer func() {
			if r := recover(); r != nil {
				v, err = nil, fmt.Errorf("snapshot %q: loader panic: %v", loader.Name, r)
			}
		}()
		// Another flight may have finished between the check above and here.
		if s, ok := c.fresh(loader.Name, ttl); ok {
			return s, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		start := c.now()
		entries, err := loader.Load(lctx)
		if err != nil {
			return nil, fmt.Errorf("snapshot %q: %w", loader.Name, err)
		}
		s := NewSnapshot(entries, c.now(), ttl)
		if s.Len() > 0 {
			c.mu.Lock()
			c.items[loader.Name] = s
			c.mu.Unlock()
		}
		c.log.Debug("snapshot refreshed",
			zap.String("loader", loader.Name), zap.Int("entries", s.Len()), zap.Duration("took", c.now().Sub(start)))
		return s, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("snapshot %q: %w", loader.Name, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			c.log.Debug("snapshot load shared", zap.String("loader", loader.Name))
		}
		return r.Val.(*Snapshot), nil
	}
}

func (c *Cache) fresh(name string, ttl time.Duration) (*Snapshot, bool) {
	c.mu.RLock()
	s, ok := c.items[name]
	c.mu.RUnlock()
	if !ok || c.now().Sub(s.createdAt) > ttl {
		return nil, false
	}
	return s, true
}
