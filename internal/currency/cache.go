package currency

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// SnapshotStore persists live snapshots so they survive provider outages and restarts.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	LatestSnapshot(ctx context.Context) (Snapshot, bool, error)
}

// Cache owns the last live snapshot. A live snapshot younger than the TTL is
// served without contacting the provider; otherwise every call refetches.
// When the provider fails the cache falls back to the store, then to the static table.
type Cache struct {
	provider Provider
	store    SnapshotStore
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger

	last atomic.Pointer[Snapshot]
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore enables durable fallback through store.
func WithStore(store SnapshotStore) Option {
	return func(c *Cache) { c.store = store }
}

// WithTTL sets how long a live snapshot is reused. Zero refetches on every call.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithLogger sets the logger used to report provider and store failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache builds a cache around provider. A nil provider always serves fallbacks.
func NewCache(provider Provider, opts ...Option) *Cache {
	c := &Cache{
		provider: provider,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Last returns the most recent live snapshot without contacting the provider.
func (c *Cache) Last() (Snapshot, bool) {
	if snap := c.last.Load(); snap != nil {
		return *snap, true
	}
	return Snapshot{}, false
}

// Snapshot returns current rates. It never fails: the static table is the last resort.
func (c *Cache) Snapshot(ctx context.Context) Snapshot {
	if snap, ok := c.Last(); ok && c.ttl > 0 && c.now().Sub(snap.FetchedAt) < c.ttl {
		return snap
	}

	if c.provider != nil {
		snap, err := c.provider.Fetch(ctx)
		if err == nil {
			c.last.Store(&snap)
			c.persist(ctx, snap)
			return snap
		}
		c.logger.Warn("exchange rate fetch failed, using fallback", zap.Error(err))
	}

	return c.fallback(ctx)
}

func (c *Cache) persist(ctx context.Context, snap Snapshot) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveSnapshot(ctx, snap); err != nil {
		c.logger.Warn("persist exchange rates", zap.Error(err))
	}
}

func (c *Cache) fallback(ctx context.Context) Snapshot {
	if c.store != nil {
		snap, ok, err := c.store.LatestSnapshot(ctx)
		switch {
		case err != nil:
			c.logger.Warn("load stored exchange rates", zap.Error(err))
		case ok && snap.Valid():
			if snap.Source != SourceFallback {
				snap.Source = SourceStored
			}
			return snap
		}
	}
	return FallbackSnapshot()
}
