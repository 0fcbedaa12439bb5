// Package demographic caches location-level demographic signals and derives
// market analyses from them.
package demographic

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/dealscout/internal/metrics"
	"github.com/sells-group/dealscout/internal/model"
)

const defaultLoadTimeout = 30 * time.Second

// Provider fetches live demographic data for a location.
type Provider interface {
	Fetch(ctx context.Context, location string) (*model.DemographicSignal, error)
}

// Store is an optional shared second-level cache for live signals.
type Store interface {
	Get(ctx context.Context, key string) (*model.DemographicSignal, bool, error)
	Set(ctx context.Context, key string, sig *model.DemographicSignal) error
}

type entry struct {
	key     string
	signal  *model.DemographicSignal
	expires time.Time // zero = never
}

// Cache memoizes demographic signals by normalized location. Concurrent
// lookups for the same key share a single provider call. Entries expire
// after the TTL and the least recently used entry is evicted past
// maxEntries. A zero TTL or maxEntries disables that bound.
type Cache struct {
	provider   Provider
	store      Store
	ttl         time.Duration
	maxEntries  int
	loadTimeout time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used

	group singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long an entry stays valid.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithMaxEntries bounds the number of cached locations.
func WithMaxEntries(n int) Option {
	return func(c *Cache) { c.maxEntries = n }
}

// WithStore adds a second-level store consulted before the provider.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

// WithLoadTimeout bounds a single store and provider load. The load runs
// detached from the caller, so this is the only deadline it sees.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) { c.loadTimeout = d }
}

// WithNow sets the clock for testing.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache creates a Cache. A nil provider always yields synthetic signals.
func NewCache(provider Provider, opts ...Option) *Cache {
	c := &Cache{
		provider:    provider,
		loadTimeout: defaultLoadTimeout,
		now:         time.Now,
		entries:     make(map[string]*list.Element),
		order:       list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSignal returns the demographic signal for a location, fetching it on
// first use. Provider failures fall back to Synthetic. The returned value is
// a copy and may be modified by the caller.
//
// A caller whose ctx ends before the load finishes gets ctx's error; the
// load itself keeps running and fills the cache for later callers.
func (c *Cache) GetSignal(ctx context.Context, location string) (*model.DemographicSignal, error) {
	key := NormalizeLocation(location)
	if key == "" {
		return nil, eris.New("demographic: location is required")
	}

	if sig, ok := c.lookup(key); ok {
		metrics.DemographicLookups.WithLabelValues("hit").Inc()
		return copySignal(sig), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrapf(err, "demographic: lookup %s", location)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if sig, ok := c.lookup(key); ok {
			return sig, nil
		}
		loadCtx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, c.loadTimeout)
			defer cancel()
		}
		sig, cacheable := c.load(loadCtx, key, location)
		if cacheable {
			c.insert(key, sig)
		}
		return sig, nil
	})

	select {
	case <-ctx.Done():
		return nil, eris.Wrapf(ctx.Err(), "demographic: lookup %s", location)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return copySignal(res.Val.(*model.DemographicSignal)), nil
	}
}

// AnalyzeMarket computes a fresh MarketAnalysis from the cached signal.
func (c *Cache) AnalyzeMarket(ctx context.Context, location, industry string) (*model.MarketAnalysis, error) {
	sig, err := c.GetSignal(ctx, location)
	if err != nil {
		return nil, err
	}
	return Analyze(sig, industry), nil
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// load resolves a signal from the store, then the provider, then Synthetic.
// A synthetic signal produced because the load ran out of time is returned
// but not cached.
func (c *Cache) load(ctx context.Context, key, location string) (*model.DemographicSignal, bool) {
	log := zap.L().With(zap.String("location", location))

	if c.store != nil {
		sig, ok, err := c.store.Get(ctx, key)
		if err != nil {
			log.Warn("demographic: store get failed", zap.Error(err))
		} else if ok {
			metrics.DemographicLookups.WithLabelValues("store_hit").Inc()
			return sig, true
		}
	}

	if c.provider != nil {
		sig, err := c.provider.Fetch(ctx, location)
		if err == nil && sig != nil {
			metrics.DemographicLookups.WithLabelValues("provider").Inc()
			if sig.Location == "" {
				sig.Location = location
			}
			if c.store != nil {
				if err := c.store.Set(ctx, key, sig); err != nil {
					log.Warn("demographic: store set failed", zap.Error(err))
				}
			}
			return sig, true
		}
		if ctx.Err() != nil {
			log.Warn("demographic: provider load timed out, serving uncached synthetic data", zap.Error(err))
			metrics.DemographicLookups.WithLabelValues("synthetic").Inc()
			return Synthetic(location), false
		}
		log.Warn("demographic: provider unavailable, using synthetic data", zap.Error(err))
	}

	metrics.DemographicLookups.WithLabelValues("synthetic").Inc()
	return Synthetic(location), true
}

func (c *Cache) lookup(key string) (*model.DemographicSignal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.removeElement(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return e.signal, true
}

func (c *Cache) insert(key string, sig *model.DemographicSignal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry{key: key, signal: sig}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	if el, ok := c.entries[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
	} else {
		c.entries[key] = c.order.PushFront(e)
	}

	for c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		c.removeElement(c.order.Back())
	}
	metrics.DemographicCacheEntries.Set(float64(c.order.Len()))
}

func (c *Cache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*entry).key)
	metrics.DemographicCacheEntries.Set(float64(c.order.Len()))
}

func copySignal(sig *model.DemographicSignal) *model.DemographicSignal {
	cp := *sig
	return &cp
}
