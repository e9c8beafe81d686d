package provider

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/guttosm/assetbeta/internal/domain/models"
	"github.com/guttosm/assetbeta/internal/logger"
)

// Cache memoizes the last series loaded by the wrapped Provider.
//
// It holds a single entry keyed by the requested asset set (order and
// duplicates ignored). Loading a different set replaces the entry; there is no
// expiry. Concurrent loads of the same set share one upstream call, which is
// not cancelled when the caller that started it gives up; each caller still
// returns as soon as its own context is done. Errors and empty series are not
// cached.
//
// Callers receive the cached series itself and must treat it as read-only.
type Cache struct {
	next  Provider
	group singleflight.Group

	mu     sync.RWMutex
	key    string
	series models.ReturnSeries
	valid  bool

	onLookup func(hit bool)
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLookupHook registers fn to be called on every Load with the hit/miss outcome.
func WithLookupHook(fn func(hit bool)) CacheOption {
	return func(c *Cache) { c.onLookup = fn }
}

// NewCache wraps next with a single-entry memo.
func NewCache(next Provider, opts ...CacheOption) *Cache {
	c := &Cache{next: next}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Name() string { return c.next.Name() }

// Load returns the memoized series for assets, loading it on a miss.
func (c *Cache) Load(ctx context.Context, assets []models.Asset) (models.ReturnSeries, error) {
	key := Key(assets)

	c.mu.RLock()
	if c.valid && c.key == key {
		s := c.series
		c.mu.RUnlock()
		c.lookup(true)
		logger.L().Debug().Str("provider", c.next.Name()).Str("key", key).Msg("series cache hit")
		return s, nil
	}
	c.mu.RUnlock()
	c.lookup(false)

	// The shared load outlives the caller that started it.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		// A load for this key may have completed since the check above.
		c.mu.RLock()
		if c.valid && c.key == key {
			s := c.series
			c.mu.RUnlock()
			return s, nil
		}
		c.mu.RUnlock()

		s, err := c.next.Load(loadCtx, assets)
		if err != nil {
			return nil, err
		}
		if !s.IsEmpty() {
			c.mu.Lock()
			c.key, c.series, c.valid = key, s, true
			c.mu.Unlock()
		}
		return s, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return models.ReturnSeries{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return models.ReturnSeries{}, res.Err
	}
	logger.L().Debug().Str("provider", c.next.Name()).Str("key", key).Bool("shared", res.Shared).Msg("series cache miss")
	return res.Val.(models.ReturnSeries), nil
}

// Invalidate drops the memoized entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.key, c.series, c.valid = "", models.ReturnSeries{}, false
	c.mu.Unlock()
}

func (c *Cache) lookup(hit bool) {
	if c.onLookup != nil {
		c.onLookup(hit)
	}
}

// Key is the canonical cache key of an asset set: sorted, de-duplicated names.
func Key(assets []models.Asset) string {
	set := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		set[a.Name] = struct{}{}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x1f")
}
