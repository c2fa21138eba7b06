package mapbox

import (
	"container/list"
	"context"
	"strings"
	"sync"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/observability"
)

// CachedLocator wraps a CountyLocator with an in-memory LRU cache. County
// centroids never move, so entries are kept until evicted.
type CachedLocator struct {
	inner   domain.CountyLocator
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedLocator creates a cache decorator around a locator.
func NewCachedLocator(inner domain.CountyLocator, maxEntries int, metrics *observability.Metrics) *CachedLocator {
	return &CachedLocator{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedLocator) LocateCounty(ctx context.Context, county, state string) (domain.GeocodingResult, error) {
	key := strings.ToUpper(county) + "|" + strings.ToUpper(state)
	if result, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.LocateCounty(ctx, county, state)
	if err != nil {
		return result, err
	}
	// Empty results are not cached so a later request can retry them.
	if result.FormattedAddress != "" {
		c.cache.put(key, result)
	}
	return result, nil
}

// lruCache is a thread-safe LRU cache for GeocodingResults.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List // front = most recently used
	entries    map[string]*list.Element
}

type entry struct {
	key   string
	value domain.GeocodingResult
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (domain.GeocodingResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.GeocodingResult{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

func (c *lruCache) put(key string, value domain.GeocodingResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, value: value})

	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
