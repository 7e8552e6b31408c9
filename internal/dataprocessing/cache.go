package dataprocessing

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// DefaultCacheCapacity is the number of ingestion results kept when no
// capacity is configured
const DefaultCacheCapacity = 16

// Cache memoizes ingestion results by source fingerprint. Entries are only
// dropped by eviction, Invalidate or Purge; failed loads are never stored.
type Cache struct {
	loader   *Loader
	capacity int
	logger   *slog.Logger

	mu    sync.Mutex
	items map[string]*Result
	order []string // insertion order, oldest first

	group singleflight.Group
}

// NewCache creates a cache in front of loader. capacity <= 0 uses
// DefaultCacheCapacity.
func NewCache(loader *Loader, capacity int, logger *slog.Logger) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		loader:   loader,
		capacity: capacity,
		logger:   logger.With(slog.String("component", "ingest_cache")),
		items:    make(map[string]*Result),
	}
}

func cacheKey(fp string, opts LoadOptions) string {
	layout := "lenient"
	if opts.StrictLayout {
		layout = "strict"
	}
	return modePrefix(fp, opts.Mode) + opts.Strategy.Name() + ":" + layout
}

func modePrefix(fp string, mode domain.IngestMode) string {
	return fp + ":" + string(mode) + ":"
}

// Load returns the cached result for src or ingests it. Concurrent calls for
// the same source and options share one ingestion.
func (c *Cache) Load(ctx context.Context, src Source, opts LoadOptions) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	fp, err := src.Fingerprint()
	if err != nil {
		return nil, err
	}
	key := cacheKey(fp, opts)

	if res, ok := c.get(key); ok {
		c.loader.telemetry.recordCache(ctx, true)
		c.logger.DebugContext(ctx, "ingestion cache hit", slog.String("workbook", src.Name()), slog.String("key", key))
		return res, nil
	}
	c.loader.telemetry.recordCache(ctx, false)

	// the load is shared by every waiter on key, so one caller going away
	// must not fail the others
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if res, ok := c.get(key); ok {
			return res, nil
		}
		res, err := c.loader.load(shared, src, fp, opts)
		if err != nil {
			return nil, err
		}
		c.put(key, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// Invalidate drops every entry of a fingerprint and reports how many went
func (c *Cache) Invalidate(fingerprint string) int {
	return c.dropPrefix(fingerprint + ":")
}

// InvalidateMode drops the entries of a fingerprint ingested in one mode
func (c *Cache) InvalidateMode(fingerprint string, mode domain.IngestMode) int {
	return c.dropPrefix(modePrefix(fingerprint, mode))
}

func (c *Cache) dropPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.order[:0]
	removed := 0
	for _, key := range c.order {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept
	return removed
}

// Purge empties the cache
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*Result)
	c.order = nil
}

// Len returns the number of cached results
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) get(key string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.items[key]
	return res, ok
}

func (c *Cache) put(key string, res *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; exists {
		c.items[key] = res
		return
	}
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
		c.logger.Debug("ingestion cache eviction", slog.String("key", oldest))
	}
	c.items[key] = res
	c.order = append(c.order, key)
}
