package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"

	"github.com/ardnew/lingo/log"
)

// ParseFunc parses phrase text. [Parse] is the default.
type ParseFunc func(ctx context.Context, text string) (Phrase, error)

// Cache memoizes parsed phrases by translation key.
//
// Each entry remembers the xxh3 hash of the text it was parsed from. A lookup
// with different text for the same key re-parses and replaces the entry, so a
// stale phrase is never returned even when the owner forgets to [Cache.Evict].
//
// Concurrent first lookups of one key share a single parse. Failed parses are
// not cached. A Cache is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
	parse   ParseFunc
	logger  log.Logger
	metrics cacheMetrics
}

type cacheEntry struct {
	hash   uint64
	phrase Phrase
}

// cacheMetrics counts cache activity.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	failures  prometheus.Counter
}

// CacheOption configures a [Cache].
type CacheOption func(*Cache)

// WithParser sets the function used to parse phrases on a miss.
func WithParser(parse ParseFunc) CacheOption {
	return func(c *Cache) {
		if parse != nil {
			c.parse = parse
		}
	}
}

// WithCacheLogger sets the logger used for trace output.
func WithCacheLogger(logger log.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithRegisterer registers the cache's counters with reg.
func WithRegisterer(reg prometheus.Registerer) CacheOption {
	return func(c *Cache) {
		if reg == nil {
			return
		}

		reg.MustRegister(
			c.metrics.hits,
			c.metrics.misses,
			c.metrics.evictions,
			c.metrics.failures,
		)
	}
}

// NewCache returns an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[string]cacheEntry),
		metrics: newCacheMetrics(),
	}

	c.parse = func(ctx context.Context, text string) (Phrase, error) {
		return Parse(ctx, text, WithLogger(c.logger))
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func newCacheMetrics() cacheMetrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lingo",
			Subsystem: "parse_cache",
			Name:      name,
			Help:      help,
		})
	}

	return cacheMetrics{
		hits:      counter("hits_total", "Lookups served from the cache."),
		misses:    counter("misses_total", "Lookups that required a parse."),
		evictions: counter("evictions_total", "Entries removed from the cache."),
		failures:  counter("parse_failures_total", "Parses that failed."),
	}
}

// GetOrParse returns the phrase cached under key, parsing text on a miss.
func (c *Cache) GetOrParse(
	ctx context.Context,
	key, text string,
) (Phrase, error) {
	hash := xxh3.HashString(text)

	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if found && e.hash == hash {
		c.metrics.hits.Inc()
		c.logger.TraceContext(ctx, "cache hit", slog.String("key", key))

		return e.phrase, nil
	}

	c.metrics.misses.Inc()
	c.logger.TraceContext(ctx, "cache miss",
		slog.String("key", key),
		slog.Bool("stale", found),
	)

	flight := key + "\x00" + strconv.FormatUint(hash, 36)

	v, err, shared := c.group.Do(flight, func() (any, error) {
		c.mu.RLock()
		e, ok := c.entries[key]
		c.mu.RUnlock()

		if ok && e.hash == hash {
			return e.phrase, nil
		}

		phrase, err := c.parse(ctx, text)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = cacheEntry{hash: hash, phrase: phrase}
		c.mu.Unlock()

		return phrase, nil
	})
	if err != nil {
		c.metrics.failures.Inc()

		return nil, WrapError(err).With(slog.String("key", key))
	}

	if shared {
		c.logger.TraceContext(ctx, "cache parse shared",
			slog.String("key", key))
	}

	phrase, _ := v.(Phrase)

	return phrase, nil
}

// Get returns the phrase cached under key.
func (c *Cache) Get(key string) (Phrase, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]

	return e.phrase, ok
}

// Evict removes the given keys. Absent keys are ignored.
func (c *Cache) Evict(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		if _, ok := c.entries[k]; ok {
			delete(c.entries, k)
			c.metrics.evictions.Inc()
		}
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.evictions.Add(float64(len(c.entries)))
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of cached phrases.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
