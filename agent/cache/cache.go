package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Namespace partitions the cache; each namespace carries its own TTL.
type Namespace string

const (
	NamespaceCatalog       Namespace = "catalog"
	NamespaceLanguageModel Namespace = "language-model"
	NamespaceSession       Namespace = "session"
)

const (
	defaultCatalogTTL       = time.Hour
	defaultLanguageModelTTL = 30 * time.Minute
	defaultSessionTTL       = 2 * time.Hour

	shardCount = 16
)

type Config struct {
	CatalogTTL       time.Duration `envconfig:"CATALOG_TTL" split_words:"true" default:"1h"`
	LanguageModelTTL time.Duration `envconfig:"LANGUAGE_MODEL_TTL" split_words:"true" default:"30m"`
	SessionTTL       time.Duration `envconfig:"SESSION_TTL" split_words:"true" default:"2h"`
	SweepInterval    time.Duration `envconfig:"SWEEP_INTERVAL" split_words:"true" default:"10m"`
}

type entry struct {
	payload   any
	namespace Namespace
	createdAt time.Time
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// Cache is a sharded, namespaced TTL key/value store. Expired entries are
// treated as absent on read and removed lazily; EvictExpired sweeps all
// shards. Constructed once at process start and passed by handle.
type Cache struct {
	shards [shardCount]*shard
	ttls   map[Namespace]time.Duration

	now func() time.Time
}

type Option func(*Cache)

// WithClock overrides the time source, for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func New(cfg Config, opts ...Option) *Cache {
	c := &Cache{
		ttls: map[Namespace]time.Duration{
			NamespaceCatalog:       orDefault(cfg.CatalogTTL, defaultCatalogTTL),
			NamespaceLanguageModel: orDefault(cfg.LanguageModelTTL, defaultLanguageModelTTL),
			NamespaceSession:       orDefault(cfg.SessionTTL, defaultSessionTTL),
		},
		now: time.Now,
	}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]entry)}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// Key computes the canonical key for a namespace and ordered key parts.
func Key(ns Namespace, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(ns))
	for _, part := range parts {
		h.Write([]byte{'|'})
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) shardFor(key string) *shard {
	// Key is hex of a uniform digest; decode the first digest byte so the
	// selector ranges over all shards, not just the hex alphabet.
	b, err := hex.DecodeString(key[:2])
	if err != nil || len(b) == 0 {
		return c.shards[0]
	}
	return c.shards[b[0]%shardCount]
}

// Get returns the stored payload for (namespace, parts) if present and not
// expired. An expired entry is removed and reported as absent.
func (c *Cache) Get(ns Namespace, parts ...string) (any, bool) {
	key := Key(ns, parts...)
	s := c.shardFor(key)

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.expired(e) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, ok := s.entries[key]; ok && c.expired(cur) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.payload, true
}

// Set stores payload under (namespace, parts) with the current timestamp.
func (c *Cache) Set(ns Namespace, value any, parts ...string) {
	key := Key(ns, parts...)
	s := c.shardFor(key)

	s.mu.Lock()
	s.entries[key] = entry{
		payload:   value,
		namespace: ns,
		createdAt: c.now(),
	}
	s.mu.Unlock()
}

// EvictExpired sweeps every shard and returns the number of entries removed.
func (c *Cache) EvictExpired() int {
	evicted := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for key, e := range s.entries {
			if c.expired(e) {
				delete(s.entries, key)
				evicted++
			}
		}
		s.mu.Unlock()
	}
	return evicted
}

// Flush discards everything, across all namespaces.
func (c *Cache) Flush() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[string]entry)
		s.mu.Unlock()
	}
}

// Stats reports live (non-expired) entry counts per namespace.
func (c *Cache) Stats() map[Namespace]int {
	stats := make(map[Namespace]int, len(c.ttls))
	for ns := range c.ttls {
		stats[ns] = 0
	}
	for _, s := range c.shards {
		s.mu.RLock()
		for _, e := range s.entries {
			if !c.expired(e) {
				stats[e.namespace]++
			}
		}
		s.mu.RUnlock()
	}
	return stats
}

func (c *Cache) expired(e entry) bool {
	ttl, ok := c.ttls[e.namespace]
	if !ok {
		return true
	}
	return c.now().Sub(e.createdAt) > ttl
}
