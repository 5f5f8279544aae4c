// Package external contains clients for the external drug-data authorities
// and the per-provider query cache they share.
package external

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/prescription-analysis-server/internal/domain"
)

// QueryCache caches parsed provider responses keyed by normalized query.
// Tier 1 is an in-process LRU with per-entry expiry; tier 2 is an optional
// Redis client for sharing entries across processes. Entries expire by TTL
// only; concurrent callers that miss simultaneously may both fetch and both
// store, which is an idempotent overwrite.
type QueryCache struct {
	prefix string
	ttl    time.Duration
	memory *lru.Cache[string, cachedRecords]
	redis  *redis.Client
	logger *logrus.Logger
}

type cachedRecords struct {
	Records   []domain.InteractionRecord `json:"records"`
	FetchedAt time.Time                  `json:"fetched_at"`
	ExpiresAt time.Time                  `json:"expires_at"`
}

func (c cachedRecords) expired() bool {
	return time.Now().After(c.ExpiresAt)
}

// NewQueryCache creates a cache for one provider. prefix namespaces keys per
// provider, ttl is the provider-specific entry lifetime, and redisClient may
// be nil to run with the memory tier alone.
func NewQueryCache(prefix string, ttl time.Duration, maxEntries int, redisClient *redis.Client, logger *logrus.Logger) (*QueryCache, error) {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	memory, err := lru.New[string, cachedRecords](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	return &QueryCache{
		prefix: prefix,
		ttl:    ttl,
		memory: memory,
		redis:  redisClient,
		logger: logger,
	}, nil
}

// Get returns the cached records for a query, reporting whether a valid
// entry was found. Expired entries are evicted on read.
func (c *QueryCache) Get(ctx context.Context, query string) ([]domain.InteractionRecord, bool) {
	key := c.key(query)

	if entry, ok := c.memory.Get(key); ok {
		if !entry.expired() {
			return entry.Records, true
		}
		c.memory.Remove(key)
	}

	if c.redis == nil {
		return nil, false
	}

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("cache", c.prefix).Warn("Redis cache read failed")
		return nil, false
	}

	var entry cachedRecords
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		// Corrupted entry: drop it rather than serving garbage.
		c.redis.Del(ctx, key)
		return nil, false
	}
	if entry.expired() {
		c.redis.Del(ctx, key)
		return nil, false
	}

	// Populate the memory tier for subsequent hits.
	c.memory.Add(key, entry)
	return entry.Records, true
}

// Set stores the records for a query in both tiers.
func (c *QueryCache) Set(ctx context.Context, query string, records []domain.InteractionRecord) {
	key := c.key(query)
	entry := cachedRecords{
		Records:   records,
		FetchedAt: time.Now(),
		ExpiresAt: time.Now().Add(c.ttl),
	}

	c.memory.Add(key, entry)

	if c.redis == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.WithError(err).WithField("cache", c.prefix).Warn("Failed to marshal cache entry")
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("cache", c.prefix).Warn("Redis cache write failed")
	}
}

// Purge drops every entry in the memory tier. Redis entries expire on their
// own TTL.
func (c *QueryCache) Purge() {
	c.memory.Purge()
}

// key creates a namespaced, fixed-length cache key for a normalized query.
func (c *QueryCache) key(query string) string {
	hash := sha256.Sum256([]byte(domain.NormalizeName(query)))
	return fmt.Sprintf("%s:query:%x", c.prefix, hash[:8])
}
