// Package cache provides the optional Redis-backed preview metadata cache.
// Re-saving a recently fetched URL reuses the cached extraction instead of
// hitting the page again. The cache is best-effort: every failure degrades
// to a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/readlist/internal/logger"
	"github.com/jonesrussell/north-cloud/readlist/internal/metadata"
)

// connectionTimeout bounds the initial Redis ping.
const connectionTimeout = 2 * time.Second

// keyPrefix namespaces metadata cache keys.
const keyPrefix = "readlist:meta:"

// MetadataCache caches extracted preview metadata keyed by URL.
type MetadataCache interface {
	// Get returns the cached metadata for url and whether it was present.
	Get(ctx context.Context, url string) (metadata.Metadata, bool)
	// Set stores the metadata for url.
	Set(ctx context.Context, url string, meta metadata.Metadata)
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return client, nil
}

// RedisCache is the Redis-backed MetadataCache implementation.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewRedisCache creates a metadata cache with the given entry TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, log: log}
}

// Get returns the cached metadata for url, if any.
func (c *RedisCache) Get(ctx context.Context, url string) (metadata.Metadata, bool) {
	data, err := c.client.Get(ctx, keyPrefix+url).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Metadata cache read failed", logger.Error(err))
		}
		return metadata.Metadata{}, false
	}

	var meta metadata.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		c.log.Warn("Metadata cache entry corrupt", logger.Error(err))
		return metadata.Metadata{}, false
	}

	return meta, true
}

// Set stores the metadata for url with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, url string, meta metadata.Metadata) {
	data, err := json.Marshal(meta)
	if err != nil {
		c.log.Warn("Metadata cache encode failed", logger.Error(err))
		return
	}

	if err := c.client.Set(ctx, keyPrefix+url, data, c.ttl).Err(); err != nil {
		c.log.Warn("Metadata cache write failed", logger.Error(err))
	}
}

// NopCache is a MetadataCache that caches nothing. Used when the cache
// is disabled in configuration.
type NopCache struct{}

// NewNopCache creates a no-op metadata cache.
func NewNopCache() *NopCache {
	return &NopCache{}
}

// Get always misses.
func (c *NopCache) Get(ctx context.Context, url string) (metadata.Metadata, bool) {
	return metadata.Metadata{}, false
}

// Set does nothing.
func (c *NopCache) Set(ctx context.Context, url string, meta metadata.Metadata) {}
