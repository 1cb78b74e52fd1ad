package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const seriesKeyPrefix = "quant:series:"

// RedisSeriesCache is the hot tier for raw OHLCV documents. Misses and
// transport errors both read as cache misses; the filesystem is always
// the source of truth.
type RedisSeriesCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSeriesCache connects to addr. TTL <= 0 caches without expiry.
func NewRedisSeriesCache(addr string, ttl time.Duration) *RedisSeriesCache {
	return &RedisSeriesCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Ping verifies connectivity, used at startup so a dead cache is
// reported once instead of as a miss per symbol.
func (c *RedisSeriesCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns the cached raw document for a symbol.
func (c *RedisSeriesCache) Get(ctx context.Context, symbol string) ([]byte, bool) {
	raw, err := c.client.Get(ctx, seriesKeyPrefix+symbol).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Debug().Str("symbol", symbol).Err(err).Msg("series cache read failed")
		}
		return nil, false
	}
	return raw, true
}

// Set stores the raw document. Write failures are logged and dropped.
func (c *RedisSeriesCache) Set(ctx context.Context, symbol string, raw []byte) {
	if err := c.client.Set(ctx, seriesKeyPrefix+symbol, raw, c.ttl).Err(); err != nil {
		log.Debug().Str("symbol", symbol).Err(err).Msg("series cache write failed")
	}
}

// Close releases the client.
func (c *RedisSeriesCache) Close() error {
	return c.client.Close()
}
