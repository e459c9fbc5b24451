package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotCacheTTL bounds how stale a cached topic snapshot can get if an
// invalidation is lost. Snapshots are invalidated on every mutation, so the
// TTL is only a backstop.
const SnapshotCacheTTL = time.Minute

// CacheService provides a Redis cache-aside layer for topic snapshots.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or the
// connection fails, it returns a CacheService with a nil client (cache
// operations become no-ops and every snapshot read hits the database).
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// NewCacheServiceWithClient wraps an existing client (used by tests).
func NewCacheServiceWithClient(rdb *redis.Client) *CacheService {
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetSnapshot retrieves a cached snapshot payload for a topic. Returns nil
// if not cached or the cache is disabled.
func (c *CacheService) GetSnapshot(ctx context.Context, topic string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, topicKey(topic)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetSnapshot stores an encoded snapshot for a topic.
func (c *CacheService) SetSnapshot(ctx context.Context, topic string, data []byte) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, topicKey(topic), data, SnapshotCacheTTL).Err()
}

// InvalidateTopic removes a topic's snapshot (called after every mutation).
func (c *CacheService) InvalidateTopic(ctx context.Context, topic string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, topicKey(topic)).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func topicKey(topic string) string {
	return fmt.Sprintf("snapshot:%s", topic)
}
