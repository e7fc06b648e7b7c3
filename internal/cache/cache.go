// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/config"
)

// Keys for the read-through lookups. Writers invalidate explicitly.
const (
	KeyStatuses     = "lookup:statuses"
	KeyPrices       = "lookup:prices"
	KeyNews         = "lookup:news"
	KeyRequiredDocs = "lookup:required_documents"
)

// Client wraps a redis connection as a read-through accelerator. A nil
// Client (redis not configured) degrades to a permanent cache miss, so every
// caller works without redis.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(cfg config.RedisConfig) *Client {
	if cfg.Host == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, running without cache")
		return nil
	}

	return &Client{
		rdb: rdb,
		ttl: time.Duration(cfg.TTL) * time.Second,
	}
}

func (c *Client) Close() {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Close(); err != nil {
		logrus.WithError(err).Error("Error closing redis connection")
	}
}

// GetJSON reports whether the key was present and decoded into dest.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Dropping undecodable cache entry")
		c.rdb.Del(ctx, key)
		return false
	}

	return true
}

func (c *Client) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil || c.rdb == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to write cache entry")
	}
}

func (c *Client) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate cache keys")
	}
}
