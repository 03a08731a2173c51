package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/membercircle/compliments/internal/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForReceivedCount generates Redis key for a user's received-compliments count
func (c *RedisCache) KeyForReceivedCount(userID uint64) string {
	return fmt.Sprintf("compliments:received:%d", userID)
}

func (c *RedisCache) UpdateReceivedCount(ctx context.Context, userID uint64, count int64) error {
	key := c.KeyForReceivedCount(userID)
	// Always refresh TTL when updating
	return c.Client.Set(ctx, key, count, time.Hour).Err()
}

// GetReceivedCount reads the cached count and refreshes its TTL. ok is
// false on a miss or an unparsable value, so a cached zero still counts
// as a hit.
func (c *RedisCache) GetReceivedCount(ctx context.Context, userID uint64) (count int64, ok bool, err error) {
	key := c.KeyForReceivedCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	count, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, time.Hour).Err()
	return count, true, nil
}

// AdjustReceivedCount shifts a live cached count by delta. When the key
// has lapsed the adjustment is skipped: incrementing a missing key
// would recreate it holding only delta, and later reads would trust
// that as the total. Expire doubles as the liveness check and the TTL
// refresh.
func (c *RedisCache) AdjustReceivedCount(ctx context.Context, userID uint64, delta int64) error {
	key := c.KeyForReceivedCount(userID)
	live, err := c.Client.Expire(ctx, key, time.Hour).Result()
	if err != nil || !live {
		return err
	}
	return c.Client.IncrBy(ctx, key, delta).Err()
}
