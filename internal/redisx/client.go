package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// New returns a Redis client for addr, or nil when addr is empty. A nil
// client disables session persistence and status caching; callers must
// treat it as optional.
func New(addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Ping verifies connectivity. Safe on a nil client.
func Ping(ctx context.Context, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}
	return rdb.Ping(ctx).Err()
}
