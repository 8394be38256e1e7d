package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Deduplicator struct {
	rdb *redis.Client
}

func NewDeduplicator(rdb *redis.Client) Deduplicator {
	if rdb == nil {
		panic("redis client is nil")
	}
	return Deduplicator{rdb: rdb}
}

// Claim reports whether key was unclaimed. Only the first caller for a key gets true.
func (d Deduplicator) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := d.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("could not claim %s: %w", key, err)
	}
	return ok, nil
}

func (d Deduplicator) Release(ctx context.Context, key string) error {
	if err := d.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("could not release %s: %w", key, err)
	}
	return nil
}
