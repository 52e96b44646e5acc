package redis

import (
	// Go Internal Packages
	"context"
	stderrors "errors"
	"time"

	// External Packages
	"github.com/redis/go-redis/v9"
)

// TokenCache shares the access token between every process using the same
// redis, so a fleet refreshes once per expiry rather than once per instance.
type TokenCache struct {
	client *redis.Client
	prefix string
}

func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{client: client, prefix: "tanda:"}
}

func (c *TokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *TokenCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *TokenCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
