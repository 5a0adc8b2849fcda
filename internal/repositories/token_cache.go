package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/redis/go-redis/v9"
)

const tokenPrefix = "token:"

// ErrCacheMiss is returned by TokenCache.Get when the token is not cached or
// its entry expired.
var ErrCacheMiss = errors.New("token cache miss")

type RedisTokenCache struct {
	client *redis.Client
}

func NewRedisTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

func tokenKey(token string) string {
	return tokenPrefix + token
}

func (c *RedisTokenCache) Get(ctx context.Context, token string) (*models.TokenIdentity, error) {
	data, err := c.client.Get(ctx, tokenKey(token)).Result()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached token: %w", err)
	}

	var identity models.TokenIdentity
	if err := json.Unmarshal([]byte(data), &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached token: %w", err)
	}
	return &identity, nil
}

// Set stores the identity under the token for ttl. Entries only leave the
// cache by expiry or Invalidate.
func (c *RedisTokenCache) Set(ctx context.Context, token string, identity models.TokenIdentity, ttl time.Duration) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal token identity: %w", err)
	}

	if err := c.client.Set(ctx, tokenKey(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}
	return nil
}

func (c *RedisTokenCache) Invalidate(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, tokenKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached token: %w", err)
	}
	return nil
}
