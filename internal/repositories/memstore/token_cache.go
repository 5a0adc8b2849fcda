package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
)

var _ repositories.TokenCache = (*TokenCache)(nil)

type cachedToken struct {
	identity  models.TokenIdentity
	expiresAt time.Time
}

// TokenCache is an in-memory repositories.TokenCache. Setting Err makes
// every call fail with it.
type TokenCache struct {
	mu      sync.Mutex
	entries map[string]cachedToken
	now     func() time.Time

	Err error
}

func NewTokenCache() *TokenCache {
	return &TokenCache{entries: map[string]cachedToken{}, now: time.Now}
}

// SetClock replaces the clock used for expiry.
func (c *TokenCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *TokenCache) Get(_ context.Context, token string) (*models.TokenIdentity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	entry, ok := c.entries[token]
	if !ok || !c.now().Before(entry.expiresAt) {
		delete(c.entries, token)
		return nil, repositories.ErrCacheMiss
	}
	identity := entry.identity
	return &identity, nil
}

func (c *TokenCache) Set(_ context.Context, token string, identity models.TokenIdentity, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return c.Err
	}
	c.entries[token] = cachedToken{identity: identity, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *TokenCache) Invalidate(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return c.Err
	}
	delete(c.entries, token)
	return nil
}

func (c *TokenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
