package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cdr.dev/slog/v3"

	"github.com/prudhvinik1/devicetrack/internal/metrics"
	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
)

const DefaultTokenCacheTTL = time.Hour

// AuthService resolves API tokens to the (user, project) they act as. The
// cache is consulted first; a miss falls through to the token table and
// refills the cache.
type AuthService struct {
	tokenRepo repositories.TokenRepository
	cache     repositories.TokenCache
	ttl       time.Duration
	logger    slog.Logger
	metrics   *metrics.Metrics
}

func NewAuthService(
	tokenRepo repositories.TokenRepository,
	cache repositories.TokenCache,
	ttl time.Duration,
	logger slog.Logger,
	m *metrics.Metrics,
) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenCacheTTL
	}
	return &AuthService{
		tokenRepo: tokenRepo,
		cache:     cache,
		ttl:       ttl,
		logger:    logger.Named("auth"),
		metrics:   m,
	}
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.TokenIdentity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	identity, err := s.cache.Get(ctx, token)
	switch {
	case err == nil:
		s.metrics.TokenCacheLookups.WithLabelValues(metrics.CacheHit).Inc()
		return identity, nil
	case errors.Is(err, repositories.ErrCacheMiss):
		s.metrics.TokenCacheLookups.WithLabelValues(metrics.CacheMiss).Inc()
	default:
		s.metrics.TokenCacheLookups.WithLabelValues(metrics.CacheError).Inc()
		s.logger.Warn(ctx, "token cache read failed, using database", slog.Error(err))
	}

	stored, err := s.tokenRepo.GetByToken(ctx, token)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if stored.Status != models.TokenStatusActive {
		return nil, ErrUnauthenticated
	}

	identity = &models.TokenIdentity{UserID: stored.UserID, ProjectID: stored.ProjectID}
	if err := s.cache.Set(ctx, token, *identity, s.ttl); err != nil {
		s.logger.Warn(ctx, "token cache write failed", slog.Error(err))
	}
	return identity, nil
}

// Forget drops a token from the cache so the next request re-reads it.
func (s *AuthService) Forget(ctx context.Context, token string) {
	if err := s.cache.Invalidate(ctx, token); err != nil {
		s.logger.Warn(ctx, "token cache invalidate failed", slog.Error(err))
	}
}
