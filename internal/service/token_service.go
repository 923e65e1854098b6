package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nexra/user-service/internal/logger"
	"github.com/nexra/user-service/internal/model"
)

const (
	refreshTokenPrefix = "refresh_token:"
	blacklistPrefix    = "blacklist:"
	blacklistMarker    = "revoked"
)

// TokenService provides high-level operations for issuing, refreshing and
// revoking tokens. Refresh records and revocation entries live in the
// expiring key-value store; their TTLs are the only cleanup mechanism.
type TokenService struct {
	manager model.TokenManager
	store   model.KeyValueStore
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, store model.KeyValueStore, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, store: store, logger: logger}
}

// Issue creates an access/refresh pair for the subject and persists the
// refresh record. Concurrent logins for the same subject create independent
// records.
func (s *TokenService) Issue(ctx context.Context, subject string, roles []model.Role) (accessToken string, refreshToken string, err error) {
	access, err := s.manager.GenerateAccessToken(subject, roles)
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.manager.GenerateRefreshToken(subject, roles)
	if err != nil {
		return "", "", fmt.Errorf("issue refresh: %w", err)
	}

	if err := s.store.Set(ctx, refreshTokenPrefix+refresh, subject, s.manager.RefreshTTL()); err != nil {
		return "", "", fmt.Errorf("persist refresh: %w", err)
	}

	s.logger.Info("Token service: issued token pair", "subject", subject)

	return access, refresh, nil
}

// Refresh mints a new access token against an existing refresh record. The
// refresh token itself is not rotated; it stays valid until its own TTL
// lapses.
func (s *TokenService) Refresh(ctx context.Context, presentedRefresh string) (string, error) {
	subject, err := s.store.Get(ctx, refreshTokenPrefix+presentedRefresh)
	if errors.Is(err, model.ErrNotFound) {
		return "", model.ErrUnknownRefreshToken
	}
	if err != nil {
		return "", fmt.Errorf("lookup refresh record: %w", err)
	}

	claims, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return "", err
	}
	if claims.Subject != subject {
		// A record pointing at a different subject means the store and the
		// token disagree; treat the token as unknown.
		return "", model.ErrUnknownRefreshToken
	}

	access, err := s.manager.GenerateAccessToken(claims.Subject, claims.Roles)
	if err != nil {
		return "", fmt.Errorf("issue new access: %w", err)
	}

	s.logger.Info("Token service: refreshed access token", "subject", subject)

	return access, nil
}

// RevokeAccess blacklists an access token for the remainder of its original
// lifetime. The entry's TTL never outlives the token it blocks.
func (s *TokenService) RevokeAccess(ctx context.Context, accessToken string) error {
	ttl := s.manager.AccessTTL()
	if exp, err := s.manager.ExpiresAt(accessToken); err == nil {
		ttl = time.Until(exp)
	}
	if ttl <= 0 {
		// Already past its window; expiry does the blocking for us.
		return nil
	}

	if err := s.store.Set(ctx, blacklistPrefix+accessToken, blacklistMarker, ttl); err != nil {
		return fmt.Errorf("persist revocation: %w", err)
	}

	s.logger.Info("Token service: access token revoked")

	return nil
}

// IsRevoked reports whether the access token has been blacklisted.
func (s *TokenService) IsRevoked(ctx context.Context, accessToken string) (bool, error) {
	revoked, err := s.store.Exists(ctx, blacklistPrefix+accessToken)
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}

// DeleteRefresh removes a refresh record explicitly, used when a refresh
// token is known to be compromised.
func (s *TokenService) DeleteRefresh(ctx context.Context, refreshToken string) error {
	if err := s.store.Delete(ctx, refreshTokenPrefix+refreshToken); err != nil {
		return fmt.Errorf("delete refresh record: %w", err)
	}
	return nil
}

// ParseAccess validates an access token and returns its claims. Used by the
// authentication middleware together with IsRevoked.
func (s *TokenService) ParseAccess(ctx context.Context, accessToken string) (model.TokenClaims, error) {
	return s.manager.ParseAccessToken(accessToken)
}
