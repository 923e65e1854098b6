package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nexra/user-service/internal/mocks"
	"github.com/nexra/user-service/internal/model"
	"github.com/nexra/user-service/internal/testutil"
)

func TestTokenService_Issue(t *testing.T) {
	ctx := context.Background()
	roles := []model.Role{model.RoleUser}

	t.Run("persists refresh record with refresh ttl", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewKeyValueStore(t)

		manager.On("GenerateAccessToken", "alice", roles).Return("access", nil).Once()
		manager.On("GenerateRefreshToken", "alice", roles).Return("refresh", nil).Once()
		manager.On("RefreshTTL").Return(168 * time.Hour).Once()
		store.On("Set", ctx, "refresh_token:refresh", "alice", 168*time.Hour).Return(nil).Once()

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

		access, refresh, err := svc.Issue(ctx, "alice", roles)

		require.NoError(t, err)
		assert.Equal(t, "access", access)
		assert.Equal(t, "refresh", refresh)
	})

	t.Run("generate failure surfaces", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewKeyValueStore(t)

		manager.On("GenerateAccessToken", "alice", roles).Return("", assert.AnError).Once()

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

		_, _, err := svc.Issue(ctx, "alice", roles)

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestTokenService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("mints new access token, keeps refresh token", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewKeyValueStore(t)

		store.On("Get", ctx, "refresh_token:refresh").Return("alice", nil).Once()
		manager.On("ParseRefreshToken", "refresh").
			Return(model.TokenClaims{Subject: "alice", Roles: []model.Role{model.RoleUser}}, nil).Once()
		manager.On("GenerateAccessToken", "alice", []model.Role{model.RoleUser}).
			Return("new-access", nil).Once()

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

		access, err := svc.Refresh(ctx, "refresh")

		require.NoError(t, err)
		assert.Equal(t, "new-access", access)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unknown record rejected", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewKeyValueStore(t)

		store.On("Get", ctx, "refresh_token:refresh").Return("", model.ErrNotFound).Once()

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

		_, err := svc.Refresh(ctx, "refresh")

		assert.ErrorIs(t, err, model.ErrUnknownRefreshToken)
	})

	t.Run("expired refresh token rejected", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewKeyValueStore(t)

		store.On("Get", ctx, "refresh_token:refresh").Return("alice", nil).Once()
		manager.On("ParseRefreshToken", "refresh").
			Return(model.TokenClaims{}, model.ErrTokenExpired).Once()

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

		_, err := svc.Refresh(ctx, "refresh")

		assert.ErrorIs(t, err, model.ErrTokenExpired)
	})

	t.Run("subject mismatch treated as unknown", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewKeyValueStore(t)

		store.On("Get", ctx, "refresh_token:refresh").Return("alice", nil).Once()
		manager.On("ParseRefreshToken", "refresh").
			Return(model.TokenClaims{Subject: "mallory"}, nil).Once()

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

		_, err := svc.Refresh(ctx, "refresh")

		assert.ErrorIs(t, err, model.ErrUnknownRefreshToken)
	})
}

func TestTokenService_RevokeAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("blacklist entry capped at remaining lifetime", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewKeyValueStore(t)

		manager.On("AccessTTL").Return(24 * time.Hour).Once()
		manager.On("ExpiresAt", "access").Return(time.Now().Add(time.Hour), nil).Once()
		store.On("Set", ctx, "blacklist:access", "revoked",
			mock.MatchedBy(func(ttl time.Duration) bool { return ttl > 0 && ttl <= time.Hour })).
			Return(nil).Once()

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

		require.NoError(t, svc.RevokeAccess(ctx, "access"))
	})

	t.Run("already expired token is a no-op", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewKeyValueStore(t)

		manager.On("AccessTTL").Return(24 * time.Hour).Once()
		manager.On("ExpiresAt", "access").Return(time.Now().Add(-time.Minute), nil).Once()

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

		require.NoError(t, svc.RevokeAccess(ctx, "access"))
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("falls back to configured ttl when expiry unreadable", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewKeyValueStore(t)

		manager.On("AccessTTL").Return(24 * time.Hour).Once()
		manager.On("ExpiresAt", "garbled").Return(time.Time{}, model.ErrTokenMalformed).Once()
		store.On("Set", ctx, "blacklist:garbled", "revoked", 24*time.Hour).Return(nil).Once()

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

		require.NoError(t, svc.RevokeAccess(ctx, "garbled"))
	})
}

func TestTokenService_IsRevoked(t *testing.T) {
	ctx := context.Background()

	t.Run("reports blacklist membership", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewKeyValueStore(t)

		store.On("Exists", ctx, "blacklist:access").Return(true, nil).Once()

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

		revoked, err := svc.IsRevoked(ctx, "access")

		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		manager := mocks.NewTokenManager(t)
		store := mocks.NewKeyValueStore(t)

		store.On("Exists", ctx, "blacklist:access").Return(false, assert.AnError).Once()

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

		_, err := svc.IsRevoked(ctx, "access")

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestTokenService_DeleteRefresh(t *testing.T) {
	ctx := context.Background()

	manager := mocks.NewTokenManager(t)
	store := mocks.NewKeyValueStore(t)

	store.On("Delete", ctx, "refresh_token:refresh").Return(nil).Once()

	svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

	require.NoError(t, svc.DeleteRefresh(ctx, "refresh"))
}
