package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosort/ecosort-be/internal/models"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	mgr := NewSessionManager(NewMemorySessionStore(), time.Hour)

	token, created, err := mgr.Create(ctx, 42, models.RoleCollector)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, token, created.ID, "store key must be a hash, not the raw token")

	got, err := mgr.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, models.RoleCollector, got.Role)

	require.NoError(t, mgr.Destroy(ctx, token))
	_, err = mgr.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionUnknownToken(t *testing.T) {
	mgr := NewSessionManager(NewMemorySessionStore(), time.Hour)
	_, err := mgr.Validate(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	mgr := NewSessionManager(store, -time.Minute)

	token, created, err := mgr.Create(ctx, 7, models.RoleUser)
	require.NoError(t, err)

	_, err = mgr.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// expired sessions are evicted on validation
	_, err = store.Find(ctx, created.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	mgr := NewSessionManager(NewMemorySessionStore(), time.Hour)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, _, err := mgr.Create(ctx, 1, models.RoleUser)
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
