package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosort/ecosort-be/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewTokenManager("test-secret", "ecosort-test", time.Hour)
	user := models.User{ID: 42, Username: "alice", Role: models.RoleAdmin}

	token, err := mgr.Generate(user)
	require.NoError(t, err)

	userID, role, err := mgr.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, models.RoleAdmin, role)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", "ecosort-test", time.Hour)
	verifier := NewTokenManager("secret-b", "ecosort-test", time.Hour)

	token, err := issuer.Generate(models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	mgr := NewTokenManager("test-secret", "ecosort-test", -time.Minute)
	token, err := mgr.Generate(models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	_, _, err = mgr.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	mgr := NewTokenManager("test-secret", "ecosort-test", time.Hour)
	_, _, err := mgr.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
