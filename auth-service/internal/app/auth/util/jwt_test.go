package util

import (
	"testing"
	"time"

	"staynest/auth-service/internal/app/auth/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager() *JWTManager {
	return NewJWTManager("test-secret-key", 15*time.Minute, 7*24*time.Hour)
}

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	manager := newTestJWTManager()
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID, "guest@example.com", entity.RoleGuest)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "guest@example.com", claims.Email)
	assert.Equal(t, entity.RoleGuest, claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateToken_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret-key", -time.Minute, time.Hour)

	token, err := manager.GenerateAccessToken(uuid.New(), "host@example.com", entity.RoleHost)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	manager := newTestJWTManager()

	token, err := manager.GenerateAccessToken(uuid.New(), "guest@example.com", entity.RoleGuest)
	require.NoError(t, err)

	other := NewJWTManager("another-secret", 15*time.Minute, time.Hour)
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	manager := newTestJWTManager()

	_, err := manager.ValidateToken("not-a-jwt-at-all")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateRefreshToken_Unique(t *testing.T) {
	manager := newTestJWTManager()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := manager.GenerateRefreshToken()
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.False(t, seen[token], "refresh tokens must not repeat")
		seen[token] = true
	}
}

func TestTokenDurations(t *testing.T) {
	manager := newTestJWTManager()

	assert.Equal(t, 15*time.Minute, manager.GetAccessTokenDuration())
	assert.Equal(t, 7*24*time.Hour, manager.GetRefreshTokenDuration())
}
