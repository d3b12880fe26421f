package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "sola", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "So11111111111111111111111111111111111111112")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "So11111111111111111111111111111111111111112", claims.Wallet)
	assert.Equal(t, "sola", claims.Issuer)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", "sola", -time.Minute)

	token, err := svc.GenerateToken(uuid.New(), "")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := NewJWTService("test-secret", "sola", time.Hour)
	other := NewJWTService("other-secret", "sola", time.Hour)

	token, err := svc.GenerateToken(uuid.New(), "")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Garbage(t *testing.T) {
	svc := NewJWTService("test-secret", "sola", time.Hour)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
