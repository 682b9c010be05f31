package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager(t *testing.T) {
	secretKey := "test-secret-key-for-testing"
	jwtManager := NewJWTManager(secretKey, "inventory", time.Hour)

	t.Run("ValidateToken validates correct token", func(t *testing.T) {
		token, err := jwtManager.GenerateToken("7d1c1e0e-5a39-4d8c-a3a1-1f0f3c1d2b4e", "user@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := jwtManager.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "7d1c1e0e-5a39-4d8c-a3a1-1f0f3c1d2b4e", claims.UserID)
		assert.Equal(t, "user@example.com", claims.Email)
		assert.Equal(t, "inventory", claims.Issuer)
	})

	t.Run("ValidateToken rejects invalid token", func(t *testing.T) {
		_, err := jwtManager.ValidateToken("invalid.token.here")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("ValidateToken rejects token signed with another key", func(t *testing.T) {
		other := NewJWTManager("another-secret", "inventory", time.Hour)
		token, err := other.GenerateToken("u1", "user@example.com")
		require.NoError(t, err)

		_, err = jwtManager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("ValidateToken rejects foreign issuer", func(t *testing.T) {
		other := NewJWTManager(secretKey, "someone-else", time.Hour)
		token, err := other.GenerateToken("u1", "user@example.com")
		require.NoError(t, err)

		_, err = jwtManager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("ValidateToken rejects expired token", func(t *testing.T) {
		shortManager := NewJWTManager(secretKey, "inventory", -time.Minute)

		token, err := shortManager.GenerateToken("u1", "user@example.com")
		require.NoError(t, err)

		_, err = shortManager.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
