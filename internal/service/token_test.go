package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindplate/backend/internal/types"
)

func TestTokenService(t *testing.T) {
	svc := NewTokenService("test-secret")

	t.Run("should round-trip claims", func(t *testing.T) {
		token, err := svc.GenerateToken(&types.TokenClaims{Service: "pipeline", Role: "admin"})
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "pipeline", claims.Service)
		assert.Equal(t, "admin", claims.Role)
		assert.NotNil(t, claims.ExpiresAt)
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		other := NewTokenService("other-secret")
		token, err := other.GenerateToken(&types.TokenClaims{Service: "pipeline", Role: "admin"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}
