package security

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/domain"
)

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	id := domain.Identity{UID: "u1", Email: "jane@example.com", DisplayName: "Jane Doe"}

	t.Run("Round trip", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(id)
		require.NoError(t, err)

		claims, err := tm.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, id, claims.Identity())
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := NewTokenManager("other", time.Hour).GenerateAccessToken(id)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		claims := UserClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestJWTVerifier_Revoke(t *testing.T) {
	ctx := context.Background()
	tm := NewTokenManager("test-secret", time.Hour)
	v := NewJWTVerifier(tm)

	token, err := tm.GenerateAccessToken(domain.Identity{UID: "u1"})
	require.NoError(t, err)

	id, err := v.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UID)

	require.NoError(t, v.Revoke(ctx, "u1"))
	_, err = v.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestEmailAllowList(t *testing.T) {
	policy := NewEmailAllowList([]string{" Contact@Example.com ", ""})

	assert.True(t, policy.IsAdmin(domain.Identity{Email: "contact@example.com"}))
	assert.False(t, policy.IsAdmin(domain.Identity{Email: "someone@example.com"}))
	assert.False(t, policy.IsAdmin(domain.Identity{}))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc"))
	assert.Equal(t, "abc", BearerToken("abc"))
	assert.Equal(t, "", BearerToken(""))
}
