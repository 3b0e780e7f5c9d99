package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("secret")

	token, err := svc.GenerateAccessToken("alice", "admin")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, KindAccess, claims.Kind)

	_, err = svc.ExtractTokenID(token)
	assert.Error(t, err, "access tokens must not be accepted as refresh tokens")
}

func TestJWTService_RefreshTokenID(t *testing.T) {
	svc := NewJWTService("secret")

	id, token, err := svc.GenerateRefreshToken("bob", "user")
	require.NoError(t, err)

	got, err := svc.ExtractTokenID(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	token, err := NewJWTService("one").GenerateAccessToken("alice", "user")
	require.NoError(t, err)

	_, err = NewJWTService("two").ValidateToken(token)
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	digest, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", digest)
	assert.True(t, h.Verify("s3cret", digest))
	assert.False(t, h.Verify("wrong", digest))

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost)
}
