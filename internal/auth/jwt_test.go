package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager(
		"test-access-secret-at-least-32-chars!",
		"test-refresh-secret-at-least-32-chars",
		15*time.Minute,
		7*24*time.Hour,
	)
}

func TestGenerateTokenPair(t *testing.T) {
	m := newTestManager()

	pair, tokenID, err := m.GenerateTokenPair("user-123", "user@example.com")
	require.NoError(t, err)
	require.NotNil(t, pair)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEmpty(t, tokenID)
	assert.Equal(t, int64(900), pair.ExpiresIn)
}

func TestValidateAccessToken(t *testing.T) {
	m := newTestManager()

	pair, _, err := m.GenerateTokenPair("user-123", "user@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "remindria", claims.Issuer)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewJWTManager(
		"another-access-secret-32-chars-long!!",
		"another-refresh-secret-32-chars-long!",
		15*time.Minute,
		7*24*time.Hour,
	)

	pair, _, err := m.GenerateTokenPair("user-123", "user@example.com")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateAccessToken_RefreshTokenRejected(t *testing.T) {
	m := newTestManager()

	pair, _, err := m.GenerateTokenPair("user-123", "user@example.com")
	require.NoError(t, err)

	// A refresh token is signed with a different secret and must not
	// pass access validation.
	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestValidateRefreshToken(t *testing.T) {
	m := newTestManager()

	pair, tokenID, err := m.GenerateTokenPair("user-123", "user@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	m := NewJWTManager(
		"test-access-secret-at-least-32-chars!",
		"test-refresh-secret-at-least-32-chars",
		-1*time.Minute,
		7*24*time.Hour,
	)

	pair, _, err := m.GenerateTokenPair("user-123", "user@example.com")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateAccessToken_ForeignIssuerRejected(t *testing.T) {
	m := newTestManager()

	// Same secret, different issuer: simulates a sibling service sharing
	// key material.
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "some-other-service",
		},
	})
	signed, err := foreign.SignedString([]byte("test-access-secret-at-least-32-chars!"))
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(signed)
	assert.Error(t, err)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	m := newTestManager()

	_, err := m.ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}
