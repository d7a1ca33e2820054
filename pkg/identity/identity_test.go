package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-catalog-service/pkg/config"
)

const testSigningKey = "test-signing-key"

func signToken(t *testing.T, key string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func newTestVerifier() *Verifier {
	return NewVerifier(&config.AuthConfig{SigningKey: testSigningKey})
}

func TestVerifyValidToken(t *testing.T) {
	v := newTestVerifier()
	token := signToken(t, testSigningKey, Claims{
		UserID: "u-123",
		Email:  "alice@example.com",
		Name:   "Alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	principal, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-123", principal.ID)
	assert.Equal(t, "alice@example.com", principal.Email)
	assert.Equal(t, "Alice", principal.Name)
}

func TestVerifyNameFallsBackToEmail(t *testing.T) {
	v := newTestVerifier()
	token := signToken(t, testSigningKey, Claims{
		UserID: "u-123",
		Email:  "alice@example.com",
	})

	principal, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", principal.Name)
}

func TestVerifyWrongKey(t *testing.T) {
	v := newTestVerifier()
	token := signToken(t, "some-other-key", Claims{
		UserID: "u-123",
		Email:  "alice@example.com",
	})

	_, err := v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	v := newTestVerifier()
	token := signToken(t, testSigningKey, Claims{
		UserID: "u-123",
		Email:  "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbageToken(t *testing.T) {
	v := newTestVerifier()

	_, err := v.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
