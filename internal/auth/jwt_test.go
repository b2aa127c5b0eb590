package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestSignAndVerify(t *testing.T) {
	token, err := Sign(Claims{Sub: "u1", Email: "u1@example.com", Name: "User One"}, secret)
	require.NoError(t, err)

	claims, err := Verify(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Sub)
	assert.Equal(t, "u1@example.com", claims.Email)
	assert.NotZero(t, claims.Exp)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	token, err := Sign(Claims{Sub: "u1"}, secret)
	require.NoError(t, err)

	_, err = Verify(token+"x", secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Verify("not.a.token", secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := Sign(Claims{Sub: "u1"}, secret)
	require.NoError(t, err)

	_, err = Verify(token, []byte("other-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	token, err := Sign(Claims{
		Sub: "u1",
		Iat: time.Now().UTC().Add(-2 * time.Hour).Unix(),
		Exp: time.Now().UTC().Add(-time.Hour).Unix(),
	}, secret)
	require.NoError(t, err)

	_, err = Verify(token, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	// alg "none" token with a valid-looking payload must not pass
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"u1","exp":4102444800}`))

	_, err := Verify(header+"."+payload+".", secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"u1"}`))
	signingInput := header + "." + payload

	sig, err := jwt.SigningMethodHS256.Sign(signingInput, secret)
	require.NoError(t, err)

	_, err = Verify(signingInput+"."+base64.RawURLEncoding.EncodeToString(sig), secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignRequiresSubject(t *testing.T) {
	_, err := Sign(Claims{}, secret)
	require.Error(t, err)
}
