package util

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(sub string) Claims {
	return Claims{
		Email: "owner@booth.test",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestValidateJWT_HMAC(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, []byte("secret"), validClaims("user-1"))

	claims, err := ValidateJWT(tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "owner@booth.test", claims.Email)

	_, err = ValidateJWT(tok, "other-secret")
	assert.Error(t, err)
}

func TestValidateJWT_Expired(t *testing.T) {
	c := validClaims("user-1")
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	tok := sign(t, jwt.SigningMethodHS256, []byte("secret"), c)

	_, err := ValidateJWT(tok, "secret")
	assert.Error(t, err)
}

func TestValidateJWT_MissingSubject(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, []byte("secret"), validClaims(""))
	_, err := ValidateJWT(tok, "secret")
	assert.Error(t, err)
}

func TestValidateJWT_ECDSA(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pemKey := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	tok := sign(t, jwt.SigningMethodES256, priv, validClaims("user-2"))
	claims, err := ValidateJWT(tok, pemKey)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.Subject)

	// An HMAC secret cannot verify an ECDSA token.
	_, err = ValidateJWT(tok, "secret")
	assert.Error(t, err)
}

func TestValidateJWT_Garbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token", "secret")
	assert.Error(t, err)
}

func TestValidateJWT_RejectsHMACSignedWithPublicKey(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pemKey := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	forged := sign(t, jwt.SigningMethodHS256, []byte(pemKey), validClaims("attacker"))
	_, err = ValidateJWT(forged, pemKey)
	assert.Error(t, err)
}
