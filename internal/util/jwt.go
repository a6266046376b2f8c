package util

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the Supabase access-token claims the API relies on.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

var errNotPEM = errors.New("failed to decode PEM block containing public key")

func parsePublicKey(pemKey string) (any, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, errNotPEM
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pub, nil
}

// keyFor returns the verification key for the token's algorithm family.
// HMAC tokens use keyMaterial as the shared secret; RSA and ECDSA tokens
// expect keyMaterial to be a PEM-encoded public key of the matching type.
func keyFor(keyMaterial string) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			// A public key must never double as an HMAC secret.
			if strings.HasPrefix(strings.TrimSpace(keyMaterial), "-----BEGIN") {
				return nil, errors.New("HMAC token presented for an asymmetric key")
			}
			return []byte(keyMaterial), nil
		case *jwt.SigningMethodRSA:
			pub, err := parsePublicKey(keyMaterial)
			if err != nil {
				return nil, err
			}
			rsaPub, ok := pub.(*rsa.PublicKey)
			if !ok {
				return nil, errors.New("public key is not RSA")
			}
			return rsaPub, nil
		case *jwt.SigningMethodECDSA:
			pub, err := parsePublicKey(keyMaterial)
			if err != nil {
				return nil, err
			}
			ecPub, ok := pub.(*ecdsa.PublicKey)
			if !ok {
				return nil, errors.New("public key is not ECDSA")
			}
			return ecPub, nil
		default:
			return nil, fmt.Errorf("unsupported signing algorithm: %v", token.Header["alg"])
		}
	}
}

// ValidateJWT verifies the token signature and standard time claims and
// returns its claims. The subject must be present.
func ValidateJWT(tokenString string, keyMaterial string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFor(keyMaterial),
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512", "RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
