// Package jwt provides functions for generating and validating JWTs.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultKID is the key id used when no secret version is
	// configured.
	DefaultKID = "1"

	// Duration is the access token lifetime.
	Duration = time.Hour
)

type Params struct {
	UserID string
	Role   string
}

// Generate signs an HS256 token carrying the user id and role, with
// the secret version recorded in the kid header for rotation.
func Generate(params Params, secret []byte, version string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  params.UserID,
		"role": params.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(Duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = version

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token, requiring the kid header to
// match the expected secret version.
func Validate(rawToken, version string, secret []byte) (*jwt.Token, error) {
	keyFunc := func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("missing/invalid kid value")
		}
		if kid != version {
			return nil, fmt.Errorf("unexpected kid %q", kid)
		}
		return secret, nil
	}

	return jwt.Parse(rawToken, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
}
