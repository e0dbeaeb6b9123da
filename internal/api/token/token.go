// Package token contains utilities for access tokens and their
// cookies.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/matt-dz/tidyplan/internal/env"
	"github.com/matt-dz/tidyplan/internal/jwt"
)

const accessTokenLifetime = 60 * 60 // seconds, matches jwt.Duration

type userIDKey struct{}

// AccessTokenName returns the access cookie name. Production gets the
// __Host- prefix so the cookie is scoped to the host over HTTPS.
func AccessTokenName(e *env.Env) string {
	if e.Config.IsProd() {
		return "__Host-tidyplan-access"
	}
	return "access"
}

// NewAccessToken mints a signed access token for the user.
func NewAccessToken(params jwt.Params, e *env.Env) (string, error) {
	if e.Config.AppSecret == "" {
		return "", errors.New("app secret not configured")
	}
	token, err := jwt.Generate(params, []byte(e.Config.AppSecret), e.Config.AppSecretVersion)
	if err != nil {
		return "", fmt.Errorf("generating access token: %w", err)
	}
	return token, nil
}

// NewAccessTokenCookie wraps a token in the session cookie.
func NewAccessTokenCookie(token string, e *env.Env) *http.Cookie {
	return &http.Cookie{
		Name:     AccessTokenName(e),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   accessTokenLifetime,
		SameSite: http.SameSiteLaxMode,
		Secure:   e.Config.IsProd(),
	}
}

// UserIDWithCtx attaches the authenticated user id to a context.
func UserIDWithCtx(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromCtx returns the authenticated user id, or "" when the
// request is unauthenticated.
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey{}).(string); ok {
		return v
	}
	return ""
}
