// Package env bundles application-wide dependencies for injection
// into request contexts.
package env

import (
	"context"
	"log/slog"

	"github.com/matt-dz/tidyplan/internal/ai"
	"github.com/matt-dz/tidyplan/internal/config"
	"github.com/matt-dz/tidyplan/internal/database"
	"github.com/matt-dz/tidyplan/internal/invitations"
	"github.com/matt-dz/tidyplan/internal/log"
)

type Env struct {
	Logger      *slog.Logger
	Database    *database.Database
	Invitations *invitations.Service
	AI          ai.Provider
	Config      *config.Config
}

type envKey struct{}

// WithCtx attaches the environment to a context.
func WithCtx(ctx context.Context, e *Env) context.Context {
	return context.WithValue(ctx, envKey{}, e)
}

// EnvFromCtx extracts the environment from a context. Returns Null()
// when none was attached so callers can log unconditionally.
func EnvFromCtx(ctx context.Context) *Env {
	if e, ok := ctx.Value(envKey{}).(*Env); ok {
		return e
	}
	return Null()
}

// Null is an inert environment for tests and fallback paths.
func Null() *Env {
	return &Env{
		Logger: log.NullLogger(),
		Config: &config.Config{},
	}
}
