// Package setup is responsible for setting up components.
package setup

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matt-dz/tidyplan/internal/argon2id"
	"github.com/matt-dz/tidyplan/internal/config"
	"github.com/matt-dz/tidyplan/internal/database"
	"github.com/matt-dz/tidyplan/internal/env"
	"github.com/matt-dz/tidyplan/internal/password"
)

// Database opens a connection pool and ensures the schema exists.
func Database(ctx context.Context, conf *config.Config) (*database.Database, error) {
	if conf.Database.User == "" {
		return nil, NewEnvironmentVariableMissingError("DATABASE_USER")
	}
	if conf.Database.Password == "" {
		return nil, NewEnvironmentVariableMissingError("DATABASE_PASSWORD")
	}
	if conf.Database.Database == "" {
		return nil, NewEnvironmentVariableMissingError("DATABASE")
	}

	pool, err := pgxpool.New(ctx, conf.Database.URL())
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	db := database.NewDatabase(pool)
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	return db, nil
}

// Admin sets up an admin user if one does not exist. Requires
// env.Database.
func Admin(ctx context.Context, env *env.Env) error {
	adminEmail, adminPassword := env.Config.Admin.Email, env.Config.Admin.Password
	if adminEmail == "" || adminPassword == "" {
		env.Logger.Info("ADMIN_EMAIL and ADMIN_PASSWORD not setup, skipping admin setup")
		return nil
	}

	// Validate email and password
	if _, err := mail.ParseAddress(adminEmail); err != nil {
		return fmt.Errorf("parsing admin email: %w", err)
	}
	if err := password.ValidatePassword(adminPassword); err != nil {
		return fmt.Errorf("validating admin password: %w", err)
	}

	// Check admin count
	count, err := env.Database.GetAdminCount(ctx)
	if err != nil {
		return fmt.Errorf("getting admin count: %w", err)
	}
	if count > 0 {
		env.Logger.Info("admin already setup, skipping setup")
		return nil
	}

	hashedPassword, err := argon2id.EncodeHash(adminPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	if _, err := env.Database.CreateUser(ctx, database.CreateUserParams{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		DisplayName:  "Admin",
		Role:         "admin",
	}); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	env.Logger.Info("admin user created")
	return nil
}
