package database

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         string
	FamilyIDs    []string
	CreatedAt    time.Time
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
	DisplayName  string
	Role         string
}

// CreateUser inserts a user and returns its generated id.
func (db *Database) CreateUser(ctx context.Context, params CreateUserParams) (string, error) {
	if params.Role == "" {
		params.Role = "user"
	}
	id := ulid.Make().String()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4, $5)`,
		id, params.Email, params.PasswordHash, params.DisplayName, params.Role)
	if err != nil {
		return "", fmt.Errorf("inserting user: %w", err)
	}
	return id, nil
}

// GetUserByEmail fetches a user for login. Returns pgx.ErrNoRows when
// the email is unknown.
func (db *Database) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := db.Pool.QueryRow(ctx, `
		SELECT id, email, password_hash, display_name, role, family_ids, created_at
		FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role, &u.FamilyIDs, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// GetAdminCount reports how many admin users exist. Used by startup to
// decide whether to bootstrap one.
func (db *Database) GetAdminCount(ctx context.Context) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return count, nil
}
