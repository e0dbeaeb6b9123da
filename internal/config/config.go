// Package config loads and validates application configuration from
// the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	EnvProd = "PROD"
	EnvDev  = "DEV"
)

const (
	defaultPort           = 8080
	defaultDatabasePort   = 5432
	defaultDatabaseHost   = "localhost"
	defaultInviteTTL      = 7 * 24 * time.Hour
	defaultInviteMaxUses  = 1
	defaultAnthropicModel = "claude-3-5-haiku-20241022"
)

type DatabaseConfig struct {
	User     string `validate:"required"`
	Password string `validate:"required"`
	Host     string `validate:"required"`
	Port     int    `validate:"required,min=1,max=65535"`
	Database string `validate:"required"`
}

// URL renders the postgres connection string for pgxpool.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s",
		d.User, d.Password, d.Host, d.Port, d.Database)
}

type InvitationConfig struct {
	TTL     time.Duration `validate:"required,min=1m"`
	MaxUses int           `validate:"required,min=1"`
}

type AnthropicConfig struct {
	APIKey string // empty disables AI suggestions
	Model  string
}

type AdminConfig struct {
	Email    string
	Password string
}

type Config struct {
	Env              string `validate:"omitempty,oneof=DEV PROD"`
	Port             int    `validate:"required,min=1,max=65535"`
	BaseURL          string
	AppSecret        string `validate:"required,min=32"`
	AppSecretVersion string `validate:"required"`
	Database         DatabaseConfig
	Invitation       InvitationConfig
	Anthropic        AnthropicConfig
	Admin            AdminConfig
}

func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

// Load reads configuration from environment variables, applies
// defaults and validates the result.
func Load() (*Config, error) {
	c := &Config{
		Env:              getenvDefault("ENV", EnvDev),
		BaseURL:          os.Getenv("BASE_URL"),
		AppSecret:        os.Getenv("APP_SECRET"),
		AppSecretVersion: getenvDefault("APP_SECRET_VERSION", "1"),
		Database: DatabaseConfig{
			User:     os.Getenv("DATABASE_USER"),
			Password: os.Getenv("DATABASE_PASSWORD"),
			Host:     getenvDefault("DATABASE_HOST", defaultDatabaseHost),
			Database: os.Getenv("DATABASE"),
		},
		Invitation: InvitationConfig{
			TTL:     defaultInviteTTL,
			MaxUses: defaultInviteMaxUses,
		},
		Anthropic: AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  getenvDefault("ANTHROPIC_MODEL", defaultAnthropicModel),
		},
		Admin: AdminConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	var err error
	if c.Port, err = getenvInt("PORT", defaultPort); err != nil {
		return nil, err
	}
	if c.Database.Port, err = getenvInt("DATABASE_PORT", defaultDatabasePort); err != nil {
		return nil, err
	}
	if ttl := os.Getenv("INVITATION_TTL"); ttl != "" {
		c.Invitation.TTL, err = time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("parsing INVITATION_TTL: %w", err)
		}
	}
	if c.Invitation.MaxUses, err = getenvInt("INVITATION_MAX_USES", defaultInviteMaxUses); err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return c, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}
