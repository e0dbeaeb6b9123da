package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_USER", "tidyplan")
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("DATABASE", "tidyplan")
	t.Setenv("APP_SECRET", strings.Repeat("s", 32))
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Env != EnvDev {
		t.Errorf("Env = %q, want %q", c.Env, EnvDev)
	}
	if c.Port != 8080 {
		t.Errorf("Port = %d, want 8080", c.Port)
	}
	if c.Database.Host != "localhost" || c.Database.Port != 5432 {
		t.Errorf("database defaults = %s:%d, want localhost:5432", c.Database.Host, c.Database.Port)
	}
	if c.Invitation.TTL != 7*24*time.Hour {
		t.Errorf("Invitation.TTL = %v, want 168h", c.Invitation.TTL)
	}
	if c.Invitation.MaxUses != 1 {
		t.Errorf("Invitation.MaxUses = %d, want 1", c.Invitation.MaxUses)
	}
	if c.AppSecretVersion != "1" {
		t.Errorf("AppSecretVersion = %q, want 1", c.AppSecretVersion)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "PROD")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_PORT", "5433")
	t.Setenv("INVITATION_TTL", "720h")
	t.Setenv("INVITATION_MAX_USES", "50")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.IsProd() {
		t.Error("expected prod environment")
	}
	if c.Port != 9090 || c.Database.Port != 5433 {
		t.Errorf("ports = %d/%d, want 9090/5433", c.Port, c.Database.Port)
	}
	if c.Invitation.TTL != 720*time.Hour {
		t.Errorf("Invitation.TTL = %v, want 720h", c.Invitation.TTL)
	}
	if c.Invitation.MaxUses != 50 {
		t.Errorf("Invitation.MaxUses = %d, want 50", c.Invitation.MaxUses)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*testing.T)
	}{
		{name: "missing database user", setup: func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("DATABASE_USER", "")
		}},
		{name: "short app secret", setup: func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("APP_SECRET", "short")
		}},
		{name: "bad port", setup: func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("PORT", "not-a-number")
		}},
		{name: "bad ttl", setup: func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("INVITATION_TTL", "soon")
		}},
		{name: "zero max uses", setup: func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("INVITATION_MAX_USES", "0")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)
			if _, err := Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	d := DatabaseConfig{
		User:     "u",
		Password: "p",
		Host:     "db",
		Port:     5432,
		Database: "tidyplan",
	}
	want := "postgresql://u:p@db:5432/tidyplan"
	if got := d.URL(); got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}
