package setup

import (
	"context"
	"errors"
	"testing"

	"github.com/matt-dz/tidyplan/internal/config"
)

func TestDatabaseMissingConfig(t *testing.T) {
	tests := []struct {
		name         string
		conf         config.DatabaseConfig
		wantVariable string
	}{
		{
			name:         "missing user",
			conf:         config.DatabaseConfig{Password: "pw", Database: "tidyplan"},
			wantVariable: "DATABASE_USER",
		},
		{
			name:         "missing password",
			conf:         config.DatabaseConfig{User: "tidyplan", Database: "tidyplan"},
			wantVariable: "DATABASE_PASSWORD",
		},
		{
			name:         "missing database",
			conf:         config.DatabaseConfig{User: "tidyplan", Password: "pw"},
			wantVariable: "DATABASE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Database(context.Background(), &config.Config{Database: tt.conf})
			var missing *EnvironmentVariableMissingError
			if !errors.As(err, &missing) {
				t.Fatalf("expected EnvironmentVariableMissingError, got %v", err)
			}
			if missing.Variable != tt.wantVariable {
				t.Errorf("variable = %q, want %q", missing.Variable, tt.wantVariable)
			}
		})
	}
}
