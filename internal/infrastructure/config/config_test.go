package config

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearPrefixedEnv unsets every VRM_ variable for the duration of the test
// so ambient shell configuration cannot leak into assertions.
func clearPrefixedEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "VRM_") {
			continue
		}
		os.Unsetenv(key)
		t.Cleanup(func() { os.Setenv(key, val) })
	}
}

func TestLoadDefaults(t *testing.T) {
	clearPrefixedEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "vrm-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Empty(t, cfg.Database.Password)
	assert.Equal(t, "vrm", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, "US", cfg.People.PhoneRegion)
	assert.Empty(t, cfg.People.EmailBlocklist)
	assert.Equal(t, 10000, cfg.Import.MaxRows)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearPrefixedEnv(t)

	env := map[string]string{
		"VRM_APP_NAME":                "test-app",
		"VRM_APP_ENV":                 "testing",
		"VRM_APP_PORT":                "9000",
		"VRM_DATABASE_HOST":           "testdb.local",
		"VRM_DATABASE_PORT":           "5433",
		"VRM_DATABASE_USER":           "testuser",
		"VRM_DATABASE_PASSWORD":       "testpass",
		"VRM_DATABASE_DBNAME":         "testdb",
		"VRM_DATABASE_SSLMODE":        "require",
		"VRM_DATABASE_MAX_OPEN_CONNS": "50",
		"VRM_DATABASE_MAX_IDLE_CONNS": "10",
		"VRM_PEOPLE_PHONE_REGION":     "CA",
		"VRM_IMPORT_MAX_ROWS":         "500",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-app", cfg.App.Name)
	assert.Equal(t, "testing", cfg.App.Env)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "testdb.local", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "testuser", cfg.Database.User)
	assert.Equal(t, "testpass", cfg.Database.Password)
	assert.Equal(t, "testdb", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.Equal(t, "CA", cfg.People.PhoneRegion)
	assert.Equal(t, 500, cfg.Import.MaxRows)
}

func TestLoadPoolValidation(t *testing.T) {
	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		clearPrefixedEnv(t)
		t.Setenv("VRM_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("VRM_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero open conns falls back to the default", func(t *testing.T) {
		clearPrefixedEnv(t)
		t.Setenv("VRM_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("idle conns cannot be negative", func(t *testing.T) {
		clearPrefixedEnv(t)
		t.Setenv("VRM_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})
}

func TestLoadProductionValidation(t *testing.T) {
	setProductionBase := func(t *testing.T) {
		clearPrefixedEnv(t)
		t.Setenv("VRM_APP_ENV", "production")
		t.Setenv("VRM_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("VRM_DATABASE_PASSWORD", "secure-password")
		t.Setenv("VRM_DATABASE_SSLMODE", "require")
	}

	tests := []struct {
		name    string
		mutate  func(t *testing.T)
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			mutate:  func(t *testing.T) { os.Unsetenv("VRM_JWT_SECRET") },
			wantErr: "jwt.secret is required in production",
		},
		{
			name:    "short jwt secret",
			mutate:  func(t *testing.T) { t.Setenv("VRM_JWT_SECRET", "short-secret") },
			wantErr: "jwt.secret must be at least 32 characters",
		},
		{
			name:    "missing database password",
			mutate:  func(t *testing.T) { os.Unsetenv("VRM_DATABASE_PASSWORD") },
			wantErr: "database.password is required in production",
		},
		{
			name:    "ssl disabled",
			mutate:  func(t *testing.T) { t.Setenv("VRM_DATABASE_SSLMODE", "disable") },
			wantErr: "database.sslmode cannot be 'disable' in production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setProductionBase(t)
			tt.mutate(t)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid production config passes", func(t *testing.T) {
		setProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "localhost")
	assert.Contains(t, dsn, "5432")
	assert.Contains(t, dsn, "testuser")
	assert.Contains(t, dsn, "testdb")
	assert.Contains(t, dsn, "sslmode=disable")

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := cfg
		cfg.Password = "pass@word#123"
		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := cfg
		cfg.Password = ""
		assert.NotEmpty(t, cfg.DSN())
	})
}
