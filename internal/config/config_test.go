package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklane.dev/internal/auth"
)

var configKeys = []string{
	"HOST", "PORT", "API_PREFIX", "JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET",
	"JWT_ACCESS_TTL", "JWT_REFRESH_TTL", "JWT_ISSUER", "BCRYPT_COST", "AUTH_ROLE_SOURCE",
	"STORE_DRIVER", "DATABASE_URL", "MONGODB_URI", "MONGODB_DATABASE", "MIGRATE_ON_START",
	"REVOCATION_PRUNE_INTERVAL", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"MAX_BODY_BYTES", "LOG_LEVEL", "SHUTDOWN_TIMEOUT",
}

// cleanEnv blanks every key so the host environment does not leak in.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func minimalEnv(t *testing.T) {
	t.Helper()
	cleanEnv(t)
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	t.Setenv("STORE_DRIVER", "memory")
}

func TestFromEnvDefaults(t *testing.T) {
	minimalEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3001", cfg.Server.Addr())
	assert.Equal(t, "/api", cfg.Server.APIPrefix)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "tasklane", cfg.JWT.Issuer)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, auth.RoleFromToken, cfg.Auth.RoleSource)
	assert.Equal(t, 10*time.Minute, cfg.Auth.PruneInterval)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "tasklane", cfg.Store.MongoDatabase)
	assert.False(t, cfg.Store.MigrateOnStart)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 10.0, cfg.HTTP.RateLimitRPS)
	assert.Equal(t, 20, cfg.HTTP.RateLimitBurst)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestFromEnvDefaultsToMongo(t *testing.T) {
	cleanEnv(t)
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURI)
}

func TestFromEnvOverrides(t *testing.T) {
	minimalEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("API_PREFIX", "v1/")
	t.Setenv("AUTH_ROLE_SOURCE", "Store")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/tasklane")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REVOCATION_PRUNE_INTERVAL", "0")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/v1", cfg.Server.APIPrefix)
	assert.Equal(t, auth.RoleFromStore, cfg.Auth.RoleSource)
	assert.True(t, cfg.Store.MigrateOnStart)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.Zero(t, cfg.Auth.PruneInterval)
}

func TestFromEnvRejectsSharedSecret(t *testing.T) {
	minimalEnv(t)
	t.Setenv("JWT_REFRESH_SECRET", "access-secret")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestFromEnvCollectsProblems(t *testing.T) {
	cleanEnv(t)
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := FromEnv()
	require.Error(t, err)
	for _, want := range []string{"JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET", "BCRYPT_COST", "MONGODB_URI"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	cases := map[string]string{
		"PORT":             "http",
		"JWT_ACCESS_TTL":   "one day",
		"MIGRATE_ON_START": "sometimes",
		"RATE_LIMIT_RPS":   "fast",
		"STORE_DRIVER":     "sqlite",
		"AUTH_ROLE_SOURCE": "header",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			minimalEnv(t)
			t.Setenv(key, val)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	cleanEnv(t)
	for _, k := range configKeys {
		// godotenv never overrides variables that are already set, even empty.
		require.NoError(t, os.Unsetenv(k))
	}
	path := filepath.Join(t.TempDir(), "test.env")
	body := "JWT_ACCESS_SECRET=a\nJWT_REFRESH_SECRET=b\nSTORE_DRIVER=memory\nPORT=4000\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}
