package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"BANK_APP_NAME",
	"BANK_APP_ENV",
	"BANK_APP_PORT",
	"BANK_DATABASE_HOST",
	"BANK_DATABASE_PORT",
	"BANK_DATABASE_USER",
	"BANK_DATABASE_PASSWORD",
	"BANK_DATABASE_DBNAME",
	"BANK_DATABASE_SSLMODE",
	"BANK_DATABASE_MAX_OPEN_CONNS",
	"BANK_DATABASE_MAX_IDLE_CONNS",
	"BANK_JWT_SECRET",
	"BANK_SWAGGER_ENABLED",
	"BANK_SWAGGER_REQUIRE_AUTH",
	"BANK_SCHEDULER_ACCRUAL_CRON",
	"BANK_ACCOUNTING_DEFAULT_CURRENCY",
	"BANK_ACCOUNTING_DIGITS",
	"BANK_STORAGE_ENABLED",
	"BANK_STORAGE_BUCKET",
	"BANK_TELEMETRY_SAMPLING_RATIO",
	"BANK_JWT_MAX_REFRESH_COUNT",
	"BANK_JWT_ACCESS_TOKEN_EXPIRATION",
	"BANK_HTTP_CORS_ALLOW_ORIGINS",
	"BANK_WEBHOOK_MAX_RETRIES",
}

// clearConfigEnv unsets every key for the duration of the test
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearConfigEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "fincore", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "fincore", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "0 1 * * *", cfg.Scheduler.AccrualCron)
		assert.Equal(t, "@every 1m", cfg.Scheduler.HookRetryCron)
		assert.Equal(t, 4, cfg.Scheduler.Workers)
		assert.Equal(t, "USD", cfg.Accounting.DefaultCurrency)
		assert.Equal(t, 2, cfg.Accounting.Digits)
		assert.Equal(t, 5, cfg.Webhook.MaxRetries)
		assert.Equal(t, 10*time.Second, cfg.Webhook.Timeout)
		assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiry)
	})

	t.Run("loads values from environment variables with BANK prefix", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("BANK_APP_NAME", "test-bank")
		t.Setenv("BANK_APP_PORT", "9000")
		t.Setenv("BANK_DATABASE_HOST", "testdb.local")
		t.Setenv("BANK_DATABASE_PORT", "5433")
		t.Setenv("BANK_DATABASE_PASSWORD", "testpass")
		t.Setenv("BANK_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("BANK_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("BANK_SCHEDULER_ACCRUAL_CRON", "15 3 * * *")
		t.Setenv("BANK_ACCOUNTING_DEFAULT_CURRENCY", "KES")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-bank", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "15 3 * * *", cfg.Scheduler.AccrualCron)
		assert.Equal(t, "KES", cfg.Accounting.DefaultCurrency)
	})

	t.Run("keeps explicit zero values and decodes lists", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("BANK_JWT_MAX_REFRESH_COUNT", "0")
		t.Setenv("BANK_ACCOUNTING_DIGITS", "0")
		t.Setenv("BANK_JWT_ACCESS_TOKEN_EXPIRATION", "5m")
		t.Setenv("BANK_HTTP_CORS_ALLOW_ORIGINS", "https://backoffice.example,https://ops.example")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Zero(t, cfg.JWT.MaxRefreshCount)
		assert.Zero(t, cfg.Accounting.Digits)
		assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTokenExpiration)
		assert.Equal(t, []string{"https://backoffice.example", "https://ops.example"}, cfg.HTTP.CORSAllowOrigins)
		assert.Len(t, cfg.HTTP.CORSAllowMethods, 6)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("BANK_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("BANK_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("BANK_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects a currency that is not three letters", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("BANK_ACCOUNTING_DEFAULT_CURRENCY", "EURO")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accounting.default_currency")
	})

	t.Run("rejects more than six decimal digits", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("BANK_ACCOUNTING_DIGITS", "8")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accounting.digits")
	})

	t.Run("bounds webhook retries", func(t *testing.T) {
		for _, retries := range []string{"0", "-3", "101", "5000"} {
			clearConfigEnv(t)
			t.Setenv("BANK_WEBHOOK_MAX_RETRIES", retries)

			_, err := Load()
			require.Error(t, err, retries)
			assert.Contains(t, err.Error(), "webhook.max_retries")
		}

		clearConfigEnv(t)
		t.Setenv("BANK_WEBHOOK_MAX_RETRIES", "100")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.Webhook.MaxRetries)
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("BANK_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("BANK_APP_ENV", "production")
		t.Setenv("BANK_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("BANK_DATABASE_PASSWORD", "secure-password")
		t.Setenv("BANK_DATABASE_SSLMODE", "require")
		t.Setenv("BANK_SWAGGER_ENABLED", "false")
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		setValidProductionBase(t)
		os.Unsetenv("BANK_JWT_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BANK_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		os.Unsetenv("BANK_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BANK_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("fails if swagger enabled without protection in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BANK_SWAGGER_ENABLED", "true")
		t.Setenv("BANK_SWAGGER_REQUIRE_AUTH", "false")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger endpoint must be disabled")
	})

	t.Run("passes with swagger enabled and require_auth in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("BANK_SWAGGER_ENABLED", "true")
		t.Setenv("BANK_SWAGGER_REQUIRE_AUTH", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.RequireAuth)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
