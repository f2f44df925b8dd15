package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywindow/skywindow/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, 10*time.Minute, cfg.Weather.CacheTTL)
	assert.Equal(t, 0.1, cfg.Weather.CacheGridSize)
	assert.Equal(t, 15*time.Minute, cfg.Worker.Interval)
	assert.Equal(t, 8, cfg.Worker.Concurrency)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, config.DevSigningKey, cfg.Auth.SigningKey)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.HTTP.RequireTLS)
	assert.Equal(t, 30, cfg.HTTP.ForecastLimit)
	assert.Equal(t, time.Minute, cfg.HTTP.RateLimitWindow)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRatio)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "sky")
	t.Setenv("JWT_SIGNING_KEY", "a-real-secret")
	t.Setenv("WORKER_INTERVAL", "5m")
	t.Setenv("PUBSUB_PROJECT_ID", "sky-prod")
	t.Setenv("REQUIRE_TLS", "true")
	t.Setenv("RATE_LIMIT_FORECAST", "5")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "0.1")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Database.Enabled())
	conn := cfg.Database.Connection()
	assert.Equal(t, "db.internal", conn.Host)
	assert.Equal(t, "sky", conn.Database)
	assert.Equal(t, 5432, conn.Port)
	assert.Equal(t, "a-real-secret", cfg.Auth.SigningKey)
	assert.Equal(t, 5*time.Minute, cfg.Worker.Interval)
	assert.Equal(t, "sky-prod", cfg.Worker.PubSubProjectID)
	assert.True(t, cfg.HTTP.RequireTLS)
	assert.Equal(t, 5, cfg.HTTP.ForecastLimit)
	assert.Equal(t, 0.1, cfg.Telemetry.SampleRatio)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantType  config.ConfigErrorType
		wantField string
	}{
		{
			name:     "unparseable duration",
			env:      map[string]string{"WEATHER_CACHE_TTL": "soon"},
			wantType: config.ErrParsing,
		},
		{
			name:      "unknown environment",
			env:       map[string]string{"APP_ENV": "qa"},
			wantType:  config.ErrValidation,
			wantField: "Config.Environment",
		},
		{
			name:      "worker interval too short",
			env:       map[string]string{"WORKER_INTERVAL": "10s"},
			wantType:  config.ErrValidation,
			wantField: "Config.Worker.Interval",
		},
		{
			name:      "idle above open connections",
			env:       map[string]string{"DB_MAX_OPEN_CONNS": "2", "DB_MAX_IDLE_CONNS": "5"},
			wantType:  config.ErrValidation,
			wantField: "Config.Database.MaxIdleConns",
		},
		{
			name:      "zero forecast budget",
			env:       map[string]string{"RATE_LIMIT_FORECAST": "0"},
			wantType:  config.ErrValidation,
			wantField: "Config.HTTP.ForecastLimit",
		},
		{
			name:      "sample ratio above one",
			env:       map[string]string{"OTEL_TRACES_SAMPLE_RATIO": "1.5"},
			wantType:  config.ErrValidation,
			wantField: "Config.Telemetry.SampleRatio",
		},
		{
			name:     "production without signing key",
			env:      map[string]string{"APP_ENV": "production", "JWT_SIGNING_KEY": ""},
			wantType: config.ErrInsecure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			require.Error(t, err)

			var cfgErr *config.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantType, cfgErr.Type)
			assert.Contains(t, err.Error(), string(tt.wantType))
			if tt.wantField != "" {
				assert.Contains(t, config.FieldErrors(err), tt.wantField)
			}
		})
	}
}
