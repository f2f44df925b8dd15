// Package config loads process configuration from the environment.
//
// Values are resolved as OS environment first, then an optional .env file,
// then the defaults declared on the struct tags.
package config

import (
	"time"

	"github.com/skywindow/skywindow/internal/database"
)

// Config is the configuration shared by the API server and the worker.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"development" validate:"oneof=development test staging production"`
	Port        string `envconfig:"APP_PORT" default:"8080" validate:"required,numeric"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`

	HTTP      HTTPConfig
	Database  DatabaseConfig
	Weather   WeatherConfig
	Cache     CacheConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
	Worker    WorkerConfig
	Scoring   ScoringConfig
}

// HTTPConfig configures API hardening and per-group rate limits. Limits are
// requests per RATE_LIMIT_WINDOW.
type HTTPConfig struct {
	RequireTLS      bool          `envconfig:"REQUIRE_TLS" default:"false"`
	HSTSMaxAge      time.Duration `envconfig:"HSTS_MAX_AGE" default:"8760h"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m" validate:"min=1s"`
	RegisterLimit   int           `envconfig:"RATE_LIMIT_REGISTER" default:"10" validate:"min=1"`
	ForecastLimit   int           `envconfig:"RATE_LIMIT_FORECAST" default:"30" validate:"min=1"`
	ScoringLimit    int           `envconfig:"RATE_LIMIT_SCORING" default:"100" validate:"min=1"`
	DeviceLimit     int           `envconfig:"RATE_LIMIT_DEVICE" default:"100" validate:"min=1"`
}

// DatabaseConfig configures PostgreSQL. When Host is empty the in-memory
// repositories are used.
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST"`
	Port            int           `envconfig:"DB_PORT" default:"5432" validate:"min=1,max=65535"`
	User            string        `envconfig:"DB_USER" default:"skywindow"`
	Password        string        `envconfig:"DB_PASSWORD" default:"localdev"`
	Name            string        `envconfig:"DB_NAME" default:"skywindow"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10" validate:"min=1"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"2" validate:"min=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	ApplicationName string        `envconfig:"DB_APPLICATION_NAME" default:"skywindow"`
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// Connection converts to the database package configuration.
func (c DatabaseConfig) Connection() database.Config {
	return database.Config{
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Database:        c.Name,
		SSLMode:         c.SSLMode,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ApplicationName: c.ApplicationName,
	}
}

// WeatherConfig configures the forecast provider and its local cache.
type WeatherConfig struct {
	APIKey          string        `envconfig:"PIRATE_WEATHER_API_KEY"`
	BaseURL         string        `envconfig:"PIRATE_WEATHER_BASE_URL" validate:"omitempty,url"`
	Timeout         time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`
	MaxRetries      uint64        `envconfig:"WEATHER_MAX_RETRIES" default:"2" validate:"max=10"`
	CacheTTL        time.Duration `envconfig:"WEATHER_CACHE_TTL" default:"10m"`
	CacheGridSize   float64       `envconfig:"WEATHER_CACHE_GRID" default:"0.1" validate:"gt=0,lte=1"`
	StaleIfErrorTTL time.Duration `envconfig:"WEATHER_STALE_TTL" default:"1h"`
}

// CacheConfig configures the optional shared Valkey forecast cache.
type CacheConfig struct {
	ValkeyAddr string `envconfig:"VALKEY_ADDR"`
	Prefix     string `envconfig:"VALKEY_PREFIX" default:"skywindow:forecast"`
}

// AuthConfig configures device access tokens.
type AuthConfig struct {
	SigningKey string        `envconfig:"JWT_SIGNING_KEY"`
	Issuer     string        `envconfig:"JWT_ISSUER" default:"skywindow"`
	Audience   string        `envconfig:"JWT_AUDIENCE" default:"skywindow-app"`
	TokenTTL   time.Duration `envconfig:"DEVICE_TOKEN_TTL" default:"720h"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool    `envconfig:"OTEL_ENABLED" default:"false"`
	OTLPEndpoint string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	SampleRatio  float64 `envconfig:"OTEL_TRACES_SAMPLE_RATIO" default:"1" validate:"gt=0,lte=1"`
}

// WorkerConfig configures the alert evaluation worker.
type WorkerConfig struct {
	Interval          time.Duration `envconfig:"WORKER_INTERVAL" default:"15m" validate:"min=1m"`
	Concurrency       int           `envconfig:"WORKER_CONCURRENCY" default:"8" validate:"min=1,max=256"`
	DeviceTimeout     time.Duration `envconfig:"WORKER_DEVICE_TIMEOUT" default:"20s"`
	PubSubProjectID   string        `envconfig:"PUBSUB_PROJECT_ID"`
	NotificationTopic string        `envconfig:"PUBSUB_NOTIFICATION_TOPIC" default:"skywindow-notifications"`
	JobSubscription   string        `envconfig:"PUBSUB_JOB_SUBSCRIPTION"`
}

// ScoringConfig overrides the built-in activity threshold table.
type ScoringConfig struct {
	ThresholdsFile string `envconfig:"THRESHOLDS_FILE" validate:"omitempty,file"`
}

// IsProduction reports whether the process runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
