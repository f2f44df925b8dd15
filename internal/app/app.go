// Package app wires the shared dependencies of the API server and the worker
// from configuration.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/valkey-io/valkey-go"

	"github.com/skywindow/skywindow/internal/alert"
	"github.com/skywindow/skywindow/internal/api/handler"
	"github.com/skywindow/skywindow/internal/config"
	"github.com/skywindow/skywindow/internal/database"
	"github.com/skywindow/skywindow/internal/device"
	"github.com/skywindow/skywindow/internal/provider/resilience"
	"github.com/skywindow/skywindow/internal/report"
	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/schedule"
	"github.com/skywindow/skywindow/internal/summary"
	"github.com/skywindow/skywindow/internal/weather"
	"github.com/skywindow/skywindow/internal/weather/pirateweather"
	"github.com/skywindow/skywindow/internal/weather/valkeycache"
)

// Dependencies are the long-lived components shared by both binaries.
type Dependencies struct {
	Pool     *pgxpool.Pool
	Valkey   valkey.Client
	Registry *resilience.Registry

	Scorer    *safety.Scorer
	Scheduler *schedule.Scheduler
	Reports   *report.Builder
	Weather   *weather.Service
	Devices   device.Repository
	Alerts    alert.Repository

	// Checks back the readiness and status endpoints.
	Checks []handler.DependencyCheck
}

// Open builds the dependencies. Without a database host the in-memory
// repositories are used; without a Valkey address forecasts are cached
// per process only.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Registry: resilience.NewRegistry()}

	table, err := loadThresholds(cfg.Scoring.ThresholdsFile)
	if err != nil {
		return nil, err
	}
	deps.Scorer = safety.NewScorer(table, safety.DefaultScoringConfig())
	deps.Scheduler = schedule.NewScheduler(deps.Scorer, schedule.DefaultConfig())
	deps.Reports = report.NewBuilder(deps.Scorer, deps.Scheduler, summary.NewSummarizer(deps.Scorer), report.Config{})

	if cfg.Database.Enabled() {
		if err := deps.openDatabase(ctx, cfg.Database, logger); err != nil {
			return nil, err
		}
	} else {
		logger.Warn().Msg("DB_HOST not set, using in-memory repositories")
		deps.Devices = device.NewInMemoryRepository()
		deps.Alerts = alert.NewInMemoryRepository()
	}

	var shared weather.Cache
	if cfg.Cache.ValkeyAddr != "" {
		cache, err := deps.openValkey(ctx, cfg.Cache)
		if err != nil {
			deps.Close()
			return nil, err
		}
		shared = cache
		logger.Info().Str("addr", cfg.Cache.ValkeyAddr).Msg("shared forecast cache connected")
	}

	forecastMetrics, err := weather.NewMetrics(nil)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("forecast metrics: %w", err)
	}

	httpCfg := resilience.DefaultClientConfig(pirateweather.ProviderName)
	httpCfg.Timeout = cfg.Weather.Timeout
	httpCfg.MaxRetries = cfg.Weather.MaxRetries
	httpCfg.Registry = deps.Registry
	httpCfg.Logger = logger

	if cfg.Weather.APIKey == "" {
		logger.Warn().Msg("PIRATE_WEATHER_API_KEY not set, forecast requests will fail")
	}

	deps.Weather = weather.NewService(weather.ServiceConfig{
		Provider: pirateweather.NewClient(pirateweather.ClientConfig{
			APIKey:     cfg.Weather.APIKey,
			BaseURL:    cfg.Weather.BaseURL,
			HTTPClient: resilience.NewClient(httpCfg),
			Logger:     logger,
		}),
		Shared:          shared,
		Logger:          logger,
		CacheTTL:        cfg.Weather.CacheTTL,
		CacheGridSize:   cfg.Weather.CacheGridSize,
		StaleIfErrorTTL: cfg.Weather.StaleIfErrorTTL,
		Metrics:         forecastMetrics,
	})

	return deps, nil
}

func (d *Dependencies) openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) error {
	conn := cfg.Connection()

	if cfg.AutoMigrate {
		if err := database.Migrate(conn, logger); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}

	pool, err := database.Connect(ctx, conn)
	if err != nil {
		return err
	}
	logger.Info().
		Str("host", conn.Host).
		Int("port", conn.Port).
		Str("database", conn.Database).
		Msg("database connected")

	d.Pool = pool
	d.Devices = device.NewPostgresRepository(pool)
	d.Alerts = alert.NewPostgresRepository(pool)
	d.Checks = append(d.Checks, handler.DependencyCheck{Name: "postgres", Check: pool.Ping})
	return nil
}

func (d *Dependencies) openValkey(ctx context.Context, cfg config.CacheConfig) (*valkeycache.Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{cfg.ValkeyAddr}})
	if err != nil {
		return nil, fmt.Errorf("connecting to valkey: %w", err)
	}
	d.Valkey = client

	cache, err := valkeycache.New(client, cfg.Prefix)
	if err != nil {
		return nil, err
	}
	if err := cache.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pinging valkey: %w", err)
	}

	d.Checks = append(d.Checks, handler.DependencyCheck{Name: "valkey", Check: cache.Ping})
	return cache, nil
}

// Close releases connections.
func (d *Dependencies) Close() {
	if d.Valkey != nil {
		d.Valkey.Close()
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
}

func loadThresholds(path string) (*safety.Table, error) {
	if path == "" {
		return safety.DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading thresholds file: %w", err)
	}
	table, err := safety.LoadTable(data)
	if err != nil {
		return nil, fmt.Errorf("loading thresholds from %s: %w", path, err)
	}
	return table, nil
}
