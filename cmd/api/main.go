// Package main provides the entrypoint for the SkyWindow API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/skywindow/skywindow/internal/api"
	"github.com/skywindow/skywindow/internal/api/middleware"
	"github.com/skywindow/skywindow/internal/app"
	"github.com/skywindow/skywindow/internal/auth"
	"github.com/skywindow/skywindow/internal/config"
	"github.com/skywindow/skywindow/internal/device"
	"github.com/skywindow/skywindow/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "skywindow-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Strs("fields", config.FieldErrors(err)).Msg("invalid configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("environment", cfg.Environment).
		Msg("starting SkyWindow API")

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		Component:      telemetry.ComponentAPI,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics(nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	deps, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize dependencies")
		os.Exit(1)
	}
	defer deps.Close()

	if cfg.Auth.SigningKey == config.DevSigningKey {
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	tokens := auth.NewJWTService(auth.JWTConfig{
		SigningKey: cfg.Auth.SigningKey,
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		TTL:        cfg.Auth.TokenTTL,
	})

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:   Version,
		BuildTime: BuildTime,
		Logger:    log,
		Metrics:   metrics,
		Security: middleware.SecurityConfig{
			RequireTLS: cfg.HTTP.RequireTLS,
			HSTSMaxAge: cfg.HTTP.HSTSMaxAge,
		},
		RateLimits: middleware.RateLimits{
			Register: cfg.HTTP.RegisterLimit,
			Forecast: cfg.HTTP.ForecastLimit,
			Scoring:  cfg.HTTP.ScoringLimit,
			Device:   cfg.HTTP.DeviceLimit,
			Window:   cfg.HTTP.RateLimitWindow,
		},
		Thresholds: deps.Scorer.Table(),
		Reports:    deps.Reports,
		Scheduler:  deps.Scheduler,
		Weather:    deps.Weather,
		Devices:    device.NewService(deps.Devices),
		Alerts:     deps.Alerts,
		Tokens:     tokens,
		Registry:   deps.Registry,
		Checks:     deps.Checks,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
