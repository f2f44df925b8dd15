// Package main provides the entrypoint for the SkyWindow alert worker.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/skywindow/skywindow/internal/alert"
	"github.com/skywindow/skywindow/internal/app"
	"github.com/skywindow/skywindow/internal/config"
	"github.com/skywindow/skywindow/internal/telemetry"
	"github.com/skywindow/skywindow/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "skywindow-worker"

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
		Msg("starting SkyWindow worker")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		Component:      telemetry.ComponentWorker,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	deps, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize dependencies")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	defer deps.Close()

	var publisher worker.Publisher = worker.NewLogPublisher(log)
	if cfg.Worker.PubSubProjectID != "" {
		pub, err := worker.NewPubSubPublisher(ctx, worker.PubSubPublisherConfig{
			ProjectID: cfg.Worker.PubSubProjectID,
			Topic:     cfg.Worker.NotificationTopic,
			Logger:    log,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to create notification publisher")
			os.Exit(1)
		}
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close notification publisher")
			}
		}()
		publisher = pub
		log.Info().Str("topic", cfg.Worker.NotificationTopic).Msg("publishing notifications to pubsub")
	} else {
		log.Warn().Msg("PUBSUB_PROJECT_ID not set, notifications are only logged")
	}

	job := worker.NewEvaluationJob(worker.EvaluationJobConfig{
		Config: worker.EvaluationConfig{
			Interval:      cfg.Worker.Interval,
			Concurrency:   cfg.Worker.Concurrency,
			DeviceTimeout: cfg.Worker.DeviceTimeout,
		},
		Logger:    log,
		Devices:   deps.Devices,
		Alerts:    deps.Alerts,
		Forecasts: deps.Weather,
		Engine:    alert.NewEngine(deps.Scorer, deps.Scheduler, alert.DefaultConfig()),
		Publisher: publisher,
	})

	scheduler := worker.NewScheduler(job, log)
	if err := scheduler.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start scheduler")
		os.Exit(1)
	}
	defer scheduler.Stop()

	if cfg.Worker.JobSubscription != "" && cfg.Worker.PubSubProjectID != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.Worker.PubSubProjectID,
			SubscriptionName: cfg.Worker.JobSubscription,
			Jobs:             worker.NewJobHandler(job, log),
			Logger:           log,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to create pubsub handler")
			os.Exit(1)
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	}

	// Worker also exposes a health endpoint for Cloud Run
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := http.StatusOK
		if !scheduler.IsRunning() {
			status = http.StatusServiceUnavailable
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  http.StatusText(status),
			"version": Version,
			"metrics": job.MetricsSnapshot(),
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
