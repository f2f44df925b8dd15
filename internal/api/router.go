// Package api provides the HTTP API for SkyWindow.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/skywindow/skywindow/internal/alert"
	"github.com/skywindow/skywindow/internal/api/handler"
	"github.com/skywindow/skywindow/internal/api/middleware"
	"github.com/skywindow/skywindow/internal/auth"
	"github.com/skywindow/skywindow/internal/device"
	"github.com/skywindow/skywindow/internal/provider/resilience"
	"github.com/skywindow/skywindow/internal/report"
	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/schedule"
	"github.com/skywindow/skywindow/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	// Security controls response headers and TLS enforcement.
	Security middleware.SecurityConfig

	// RateLimits are per-group request budgets. Zero fields use defaults.
	RateLimits middleware.RateLimits

	Thresholds *safety.Table
	Reports    *report.Builder
	Scheduler  *schedule.Scheduler
	Weather    *weather.Service

	Devices *device.Service
	Alerts  alert.Repository
	Tokens  *auth.JWTService

	// Registry and Checks feed the ops endpoints.
	Registry *resilience.Registry
	Checks   []handler.DependencyCheck
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	limits := cfg.RateLimits.WithDefaults()

	// Request ID first so every later layer can log and tag it.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:    cfg.Version,
		BuildTime:  cfg.BuildTime,
		Registry:   cfg.Registry,
		Weather:    cfg.Weather,
		Thresholds: cfg.Thresholds,
		Checks:     cfg.Checks,
	})
	activityHandler := handler.NewActivityHandler(cfg.Thresholds)
	analysisHandler := handler.NewAnalysisHandler(cfg.Reports, cfg.Scheduler)
	forecastHandler := handler.NewForecastHandler(cfg.Weather, cfg.Reports, cfg.Logger)
	deviceHandler := handler.NewDeviceHandler(cfg.Devices, cfg.Alerts, cfg.Tokens, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.Tokens)

	registerLimit := middleware.PerIP(limits.Register, limits.Window)
	forecastLimit := middleware.PerIP(limits.Forecast, limits.Window)
	scoringLimit := middleware.PerIP(limits.Scoring, limits.Window)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Pure scoring over caller-supplied data
		r.Group(func(r chi.Router) {
			r.Use(scoringLimit)
			r.Get("/activities", activityHandler.ListActivities)
			r.Post("/analyze", analysisHandler.Analyze)
			r.Post("/dry-window", analysisHandler.DryWindow)
			r.Post("/slots", analysisHandler.Slots)
			r.Post("/summary", analysisHandler.Summary)
		})

		// Provider-backed, so budgeted tighter than scoring.
		r.With(forecastLimit).Get("/forecast", forecastHandler.GetForecast)

		r.Route("/devices", func(r chi.Router) {
			r.With(registerLimit).Post("/", deviceHandler.RegisterDevice)

			r.Route("/me", func(r chi.Router) {
				r.Use(authMiddleware)
				r.Use(middleware.PerDevice(limits.Device, limits.Window))
				r.Get("/", deviceHandler.GetDevice)
				r.Put("/", deviceHandler.UpdateDevice)
				r.Delete("/", deviceHandler.DeleteDevice)
				r.Get("/alerts", deviceHandler.ListAlerts)
			})
		})
	})

	return r
}
