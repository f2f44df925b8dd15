// Package handler provides HTTP handlers for the SkyWindow API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/skywindow/skywindow/internal/api/models"
	"github.com/skywindow/skywindow/internal/api/response"
	"github.com/skywindow/skywindow/internal/provider/resilience"
	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/weather"
)

// readinessTimeout bounds each dependency check.
const readinessTimeout = 2 * time.Second

// DependencyCheck probes one backing service.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// OpsConfig holds configuration for the ops handler.
type OpsConfig struct {
	Version   string
	BuildTime string

	// Registry reports provider circuit states. Optional.
	Registry *resilience.Registry

	// Weather reports forecast cache statistics. Optional.
	Weather *weather.Service

	// Thresholds is the loaded activity table. Optional.
	Thresholds *safety.Table

	// Checks are run by the readiness and status endpoints.
	Checks []DependencyCheck
}

// OpsHandler serves liveness, readiness and status.
type OpsHandler struct {
	cfg OpsConfig
	now func() time.Time
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg, now: time.Now}
}

// HealthCheck handles GET /v1/ops/health.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:    models.HealthStatusOK,
		Time:      h.now().UTC(),
		Version:   h.cfg.Version,
		BuildTime: h.cfg.BuildTime,
	})
}

// ReadinessCheck handles GET /v1/ops/ready. Any failing dependency makes the
// instance unready.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status:  models.HealthStatusOK,
		Time:    h.now().UTC(),
		Version: h.cfg.Version,
	}
	for _, d := range h.runChecks(r.Context()) {
		if d.Status != models.HealthStatusFail {
			continue
		}
		if health.Failures == nil {
			health.Failures = map[string]string{}
		}
		health.Failures[d.Name] = d.Error
	}

	if len(health.Failures) > 0 {
		health.Status = models.HealthStatusFail
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status. A provider circuit that is not
// closed degrades the status; a failing dependency fails it.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:       models.HealthStatusOK,
		Time:         h.now().UTC(),
		Dependencies: h.runChecks(r.Context()),
		Providers:    []models.ProviderStatus{},
	}

	for _, d := range status.Dependencies {
		if d.Status == models.HealthStatusFail {
			status.Status = models.HealthStatusFail
		}
	}

	if h.cfg.Registry != nil {
		for _, p := range h.cfg.Registry.GetAllHealth() {
			ps := providerStatus(p)
			status.Providers = append(status.Providers, ps)
			if ps.Status != models.HealthStatusOK && status.Status == models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	if h.cfg.Weather != nil {
		stats := h.cfg.Weather.CacheStats()
		status.Forecasts = models.ForecastCache{
			Provider:     stats.Provider,
			Entries:      stats.ForecastEntries,
			FreshEntries: stats.ForecastFreshEntries,
			SharedCache:  stats.Shared,
		}
	}
	if h.cfg.Thresholds != nil {
		status.Activities = len(h.cfg.Thresholds.Activities())
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) runChecks(ctx context.Context) []models.DependencyStatus {
	out := make([]models.DependencyStatus, 0, len(h.cfg.Checks))
	for _, c := range h.cfg.Checks {
		checkCtx, cancel := context.WithTimeout(ctx, readinessTimeout)
		start := time.Now()
		err := c.Check(checkCtx)
		cancel()

		d := models.DependencyStatus{
			Name:      c.Name,
			Status:    models.HealthStatusOK,
			LatencyMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			d.Status = models.HealthStatusFail
			d.Error = err.Error()
		}
		out = append(out, d)
	}
	return out
}

func providerStatus(p *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Name:                p.Name,
		Circuit:             p.CircuitState.String(),
		ConsecutiveFailures: p.Counts.ConsecutiveFailures,
		LastSuccessAt:       p.LastSuccessAt,
		LastFailureAt:       p.LastFailureAt,
		LastError:           p.LastError,
	}
	switch p.CircuitState {
	case gobreaker.StateClosed:
		ps.Status = models.HealthStatusOK
	case gobreaker.StateHalfOpen:
		ps.Status = models.HealthStatusDegraded
	default:
		ps.Status = models.HealthStatusFail
	}
	return ps
}
