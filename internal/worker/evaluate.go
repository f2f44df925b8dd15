package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/skywindow/skywindow/internal/alert"
	"github.com/skywindow/skywindow/internal/device"
	"github.com/skywindow/skywindow/internal/weather"
)

// ForecastSource supplies forecasts for a location.
type ForecastSource interface {
	GetForecast(ctx context.Context, lat, lon float64, units weather.UnitSystem) (*weather.Forecast, error)
}

// Publisher delivers a notification to a device.
type Publisher interface {
	Publish(ctx context.Context, d *device.Device, n *alert.Notification) error
}

// Evaluation stages reported in EvaluationError.
const (
	StageList     = "list"
	StageForecast = "forecast"
	StageState    = "state"
	StageSave     = "save"
	StagePublish  = "publish"
)

// EvaluationJob evaluates alert conditions for every subscribed device.
type EvaluationJob struct {
	config    EvaluationConfig
	logger    zerolog.Logger
	devices   device.Repository
	alerts    alert.Repository
	forecasts ForecastSource
	engine    *alert.Engine
	publisher Publisher
	now       func() time.Time

	metrics *EvaluationMetrics
}

// EvaluationMetrics tracks evaluation job statistics.
type EvaluationMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns         int64
	DevicesEvaluated  int64
	DevicesFailed     int64
	NotificationsSent int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// EvaluationJobConfig holds configuration for creating an EvaluationJob.
type EvaluationJobConfig struct {
	Config    EvaluationConfig
	Logger    zerolog.Logger
	Devices   device.Repository
	Alerts    alert.Repository
	Forecasts ForecastSource
	Engine    *alert.Engine
	Publisher Publisher

	// Now overrides the clock.
	Now func() time.Time
}

// NewEvaluationJob creates a new evaluation job.
func NewEvaluationJob(cfg EvaluationJobConfig) *EvaluationJob {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = NewLogPublisher(cfg.Logger)
	}

	return &EvaluationJob{
		config:    cfg.Config.withDefaults(),
		logger:    cfg.Logger,
		devices:   cfg.Devices,
		alerts:    cfg.Alerts,
		forecasts: cfg.Forecasts,
		engine:    cfg.Engine,
		publisher: publisher,
		now:       now,
		metrics:   &EvaluationMetrics{},
	}
}

// EvaluationResult contains the result of one evaluation run.
type EvaluationResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	TotalDevices int
	Evaluated    int
	Notified     int
	Failed       int
	Errors       []EvaluationError
}

// EvaluationError represents a failure while evaluating one device.
type EvaluationError struct {
	DeviceID string
	Stage    string
	Error    string
}

// stageError tags an error with the evaluation stage it occurred in.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

// Run evaluates every device with alerts enabled. A failing device does not
// stop the others.
func (j *EvaluationJob) Run(ctx context.Context) *EvaluationResult {
	startTime := j.now()
	result := &EvaluationResult{StartTime: startTime}

	j.logger.Info().
		Int("concurrency", j.config.Concurrency).
		Msg("starting alert evaluation job")

	var mu sync.Mutex
	cursor := ""
	for {
		page, err := j.devices.List(ctx, device.ListOptions{
			Limit:             j.config.PageSize,
			Cursor:            cursor,
			AlertsEnabledOnly: true,
		})
		if err != nil {
			j.logger.Error().Err(err).Msg("failed to list devices")
			result.Errors = append(result.Errors, EvaluationError{Stage: StageList, Error: err.Error()})
			break
		}

		var g errgroup.Group
		g.SetLimit(j.config.Concurrency)

		for _, d := range page.Items {
			g.Go(func() error {
				note, err := j.evaluate(ctx, d)

				mu.Lock()
				defer mu.Unlock()
				result.TotalDevices++
				if err != nil {
					result.Failed++
					result.Errors = append(result.Errors, evaluationError(d.ID, err))
					return nil
				}
				result.Evaluated++
				if note != nil {
					result.Notified++
				}
				return nil
			})
		}
		_ = g.Wait()

		if page.NextCursor == "" || ctx.Err() != nil {
			break
		}
		cursor = page.NextCursor
	}

	result.EndTime = j.now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("devices", result.TotalDevices).
		Int("evaluated", result.Evaluated).
		Int("notified", result.Notified).
		Int("failed", result.Failed).
		Msg("alert evaluation job completed")

	return result
}

// EvaluateDevice evaluates a single device on demand and returns the
// notification sent, if any.
func (j *EvaluationJob) EvaluateDevice(ctx context.Context, id string) (*alert.Notification, error) {
	d, err := j.devices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return j.evaluate(ctx, d)
}

// Probe fetches the forecast for the health probe location.
func (j *EvaluationJob) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.config.DeviceTimeout)
	defer cancel()

	p := j.config.HealthProbe
	_, err := j.forecasts.GetForecast(ctx, p.Lat, p.Lon, weather.UnitsImperial)
	return err
}

func (j *EvaluationJob) evaluate(ctx context.Context, d *device.Device) (*alert.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, j.config.DeviceTimeout)
	defer cancel()

	logger := j.logger.With().Str("device_id", d.ID).Logger()

	forecast, err := j.forecasts.GetForecast(ctx, d.Lat, d.Lon, d.Units)
	if err != nil {
		return nil, &stageError{StageForecast, err}
	}

	state, err := j.alerts.Get(ctx, d.ID)
	switch {
	case errors.Is(err, alert.ErrStateNotFound):
		state = &alert.State{DeviceID: d.ID}
	case err != nil:
		return nil, &stageError{StageState, err}
	}

	decision := j.engine.Evaluate(alert.Input{
		Now:        j.now().In(d.Location()),
		ActivityID: d.ActivityID,
		Units:      forecast.Units,
		Current:    forecast.Currently,
		Hourly:     forecast.Hourly,
		Minutely:   forecast.Minutely,
		State:      *state,
	})
	decision.State.DeviceID = d.ID

	if err := j.alerts.Save(ctx, &decision.State); err != nil {
		return nil, &stageError{StageSave, err}
	}

	if decision.Notification == nil {
		logger.Debug().Msg("no notification")
		return nil, nil
	}

	if err := j.publisher.Publish(ctx, d, decision.Notification); err != nil {
		return nil, &stageError{StagePublish, fmt.Errorf("notification %s: %w", decision.Notification.ID, err)}
	}

	logger.Info().
		Str("kind", string(decision.Notification.Kind)).
		Str("notification_id", decision.Notification.ID).
		Msg("notification sent")

	return decision.Notification, nil
}

func evaluationError(deviceID string, err error) EvaluationError {
	stage := ""
	var se *stageError
	if errors.As(err, &se) {
		stage = se.stage
		err = se.err
	}
	return EvaluationError{DeviceID: deviceID, Stage: stage, Error: err.Error()}
}

func (j *EvaluationJob) updateMetrics(result *EvaluationResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.DevicesEvaluated += int64(result.Evaluated)
	j.metrics.DevicesFailed += int64(result.Failed)
	j.metrics.NotificationsSent += int64(result.Notified)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *EvaluationJob) GetMetrics() EvaluationMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return EvaluationMetrics{
		TotalRuns:         j.metrics.TotalRuns,
		DevicesEvaluated:  j.metrics.DevicesEvaluated,
		DevicesFailed:     j.metrics.DevicesFailed,
		NotificationsSent: j.metrics.NotificationsSent,
		LastRunAt:         j.metrics.LastRunAt,
		LastRunDuration:   j.metrics.LastRunDuration,
		TotalDuration:     j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *EvaluationJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":         m.TotalRuns,
		"devices_evaluated":  m.DevicesEvaluated,
		"devices_failed":     m.DevicesFailed,
		"notifications_sent": m.NotificationsSent,
		"last_run_at":        m.LastRunAt,
		"last_run_duration":  m.LastRunDuration.String(),
		"total_duration":     m.TotalDuration.String(),
	}
}
