package worker_test

import (
	"context"
	"errors"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/skywindow/skywindow/internal/alert"
	"github.com/skywindow/skywindow/internal/device"
	"github.com/skywindow/skywindow/internal/weather"
)

// 07:00 in Amsterdam, inside the morning report window.
var testNow = time.Date(2026, 6, 1, 5, 0, 0, 0, time.UTC)

func pleasant(at time.Time) weather.Sample {
	return weather.Sample{
		Time:                at.Unix(),
		Temperature:         weather.Float(65),
		ApparentTemperature: weather.Float(65),
		WindSpeed:           4,
		UVIndex:             2,
		Summary:             "Clear",
	}
}

// stubForecasts serves pleasant weather, failing for latitudes listed in fail.
type stubForecasts struct {
	mu    sync.Mutex
	calls int
	fail  map[float64]bool
}

func (s *stubForecasts) GetForecast(_ context.Context, lat, _ float64, units weather.UnitSystem) (*weather.Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail[lat] {
		return nil, weather.ErrProviderUnavailable
	}

	current := pleasant(testNow)
	hourly := make([]weather.Sample, 24)
	for i := range hourly {
		hourly[i] = pleasant(testNow.Add(time.Duration(i) * time.Hour))
	}
	return &weather.Forecast{Units: units, Currently: &current, Hourly: hourly}, nil
}

type sent struct {
	deviceID string
	note     alert.Notification
}

// recordingPublisher captures published notifications.
type recordingPublisher struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, d *device.Device, n *alert.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, sent{deviceID: d.ID, note: *n})
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

// failingDevices fails every List call.
type failingDevices struct {
	device.Repository
}

func (failingDevices) List(context.Context, device.ListOptions) (*device.ListResult, error) {
	return nil, errors.New("connection refused")
}

func seedDevice(repo device.Repository, id string, lat float64, alertsEnabled bool) {
	_, _ = repo.Upsert(context.Background(), &device.Device{
		ID:            id,
		Platform:      device.PlatformFCM,
		PushToken:     "token-" + id,
		Lat:           lat,
		Lon:           4.89,
		ActivityID:    "walk",
		Units:         weather.UnitsImperial,
		TimeZone:      "Europe/Amsterdam",
		AlertsEnabled: alertsEnabled,
	})
}
