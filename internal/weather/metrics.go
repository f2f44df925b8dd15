package weather

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/skywindow/skywindow/internal/telemetry"
)

// Metrics is an OpenTelemetry Recorder.
type Metrics struct {
	fetchDuration metric.Float64Histogram
	fetches       metric.Int64Counter
	cacheLookups  metric.Int64Counter
}

var _ Recorder = (*Metrics)(nil)

// NewMetrics creates the forecast instruments on mp. A nil mp uses the global
// meter provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(telemetry.Scope)

	fetchDuration, err := meter.Float64Histogram(
		"skywindow.forecast.fetch.duration",
		metric.WithDescription("Duration of forecast provider calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	fetches, err := meter.Int64Counter(
		"skywindow.forecast.fetches",
		metric.WithDescription("Forecast provider calls by outcome"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"skywindow.forecast.cache.lookups",
		metric.WithDescription("Forecast cache lookups by tier and result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		fetchDuration: fetchDuration,
		fetches:       fetches,
		cacheLookups:  cacheLookups,
	}, nil
}

// RecordFetch implements Recorder.
func (m *Metrics) RecordFetch(provider string, units UnitSystem, d time.Duration, outcome FetchOutcome) {
	attrs := metric.WithAttributes(
		attribute.String("skywindow.provider", provider),
		attribute.String("skywindow.units", string(units)),
		attribute.String("skywindow.outcome", string(outcome)),
	)
	ctx := context.Background()
	m.fetchDuration.Record(ctx, d.Seconds(), attrs)
	m.fetches.Add(ctx, 1, attrs)
}

// RecordCacheLookup implements Recorder.
func (m *Metrics) RecordCacheLookup(tier CacheTier, units UnitSystem, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("skywindow.cache.tier", string(tier)),
		attribute.String("skywindow.units", string(units)),
		attribute.String("skywindow.cache.result", result),
	))
}
