// Package worker runs the background alert evaluation for SkyWindow devices.
package worker

import (
	"time"
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// EvaluationConfig holds configuration for the alert evaluation job.
type EvaluationConfig struct {
	// Interval is how often all devices are evaluated.
	// Default: 15 minutes
	Interval time.Duration

	// Concurrency is the number of devices evaluated at once.
	// Default: 8
	Concurrency int

	// DeviceTimeout bounds the evaluation of a single device.
	// Default: 20 seconds
	DeviceTimeout time.Duration

	// PageSize is the number of devices loaded per repository page.
	// Default: 100
	PageSize int

	// HealthProbe is the location fetched by the health_check job.
	// Default: Amsterdam Centraal
	HealthProbe Point
}

// DefaultEvaluationConfig returns the default evaluation configuration.
func DefaultEvaluationConfig() EvaluationConfig {
	return EvaluationConfig{
		Interval:      15 * time.Minute,
		Concurrency:   8,
		DeviceTimeout: 20 * time.Second,
		PageSize:      100,
		HealthProbe:   Point{Lat: 52.3676, Lon: 4.9041},
	}
}

func (c EvaluationConfig) withDefaults() EvaluationConfig {
	d := DefaultEvaluationConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.DeviceTimeout <= 0 {
		c.DeviceTimeout = d.DeviceTimeout
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.HealthProbe == (Point{}) {
		c.HealthProbe = d.HealthProbe
	}
	return c
}
