package models

import "time"

// Health is the liveness and readiness payload.
type Health struct {
	Status    HealthStatus      `json:"status"`
	Time      time.Time         `json:"time"`
	Version   string            `json:"version,omitempty"`
	BuildTime string            `json:"buildTime,omitempty"`
	Failures  map[string]string `json:"failures,omitempty"`
}

// SystemStatus reports backing stores, forecast providers and the forecast
// cache.
type SystemStatus struct {
	Status       HealthStatus       `json:"status"`
	Time         time.Time          `json:"time"`
	Dependencies []DependencyStatus `json:"dependencies"`
	Providers    []ProviderStatus   `json:"providers"`
	Forecasts    ForecastCache      `json:"forecasts"`
	Activities   int                `json:"activities"`
}

// DependencyStatus is the outcome of one dependency check.
type DependencyStatus struct {
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	LatencyMs int64        `json:"latencyMs"`
	Error     string       `json:"error,omitempty"`
}

// ProviderStatus is the circuit state of a forecast provider.
type ProviderStatus struct {
	Name                string       `json:"name"`
	Status              HealthStatus `json:"status"`
	Circuit             string       `json:"circuit"`
	ConsecutiveFailures uint32       `json:"consecutiveFailures"`
	LastSuccessAt       *time.Time   `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *time.Time   `json:"lastFailureAt,omitempty"`
	LastError           string       `json:"lastError,omitempty"`
}

// ForecastCache summarizes the in-process forecast cache.
type ForecastCache struct {
	Provider     string `json:"provider"`
	Entries      int    `json:"entries"`
	FreshEntries int    `json:"freshEntries"`
	SharedCache  bool   `json:"sharedCache"`
}
