// Package models provides request and response models for the SkyWindow API.
package models

// Point is a forecast location.
type Point struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// PushPlatform is where a device receives alerts.
type PushPlatform string

const (
	PushPlatformFCM  PushPlatform = "FCM"
	PushPlatformAPNS PushPlatform = "APNS"
)

// HealthStatus is the state of the service or one of its dependencies.
// DEGRADED means forecasts may be served stale while a provider circuit is
// not closed.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)
