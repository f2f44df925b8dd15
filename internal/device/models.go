// Package device provides device subscriptions for weather alerts and push notifications.
package device

import (
	"errors"
	"time"

	"github.com/skywindow/skywindow/internal/weather"
)

// Repository errors.
var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrTokenInUse     = errors.New("push token registered to another device")
)

// Platform represents a push notification platform.
type Platform string

const (
	PlatformFCM  Platform = "FCM"
	PlatformAPNS Platform = "APNS"
)

// Device is a registered push token together with the place and activity it follows.
type Device struct {
	ID            string
	Platform      Platform
	PushToken     string
	Lat           float64
	Lon           float64
	ActivityID    string
	Units         weather.UnitSystem
	TimeZone      string
	AlertsEnabled bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TokenLast4 returns the last 4 characters of the push token for display purposes.
func (d *Device) TokenLast4() string {
	if len(d.PushToken) < 4 {
		return d.PushToken
	}
	return d.PushToken[len(d.PushToken)-4:]
}

// Location resolves the device time zone, falling back to UTC.
func (d *Device) Location() *time.Location {
	if d.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ListOptions contains options for listing devices.
type ListOptions struct {
	Limit int
	// Cursor is the last ID of the previous page.
	Cursor string
	// AlertsEnabledOnly skips devices that opted out of alerts.
	AlertsEnabledOnly bool
}

// ListResult contains the result of listing devices.
type ListResult struct {
	Items      []*Device
	NextCursor string
}

const defaultListLimit = 100
