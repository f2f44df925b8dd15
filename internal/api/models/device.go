package models

import "time"

// Device represents a registered push notification device and its alert subscription.
type Device struct {
	ID            string       `json:"id"`
	Platform      PushPlatform `json:"platform"`
	TokenLast4    *string      `json:"tokenLast4,omitempty"`
	Location      Point        `json:"location"`
	Activity      string       `json:"activity"`
	Units         string       `json:"units"`
	TimeZone      string       `json:"timeZone"`
	AlertsEnabled bool         `json:"alertsEnabled"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// DeviceRegisterRequest is the request body for registering a device.
type DeviceRegisterRequest struct {
	Platform      PushPlatform `json:"platform" validate:"required,oneof=FCM APNS"`
	Token         string       `json:"token" validate:"required,min=16"`
	Location      Point        `json:"location"`
	Activity      string       `json:"activity" validate:"required,max=32"`
	Units         string       `json:"units,omitempty" validate:"omitempty,oneof=us si uk2 ca"`
	TimeZone      string       `json:"timeZone,omitempty" validate:"omitempty,timezone"`
	AlertsEnabled *bool        `json:"alertsEnabled,omitempty"`
}

// DeviceUpdateRequest is the request body for changing a device subscription.
// Omitted fields keep their current value.
type DeviceUpdateRequest struct {
	Token         *string `json:"token,omitempty" validate:"omitempty,min=16"`
	Location      *Point  `json:"location,omitempty"`
	Activity      *string `json:"activity,omitempty" validate:"omitempty,min=1,max=32"`
	Units         *string `json:"units,omitempty" validate:"omitempty,oneof=us si uk2 ca"`
	TimeZone      *string `json:"timeZone,omitempty" validate:"omitempty,timezone"`
	AlertsEnabled *bool   `json:"alertsEnabled,omitempty"`
}

// DeviceRegistration is returned when a device registers. The access token
// authenticates subsequent /v1/devices/me calls.
type DeviceRegistration struct {
	Device      Device `json:"device"`
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}
