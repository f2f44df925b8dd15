// Package alert decides when a device should be notified about changing
// conditions, and keeps the per-device state those decisions depend on.
package alert

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrStateNotFound = errors.New("alert state not found")
)

// Kind identifies what triggered a notification.
type Kind string

const (
	KindMorningReport Kind = "morning_report"
	KindRainStarting  Kind = "rain_starting"
	KindRainStopped   Kind = "rain_stopped"
	KindDangerousCold Kind = "dangerous_cold"
	KindWindowSoon    Kind = "window_soon"
)

// Title returns the notification heading for the kind.
func (k Kind) Title() string {
	switch k {
	case KindMorningReport:
		return "Daily Report"
	case KindWindowSoon:
		return "Best Time Alert"
	default:
		return "Weather Alert"
	}
}

// Reading is the last observed current conditions for a device.
type Reading struct {
	PrecipProbability float64   `json:"precip"`
	TemperatureF      float64   `json:"tempF"`
	Summary           string    `json:"summary,omitempty"`
	ObservedAt        time.Time `json:"observedAt"`
}

// Notification is one message sent to a device.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// State is everything the engine needs to remember between evaluations.
type State struct {
	DeviceID string

	// LastReading is nil before the first evaluation.
	LastReading *Reading

	// LastMorningReport is the local date (YYYY-MM-DD) of the last morning report.
	LastMorningReport string

	// LastWindowStart is the start of the slot most recently announced.
	LastWindowStart *time.Time

	// History holds sent notifications, newest first.
	History []Notification

	UpdatedAt time.Time
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	out := s
	if s.LastReading != nil {
		r := *s.LastReading
		out.LastReading = &r
	}
	if s.LastWindowStart != nil {
		t := *s.LastWindowStart
		out.LastWindowStart = &t
	}
	out.History = append([]Notification(nil), s.History...)
	return out
}

// Record prepends n to the history, keeping at most limit entries.
func (s *State) Record(n Notification, limit int) {
	history := make([]Notification, 0, len(s.History)+1)
	history = append(history, n)
	history = append(history, s.History...)
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	s.History = history
}
