package models

import (
	"time"

	"github.com/skywindow/skywindow/internal/alert"
	"github.com/skywindow/skywindow/internal/report"
	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/schedule"
	"github.com/skywindow/skywindow/internal/summary"
	"github.com/skywindow/skywindow/internal/weather"
)

// ActivityList is the response for GET /v1/activities.
type ActivityList struct {
	Items []safety.ActivityThresholds `json:"items"`
}

// AnalyzeRequest scores one weather sample for an activity.
type AnalyzeRequest struct {
	Activity string          `json:"activity" validate:"required,max=32"`
	Units    string          `json:"units,omitempty" validate:"omitempty,oneof=us si uk2 ca imperial metric uk"`
	Sample   *weather.Sample `json:"sample"`
}

// DryWindowRequest searches a minute series for a dry stretch.
type DryWindowRequest struct {
	Units       string                 `json:"units,omitempty" validate:"omitempty,oneof=us si uk2 ca imperial metric uk"`
	Current     *weather.Sample        `json:"currently,omitempty"`
	Minutely    []weather.MinuteSample `json:"minutely" validate:"max=1440"`
	Threshold   *float64               `json:"threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
	MinDuration *int                   `json:"minDuration,omitempty" validate:"omitempty,min=1,max=120"`
}

// SlotsRequest finds the best slots in an hourly series. When Date is set only
// hours on that date in TimeZone are considered.
type SlotsRequest struct {
	Activity string           `json:"activity" validate:"required,max=32"`
	Units    string           `json:"units,omitempty" validate:"omitempty,oneof=us si uk2 ca imperial metric uk"`
	Hourly   []weather.Sample `json:"hourly" validate:"max=400"`
	Date     string           `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TimeZone string           `json:"timeZone,omitempty" validate:"omitempty,timezone"`
}

// SlotsResponse lists slots best first.
type SlotsResponse struct {
	Slots    []schedule.Slot `json:"slots"`
	TimeZone string          `json:"timeZone"`
	Date     string          `json:"date,omitempty"`
}

// SummaryRequest asks for the day narrative. At defaults to the current time.
type SummaryRequest struct {
	Activity string           `json:"activity" validate:"required,max=32"`
	Units    string           `json:"units,omitempty" validate:"omitempty,oneof=us si uk2 ca imperial metric uk"`
	Current  *weather.Sample  `json:"currently,omitempty"`
	Hourly   []weather.Sample `json:"hourly" validate:"max=400"`
	TimeZone string           `json:"timeZone,omitempty" validate:"omitempty,timezone"`
	At       *time.Time       `json:"at,omitempty"`
}

// SummaryResponse carries the narrative and the short current-conditions summary.
type SummaryResponse struct {
	Narrative string          `json:"narrative"`
	Summary   string          `json:"summary,omitempty"`
	Outlook   summary.Quality `json:"outlook,omitempty"`
}

// ForecastQuery holds the query parameters of GET /v1/forecast.
type ForecastQuery struct {
	Lat      float64 `validate:"gte=-90,lte=90"`
	Lon      float64 `validate:"gte=-180,lte=180"`
	Activity string  `validate:"required,max=32"`
	Units    string  `validate:"omitempty,oneof=us si uk2 ca imperial metric uk"`
	TimeZone string  `validate:"omitempty,timezone"`
}

// ForecastResponse is the provider-backed report for a location.
type ForecastResponse struct {
	Location Point `json:"location"`
	*report.Report
}

// AlertHistory lists the notifications sent to a device, newest first.
type AlertHistory struct {
	Items             []alert.Notification `json:"items"`
	LastMorningReport string               `json:"lastMorningReport,omitempty"`
}
