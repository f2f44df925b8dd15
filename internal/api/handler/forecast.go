package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skywindow/skywindow/internal/api/models"
	"github.com/skywindow/skywindow/internal/api/response"
	"github.com/skywindow/skywindow/internal/report"
	"github.com/skywindow/skywindow/internal/weather"
)

// providerRetryAfter is the Retry-After sent while the provider is down.
const providerRetryAfter = 30 * time.Second

// ForecastHandler serves provider-backed reports.
type ForecastHandler struct {
	weather *weather.Service
	reports *report.Builder
	logger  zerolog.Logger
	now     func() time.Time
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(weatherService *weather.Service, reports *report.Builder, logger zerolog.Logger) *ForecastHandler {
	return &ForecastHandler{
		weather: weatherService,
		reports: reports,
		logger:  logger,
		now:     time.Now,
	}
}

// GetForecast handles GET /v1/forecast?lat=&lon=&activity=&units=&tz=.
func (h *ForecastHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var fieldErrs []models.FieldError
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "lat", Message: "must be a number", Code: "number"})
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "lon", Message: "must be a number", Code: "number"})
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", fieldErrs)
		return
	}

	query := models.ForecastQuery{
		Lat:      lat,
		Lon:      lon,
		Activity: strings.TrimSpace(q.Get("activity")),
		Units:    q.Get("units"),
		TimeZone: q.Get("tz"),
	}
	if !check(w, r, &query) {
		return
	}

	units := weather.ParseUnitSystem(query.Units)
	annotate(r, h.reports.Table(), query.Activity, units)

	forecast, err := h.weather.GetForecast(r.Context(), query.Lat, query.Lon, units)
	if err != nil {
		switch {
		case errors.Is(err, weather.ErrInvalidCoordinates):
			response.BadRequest(w, r, "invalid coordinates", nil)
		case errors.Is(err, weather.ErrProviderUnavailable):
			h.logger.Warn().Err(err).Msg("forecast unavailable")
			response.ServiceUnavailable(w, r, "weather data is temporarily unavailable", providerRetryAfter)
		default:
			h.logger.Error().Err(err).Msg("forecast failed")
			response.InternalError(w, r, "failed to build forecast")
		}
		return
	}

	now := h.now().In(loadLocation(query.TimeZone, forecast.Location()))
	response.JSON(w, r, http.StatusOK, models.ForecastResponse{
		Location: models.Point{Lat: query.Lat, Lon: query.Lon},
		Report:   h.reports.Build(forecast, query.Activity, now),
	})
}
