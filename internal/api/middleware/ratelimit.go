package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/skywindow/skywindow/internal/api/models"
)

// RateLimits are request budgets per window for each route group.
type RateLimits struct {
	// Register bounds device registrations per client IP. Default: 10
	Register int

	// Forecast bounds provider-backed forecast reports per client IP. Default: 30
	Forecast int

	// Scoring bounds the scoring endpoints per client IP. Default: 100
	Scoring int

	// Device bounds device endpoints per authenticated device. Default: 100
	Device int

	// Window is the budget period. Default: 1m
	Window time.Duration
}

// DefaultRateLimits returns the production budgets.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Register: 10,
		Forecast: 30,
		Scoring:  100,
		Device:   100,
		Window:   time.Minute,
	}
}

// WithDefaults fills zero fields from DefaultRateLimits.
func (l RateLimits) WithDefaults() RateLimits {
	d := DefaultRateLimits()
	if l.Register <= 0 {
		l.Register = d.Register
	}
	if l.Forecast <= 0 {
		l.Forecast = d.Forecast
	}
	if l.Scoring <= 0 {
		l.Scoring = d.Scoring
	}
	if l.Device <= 0 {
		l.Device = d.Device
	}
	if l.Window <= 0 {
		l.Window = d.Window
	}
	return l
}

// PerIP limits requests per client IP. Mount after chi's RealIP.
func PerIP(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitExceeded(window)),
	)
}

// PerDevice limits requests per authenticated device, falling back to the
// client IP. Mount after Auth.
func PerDevice(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if id := GetDeviceID(r.Context()); id != "" {
				return "device:" + id, nil
			}
			return httprate.KeyByRealIP(r)
		}),
		httprate.WithLimitHandler(limitExceeded(window)),
	)
}

// limitExceeded writes a 429 problem. httprate does not expose the reset
// time, so Retry-After is the full window.
func limitExceeded(window time.Duration) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(window.Round(time.Second) / time.Second))
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", retryAfter)
		problem := models.NewTooManyRequests(GetRequestID(r.Context()), "rate limit exceeded, retry after "+retryAfter+"s")
		problem.Instance = r.URL.Path
		problem.Write(w)
	}
}
