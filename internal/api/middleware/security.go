package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/skywindow/skywindow/internal/api/models"
)

// SecurityConfig controls response hardening.
type SecurityConfig struct {
	// RequireTLS rejects requests a proxy reports as plain HTTP.
	RequireTLS bool

	// HSTSMaxAge is the Strict-Transport-Security lifetime. Zero omits the header.
	HSTSMaxAge time.Duration
}

// DefaultSecurityConfig sends a one year HSTS header and accepts plain HTTP.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{HSTSMaxAge: 365 * 24 * time.Hour}
}

// Security sets response headers for a JSON-only API and, when configured,
// rejects requests forwarded over plain HTTP with 403. Responses carry
// locations and device data, so nothing is cacheable by intermediaries.
func Security(cfg SecurityConfig) func(http.Handler) http.Handler {
	hsts := ""
	if cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.FormatInt(int64(cfg.HSTSMaxAge/time.Second), 10) + "; includeSubDomains"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cache-Control", "no-store")
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}

			if cfg.RequireTLS && r.TLS == nil {
				if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" && proto != "https" {
					problem := models.NewTLSRequired(GetRequestID(r.Context()))
					problem.Instance = r.URL.Path
					problem.Write(w)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
