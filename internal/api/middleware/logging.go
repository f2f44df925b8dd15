package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger writes one access log line per request with the route, the activity
// and units the request resolved to, and the device when authenticated.
// Server errors log at error level and client errors at warn; ops probes log
// at debug so load balancer checks stay out of the default output.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			r, labels := withLabels(r)
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			route := routePattern(r)
			event := accessEvent(log, route, rec.status)
			if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
				event = event.Str("trace_id", sc.TraceID().String())
			}
			if id := labels.DeviceID(); id != "" {
				event = event.Str("device_id", id)
			}

			event.
				Str("request_id", GetRequestID(r.Context())).
				Str("method", r.Method).
				Str("route", route).
				Str("activity", labels.Activity()).
				Str("units", labels.Units()).
				Int("status", rec.status).
				Int64("bytes", rec.written).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}

func accessEvent(log zerolog.Logger, route string, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return log.Error()
	case status >= http.StatusBadRequest:
		return log.Warn()
	case strings.HasPrefix(route, "/v1/ops/"):
		return log.Debug()
	default:
		return log.Info()
	}
}
