package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/skywindow/skywindow/internal/telemetry"
)

// Span attributes set from request labels.
const (
	AttrActivity  = attribute.Key("skywindow.activity")
	AttrUnits     = attribute.Key("skywindow.units")
	AttrDeviceID  = attribute.Key("skywindow.device.id")
	AttrRequestID = attribute.Key("skywindow.request.id")
)

// Tracing starts a server span per request, continuing any incoming trace
// context. The span is named after the matched route once routing is done.
// Query strings carry coordinates and are never recorded.
func Tracing(next http.Handler) http.Handler {
	tracer := otel.Tracer(telemetry.Scope)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, labels := withLabels(r)
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(ctx, r.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.scheme", scheme(r)),
				attribute.String("user_agent.original", r.UserAgent()),
			),
		)
		defer span.End()

		if id := GetRequestID(ctx); id != "" {
			span.SetAttributes(AttrRequestID.String(id))
		}

		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r.WithContext(ctx))

		route := routePattern(r)
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", rec.status),
			AttrActivity.String(labels.Activity()),
			AttrUnits.String(labels.Units()),
		)
		if id := labels.DeviceID(); id != "" {
			span.SetAttributes(AttrDeviceID.String(id))
		}

		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if s := r.Header.Get("X-Forwarded-Proto"); s != "" {
		return s
	}
	return "http"
}
