package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Label values used when a request never resolved an activity or unit system.
const (
	LabelNone = "none"
)

// Labels carries what a request resolved to: the chi route pattern, the
// canonical activity, the unit system and the authenticated device. Tracing,
// metrics and access logs read it once the handler returns.
type Labels struct {
	mu       sync.Mutex
	activity string
	units    string
	deviceID string
}

type labelsKey struct{}

// withLabels returns r carrying a Labels holder, reusing one installed by an
// outer middleware.
func withLabels(r *http.Request) (*http.Request, *Labels) {
	if l, ok := r.Context().Value(labelsKey{}).(*Labels); ok {
		return r, l
	}
	l := &Labels{}
	return r.WithContext(context.WithValue(r.Context(), labelsKey{}, l)), l
}

// Annotate records the canonical activity and unit system for the request.
// Empty values leave the current label unchanged.
func Annotate(ctx context.Context, activity, units string) {
	l, ok := ctx.Value(labelsKey{}).(*Labels)
	if !ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if activity != "" {
		l.activity = activity
	}
	if units != "" {
		l.units = units
	}
}

func annotateDevice(ctx context.Context, deviceID string) {
	if l, ok := ctx.Value(labelsKey{}).(*Labels); ok {
		l.mu.Lock()
		l.deviceID = deviceID
		l.mu.Unlock()
	}
}

// Activity returns the recorded activity, or LabelNone.
func (l *Labels) Activity() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.activity == "" {
		return LabelNone
	}
	return l.activity
}

// Units returns the recorded unit system, or LabelNone.
func (l *Labels) Units() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.units == "" {
		return LabelNone
	}
	return l.units
}

// DeviceID returns the authenticated device, if any.
func (l *Labels) DeviceID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deviceID
}

// routePattern returns the matched chi route, or "unmatched" so unknown
// paths do not become metric labels.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
