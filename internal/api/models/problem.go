package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 problem+json body. Every API error uses it.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError is one failed query parameter or body field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

const problemBase = "https://api.skywindow.app/problems/"

// Problem types.
const (
	ProblemTypeValidation       = problemBase + "validation-error"
	ProblemTypeUnauthorized     = problemBase + "unauthorized"
	ProblemTypeTLSRequired      = problemBase + "tls-required"
	ProblemTypeNotFound         = problemBase + "not-found"
	ProblemTypeConflict         = problemBase + "conflict"
	ProblemTypeUnsupportedMedia = problemBase + "unsupported-media-type"
	ProblemTypeUnprocessable    = problemBase + "unprocessable"
	ProblemTypeTooManyRequests  = problemBase + "too-many-requests"
	ProblemTypeInternal         = problemBase + "internal-error"
	ProblemTypeUnavailable      = problemBase + "service-unavailable"
)

var problemTitles = map[string]string{
	ProblemTypeValidation:       "Validation error",
	ProblemTypeUnauthorized:     "Unauthorized",
	ProblemTypeTLSRequired:      "TLS required",
	ProblemTypeNotFound:         "Not found",
	ProblemTypeConflict:         "Conflict",
	ProblemTypeUnsupportedMedia: "Unsupported media type",
	ProblemTypeUnprocessable:    "Weather data cannot be scored",
	ProblemTypeTooManyRequests:  "Too many requests",
	ProblemTypeInternal:         "Internal server error",
	ProblemTypeUnavailable:      "Service unavailable",
}

func newProblem(problemType string, status int, traceID, detail string) *Problem {
	title, ok := problemTitles[problemType]
	if !ok {
		title = http.StatusText(status)
	}
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		Detail:  detail,
		TraceID: traceID,
	}
}

// Write sends p with its status. The request ID header is echoed when set.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest is a 400 listing the fields that failed validation.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	p := newProblem(ProblemTypeValidation, http.StatusBadRequest, traceID, detail)
	p.Errors = errors
	return p
}

// NewUnauthorized is a 401 for a missing or rejected device token.
func NewUnauthorized(traceID, detail string) *Problem {
	return newProblem(ProblemTypeUnauthorized, http.StatusUnauthorized, traceID, detail)
}

// NewTLSRequired is a 403 for plain HTTP behind a TLS-terminating proxy.
func NewTLSRequired(traceID string) *Problem {
	return newProblem(ProblemTypeTLSRequired, http.StatusForbidden, traceID, "use https")
}

func NewNotFound(traceID, detail string) *Problem {
	return newProblem(ProblemTypeNotFound, http.StatusNotFound, traceID, detail)
}

func NewConflict(traceID, detail string) *Problem {
	return newProblem(ProblemTypeConflict, http.StatusConflict, traceID, detail)
}

// NewUnsupportedMediaType is a 415 for request bodies that are not JSON.
func NewUnsupportedMediaType(traceID string) *Problem {
	return newProblem(ProblemTypeUnsupportedMedia, http.StatusUnsupportedMediaType, traceID,
		"send weather data as application/json")
}

// NewUnprocessable is a 422 for weather data that decoded but yields no
// analysis.
func NewUnprocessable(traceID, detail string) *Problem {
	return newProblem(ProblemTypeUnprocessable, http.StatusUnprocessableEntity, traceID, detail)
}

func NewTooManyRequests(traceID, detail string) *Problem {
	return newProblem(ProblemTypeTooManyRequests, http.StatusTooManyRequests, traceID, detail)
}

func NewInternalError(traceID, detail string) *Problem {
	return newProblem(ProblemTypeInternal, http.StatusInternalServerError, traceID, detail)
}

// NewServiceUnavailable is a 503, used when the forecast provider is down
// and no stale forecast can be served.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return newProblem(ProblemTypeUnavailable, http.StatusServiceUnavailable, traceID, detail)
}
