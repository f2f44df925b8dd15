// Package response writes JSON and problem+json bodies for the API handlers.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/skywindow/skywindow/internal/api/middleware"
	"github.com/skywindow/skywindow/internal/api/models"
)

// JSON writes data as the response body with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, r, status, "", data)
}

// Created writes a 201 with a Location header.
func Created(w http.ResponseWriter, r *http.Request, location string, data any) {
	write(w, r, http.StatusCreated, location, data)
}

// NoContent writes a 204.
func NoContent(w http.ResponseWriter, r *http.Request) {
	echoRequestID(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func write(w http.ResponseWriter, r *http.Request, status int, location string, data any) {
	echoRequestID(w, r)
	w.Header().Set("Content-Type", middleware.ContentType)
	if location != "" {
		w.Header().Set("Location", location)
	}
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func echoRequestID(w http.ResponseWriter, r *http.Request) {
	if id := middleware.GetRequestID(r.Context()); id != "" {
		w.Header().Set(middleware.RequestIDHeader, id)
	}
}

// Error writes problem with the request path as its instance.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// BadRequest writes a 400. fields lists the query or body fields that failed
// validation and may be nil.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, fields []models.FieldError) {
	Error(w, r, models.NewBadRequest(middleware.GetRequestID(r.Context()), detail, fields))
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewNotFound(middleware.GetRequestID(r.Context()), detail))
}

// Conflict writes a 409.
func Conflict(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewConflict(middleware.GetRequestID(r.Context()), detail))
}

// Unprocessable writes a 422 for weather data that parsed but cannot be scored.
func Unprocessable(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewUnprocessable(middleware.GetRequestID(r.Context()), detail))
}

// InternalError writes a 500. detail is shown to clients and must not carry
// the underlying error.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewInternalError(middleware.GetRequestID(r.Context()), detail))
}

// ServiceUnavailable writes a 503. A positive retryAfter is sent as
// Retry-After in whole seconds, rounded up.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string, retryAfter time.Duration) {
	if retryAfter > 0 {
		secs := int((retryAfter + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	Error(w, r, models.NewServiceUnavailable(middleware.GetRequestID(r.Context()), detail))
}
