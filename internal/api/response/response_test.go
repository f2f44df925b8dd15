package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywindow/skywindow/internal/api/middleware"
	"github.com/skywindow/skywindow/internal/api/models"
	"github.com/skywindow/skywindow/internal/api/response"
)

const requestID = "ios-1f2e3d"

func newRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, http.NoBody)
	return req.WithContext(middleware.WithRequestID(req.Context(), requestID))
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, newRequest(http.MethodGet, "/v1/activities"), http.StatusOK, models.ActivityList{})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, requestID, rec.Header().Get(middleware.RequestIDHeader))
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestJSON_WithoutRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody), http.StatusOK, nil)

	assert.Empty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Empty(t, rec.Body.String())
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Created(rec, newRequest(http.MethodPost, "/v1/devices/"), "/v1/devices/me", map[string]string{"deviceId": "dev_1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/v1/devices/me", rec.Header().Get("Location"))
	assert.JSONEq(t, `{"deviceId":"dev_1"}`, rec.Body.String())
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	response.NoContent(rec, newRequest(http.MethodDelete, "/v1/devices/me"))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, requestID, rec.Header().Get(middleware.RequestIDHeader))
	assert.Empty(t, rec.Body.String())
}

func TestProblems(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, *http.Request)
		path   string
		status int
		typ    string
		detail string
	}{
		{
			name:   "bad request",
			write:  func(w http.ResponseWriter, r *http.Request) { response.BadRequest(w, r, "invalid coordinates", nil) },
			path:   "/v1/forecast",
			status: http.StatusBadRequest,
			typ:    models.ProblemTypeValidation,
			detail: "invalid coordinates",
		},
		{
			name:   "not found",
			write:  func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "device not found") },
			path:   "/v1/devices/me",
			status: http.StatusNotFound,
			typ:    models.ProblemTypeNotFound,
			detail: "device not found",
		},
		{
			name:   "conflict",
			write:  func(w http.ResponseWriter, r *http.Request) { response.Conflict(w, r, "push token is registered to another device") },
			path:   "/v1/devices/me",
			status: http.StatusConflict,
			typ:    models.ProblemTypeConflict,
			detail: "push token is registered to another device",
		},
		{
			name:   "unprocessable",
			write:  func(w http.ResponseWriter, r *http.Request) { response.Unprocessable(w, r, "no analysis available") },
			path:   "/v1/analyze",
			status: http.StatusUnprocessableEntity,
			typ:    models.ProblemTypeUnprocessable,
			detail: "no analysis available",
		},
		{
			name:   "internal",
			write:  func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "failed to build forecast") },
			path:   "/v1/forecast",
			status: http.StatusInternalServerError,
			typ:    models.ProblemTypeInternal,
			detail: "failed to build forecast",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec, newRequest(http.MethodGet, tt.path))

			assert.Equal(t, tt.status, rec.Code)
			p := decodeProblem(t, rec)
			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, tt.detail, p.Detail)
			assert.Equal(t, tt.path, p.Instance)
			assert.Equal(t, requestID, p.TraceID)
		})
	}
}

func TestBadRequest_FieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	response.BadRequest(rec, newRequest(http.MethodGet, "/v1/forecast"), "invalid coordinates", []models.FieldError{
		{Field: "lat", Message: "must be a number", Code: "number"},
	})

	p := decodeProblem(t, rec)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "lat", p.Errors[0].Field)
}

func TestServiceUnavailable_RetryAfter(t *testing.T) {
	tests := []struct {
		name       string
		retryAfter time.Duration
		want       string
	}{
		{"whole seconds", 30 * time.Second, "30"},
		{"rounds up", 1500 * time.Millisecond, "2"},
		{"omitted", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			response.ServiceUnavailable(rec, newRequest(http.MethodGet, "/v1/forecast"), "weather data is temporarily unavailable", tt.retryAfter)

			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Retry-After"))
			assert.Equal(t, models.ProblemTypeUnavailable, decodeProblem(t, rec).Type)
		})
	}
}
