package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/skywindow/skywindow/internal/alert"
	"github.com/skywindow/skywindow/internal/api/models"
	"github.com/skywindow/skywindow/internal/api/response"
	"github.com/skywindow/skywindow/internal/auth"
	"github.com/skywindow/skywindow/internal/device"
)

// DeviceHandler handles device registration and the alert subscription of
// the authenticated device.
type DeviceHandler struct {
	devices *device.Service
	alerts  alert.Repository
	tokens  *auth.JWTService
	logger  zerolog.Logger
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(devices *device.Service, alerts alert.Repository, tokens *auth.JWTService, logger zerolog.Logger) *DeviceHandler {
	return &DeviceHandler{
		devices: devices,
		alerts:  alerts,
		tokens:  tokens,
		logger:  logger,
	}
}

// RegisterDevice handles POST /v1/devices - register or refresh a device.
// Returns 201 for a new device and 200 when the push token was already known.
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var input models.DeviceRegisterRequest
	if !decode(w, r, &input) {
		return
	}

	dev, created, err := h.devices.Register(r.Context(), &input)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to register device")
		response.InternalError(w, r, "failed to register device")
		return
	}

	token, _, err := h.tokens.GenerateDeviceToken(dev.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("device_id", dev.ID).Msg("failed to issue device token")
		response.InternalError(w, r, "failed to issue device token")
		return
	}

	registration := models.DeviceRegistration{
		Device:      *dev,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokens.TTL().Seconds()),
	}

	if created {
		response.Created(w, r, "/v1/devices/me", registration)
		return
	}
	response.JSON(w, r, http.StatusOK, registration)
}

// GetDevice handles GET /v1/devices/me.
func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	dev, err := h.devices.Get(r.Context(), GetDeviceID(r.Context()))
	if err != nil {
		h.writeError(w, r, err, "failed to load device")
		return
	}
	response.JSON(w, r, http.StatusOK, dev)
}

// UpdateDevice handles PUT /v1/devices/me.
func (h *DeviceHandler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	var input models.DeviceUpdateRequest
	if !decode(w, r, &input) {
		return
	}

	dev, err := h.devices.Update(r.Context(), GetDeviceID(r.Context()), &input)
	if err != nil {
		h.writeError(w, r, err, "failed to update device")
		return
	}
	response.JSON(w, r, http.StatusOK, dev)
}

// DeleteDevice handles DELETE /v1/devices/me. Alert state goes with the device.
func (h *DeviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := GetDeviceID(r.Context())

	if err := h.devices.Unregister(r.Context(), deviceID); err != nil {
		h.writeError(w, r, err, "failed to delete device")
		return
	}
	if err := h.alerts.Delete(r.Context(), deviceID); err != nil && !errors.Is(err, alert.ErrStateNotFound) {
		h.logger.Warn().Err(err).Str("device_id", deviceID).Msg("failed to delete alert state")
	}

	response.NoContent(w, r)
}

// ListAlerts handles GET /v1/devices/me/alerts.
func (h *DeviceHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	deviceID := GetDeviceID(r.Context())

	if _, err := h.devices.Get(r.Context(), deviceID); err != nil {
		h.writeError(w, r, err, "failed to load device")
		return
	}

	history := models.AlertHistory{Items: []alert.Notification{}}
	state, err := h.alerts.Get(r.Context(), deviceID)
	switch {
	case err == nil:
		history.Items = append(history.Items, state.History...)
		history.LastMorningReport = state.LastMorningReport
	case errors.Is(err, alert.ErrStateNotFound):
	default:
		h.logger.Error().Err(err).Str("device_id", deviceID).Msg("failed to load alert state")
		response.InternalError(w, r, "failed to load alerts")
		return
	}

	response.JSON(w, r, http.StatusOK, history)
}

func (h *DeviceHandler) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, device.ErrDeviceNotFound):
		response.NotFound(w, r, "device not found")
		return
	case errors.Is(err, device.ErrTokenInUse):
		response.Conflict(w, r, "push token is registered to another device")
		return
	}
	h.logger.Error().Err(err).Str("device_id", GetDeviceID(r.Context())).Msg(msg)
	response.InternalError(w, r, msg)
}
