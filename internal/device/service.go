package device

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skywindow/skywindow/internal/api/models"
	"github.com/skywindow/skywindow/internal/weather"
)

// Service provides device operations.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// NewService creates a new device service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return "dev_" + uuid.NewString() },
	}
}

// Get retrieves a device by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Device, error) {
	device, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := toAPIDevice(device)
	return &result, nil
}

// Register registers or refreshes a device subscription keyed by its push token.
// Returns the device and whether it was newly created.
func (s *Service) Register(ctx context.Context, input *models.DeviceRegisterRequest) (*models.Device, bool, error) {
	now := s.now().UTC()

	alertsEnabled := true
	if input.AlertsEnabled != nil {
		alertsEnabled = *input.AlertsEnabled
	}

	device := &Device{
		ID:            s.newID(),
		Platform:      Platform(input.Platform),
		PushToken:     input.Token,
		Lat:           input.Location.Lat,
		Lon:           input.Location.Lon,
		ActivityID:    normalizeActivity(input.Activity),
		Units:         weather.ParseUnitSystem(input.Units),
		TimeZone:      input.TimeZone,
		AlertsEnabled: alertsEnabled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.Upsert(ctx, device)
	if err != nil {
		return nil, false, err
	}

	result := toAPIDevice(device)
	return &result, created, nil
}

// Update applies a partial update to a device subscription.
func (s *Service) Update(ctx context.Context, id string, input *models.DeviceUpdateRequest) (*models.Device, error) {
	device, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Token != nil {
		device.PushToken = *input.Token
	}
	if input.Location != nil {
		device.Lat = input.Location.Lat
		device.Lon = input.Location.Lon
	}
	if input.Activity != nil {
		device.ActivityID = normalizeActivity(*input.Activity)
	}
	if input.Units != nil {
		device.Units = weather.ParseUnitSystem(*input.Units)
	}
	if input.TimeZone != nil {
		device.TimeZone = *input.TimeZone
	}
	if input.AlertsEnabled != nil {
		device.AlertsEnabled = *input.AlertsEnabled
	}
	device.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, device); err != nil {
		return nil, err
	}

	result := toAPIDevice(device)
	return &result, nil
}

// Unregister removes a device registration.
func (s *Service) Unregister(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func normalizeActivity(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func toAPIDevice(d *Device) models.Device {
	tokenLast4 := d.TokenLast4()
	return models.Device{
		ID:            d.ID,
		Platform:      models.PushPlatform(d.Platform),
		TokenLast4:    &tokenLast4,
		Location:      models.Point{Lat: d.Lat, Lon: d.Lon},
		Activity:      d.ActivityID,
		Units:         string(d.Units),
		TimeZone:      d.TimeZone,
		AlertsEnabled: d.AlertsEnabled,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
