package device_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywindow/skywindow/internal/api/models"
	"github.com/skywindow/skywindow/internal/device"
)

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc := device.NewService(device.NewInMemoryRepository())

	req := &models.DeviceRegisterRequest{
		Platform: models.PushPlatformAPNS,
		Token:    "apns-token-0123456789abcd",
		Location: models.Point{Lat: 40.7, Lon: -74},
		Activity: " Run ",
		Units:    "si",
		TimeZone: "America/New_York",
	}

	dev, created, err := svc.Register(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, strings.HasPrefix(dev.ID, "dev_"))
	assert.Equal(t, "run", dev.Activity)
	assert.Equal(t, "si", dev.Units)
	assert.True(t, dev.AlertsEnabled)
	require.NotNil(t, dev.TokenLast4)
	assert.Equal(t, "abcd", *dev.TokenLast4)

	disabled := false
	req.AlertsEnabled = &disabled
	req.Units = ""
	again, created, err := svc.Register(ctx, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, dev.ID, again.ID)
	assert.Equal(t, "us", again.Units)
	assert.False(t, again.AlertsEnabled)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc := device.NewService(device.NewInMemoryRepository())

	dev, _, err := svc.Register(ctx, &models.DeviceRegisterRequest{
		Platform: models.PushPlatformFCM,
		Token:    "fcm-token-0123456789abcd",
		Activity: "run",
	})
	require.NoError(t, err)

	activity := "Dog_Walk"
	updated, err := svc.Update(ctx, dev.ID, &models.DeviceUpdateRequest{
		Activity: &activity,
		Location: &models.Point{Lat: 1, Lon: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "dog_walk", updated.Activity)
	assert.Equal(t, models.Point{Lat: 1, Lon: 2}, updated.Location)
	assert.Equal(t, "us", updated.Units)

	got, err := svc.Get(ctx, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, "dog_walk", got.Activity)

	_, err = svc.Update(ctx, "dev_missing", &models.DeviceUpdateRequest{})
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)
}

func TestService_Unregister(t *testing.T) {
	ctx := context.Background()
	svc := device.NewService(device.NewInMemoryRepository())

	dev, _, err := svc.Register(ctx, &models.DeviceRegisterRequest{
		Platform: models.PushPlatformFCM,
		Token:    "fcm-token-0123456789abcd",
		Activity: "run",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Unregister(ctx, dev.ID))
	assert.ErrorIs(t, svc.Unregister(ctx, dev.ID), device.ErrDeviceNotFound)

	_, err = svc.Get(ctx, dev.ID)
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)
}
