package device_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywindow/skywindow/internal/device"
	"github.com/skywindow/skywindow/internal/weather"
)

func newDevice(id, token string, enabled bool) *device.Device {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	return &device.Device{
		ID:            id,
		Platform:      device.PlatformFCM,
		PushToken:     token,
		Lat:           52.37,
		Lon:           4.89,
		ActivityID:    "run",
		Units:         weather.UnitsImperial,
		AlertsEnabled: enabled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestInMemoryRepository_UpsertKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	repo := device.NewInMemoryRepository()

	created, err := repo.Upsert(ctx, newDevice("dev_a", "token-aaaaaaaaaaaaaaaa", true))
	require.NoError(t, err)
	assert.True(t, created)

	again := newDevice("dev_b", "token-aaaaaaaaaaaaaaaa", true)
	again.ActivityID = "cycle"
	again.CreatedAt = again.CreatedAt.Add(time.Hour)
	created, err = repo.Upsert(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "dev_a", again.ID)

	got, err := repo.GetByToken(ctx, "token-aaaaaaaaaaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "dev_a", got.ID)
	assert.Equal(t, "cycle", got.ActivityID)
	assert.True(t, got.CreatedAt.Equal(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)))

	_, err = repo.Get(ctx, "dev_b")
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)
}

func TestInMemoryRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := device.NewInMemoryRepository()

	d := newDevice("dev_a", "token-aaaaaaaaaaaaaaaa", true)
	_, err := repo.Upsert(ctx, d)
	require.NoError(t, err)

	d.PushToken = "token-bbbbbbbbbbbbbbbb"
	require.NoError(t, repo.Update(ctx, d))

	_, err = repo.GetByToken(ctx, "token-aaaaaaaaaaaaaaaa")
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)
	got, err := repo.GetByToken(ctx, "token-bbbbbbbbbbbbbbbb")
	require.NoError(t, err)
	assert.Equal(t, "dev_a", got.ID)

	assert.ErrorIs(t, repo.Update(ctx, newDevice("missing", "x", true)), device.ErrDeviceNotFound)

	require.NoError(t, repo.Delete(ctx, "dev_a"))
	assert.ErrorIs(t, repo.Delete(ctx, "dev_a"), device.ErrDeviceNotFound)
	_, err = repo.GetByToken(ctx, "token-bbbbbbbbbbbbbbbb")
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)
}

func TestInMemoryRepository_UpdateRejectsTakenToken(t *testing.T) {
	ctx := context.Background()
	repo := device.NewInMemoryRepository()

	_, err := repo.Upsert(ctx, newDevice("dev_a", "token-aaaaaaaaaaaaaaaa", true))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, newDevice("dev_b", "token-bbbbbbbbbbbbbbbb", true))
	require.NoError(t, err)

	b, err := repo.Get(ctx, "dev_b")
	require.NoError(t, err)
	b.PushToken = "token-aaaaaaaaaaaaaaaa"
	assert.ErrorIs(t, repo.Update(ctx, b), device.ErrTokenInUse)

	owner, err := repo.GetByToken(ctx, "token-aaaaaaaaaaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "dev_a", owner.ID)
}

func TestInMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := device.NewInMemoryRepository()

	_, err := repo.Upsert(ctx, newDevice("dev_a", "token-aaaaaaaaaaaaaaaa", true))
	require.NoError(t, err)

	got, err := repo.Get(ctx, "dev_a")
	require.NoError(t, err)
	got.ActivityID = "mutated"

	again, err := repo.Get(ctx, "dev_a")
	require.NoError(t, err)
	assert.Equal(t, "run", again.ActivityID)
}

func TestInMemoryRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := device.NewInMemoryRepository()

	for i := 0; i < 5; i++ {
		_, err := repo.Upsert(ctx, newDevice(fmt.Sprintf("dev_%d", i), fmt.Sprintf("token-%d", i), i != 2))
		require.NoError(t, err)
	}

	t.Run("pages in id order", func(t *testing.T) {
		page, err := repo.List(ctx, device.ListOptions{Limit: 2})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "dev_0", page.Items[0].ID)
		assert.Equal(t, "dev_1", page.NextCursor)

		page, err = repo.List(ctx, device.ListOptions{Limit: 2, Cursor: page.NextCursor})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "dev_2", page.Items[0].ID)

		page, err = repo.List(ctx, device.ListOptions{Limit: 2, Cursor: page.NextCursor})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Empty(t, page.NextCursor)
	})

	t.Run("alerts enabled only", func(t *testing.T) {
		page, err := repo.List(ctx, device.ListOptions{AlertsEnabledOnly: true})
		require.NoError(t, err)
		require.Len(t, page.Items, 4)
		for _, d := range page.Items {
			assert.NotEqual(t, "dev_2", d.ID)
		}
	})
}

func TestDevice_Location(t *testing.T) {
	d := newDevice("dev_a", "token", true)
	assert.Equal(t, time.UTC, d.Location())

	d.TimeZone = "Not/AZone"
	assert.Equal(t, time.UTC, d.Location())

	d.TimeZone = "Europe/Amsterdam"
	assert.Equal(t, "Europe/Amsterdam", d.Location().String())

	assert.Equal(t, "oken", d.TokenLast4())
}
