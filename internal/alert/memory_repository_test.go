package alert_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywindow/skywindow/internal/alert"
)

func TestInMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := alert.NewInMemoryRepository()

	_, err := repo.Get(ctx, "dev-1")
	assert.ErrorIs(t, err, alert.ErrStateNotFound)

	start := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	state := &alert.State{
		DeviceID:          "dev-1",
		LastReading:       &alert.Reading{PrecipProbability: 0.4, TemperatureF: 50},
		LastMorningReport: "2026-06-01",
		LastWindowStart:   &start,
		History:           []alert.Notification{{ID: "n1", Kind: alert.KindRainStarting}},
	}
	require.NoError(t, repo.Save(ctx, state))

	// Mutating the saved value must not leak into the repository.
	state.History[0].ID = "mutated"
	state.LastReading.TemperatureF = 0

	got, err := repo.Get(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, "n1", got.History[0].ID)
	assert.Equal(t, 50.0, got.LastReading.TemperatureF)
	assert.Equal(t, "2026-06-01", got.LastMorningReport)

	require.NoError(t, repo.Delete(ctx, "dev-1"))
	assert.ErrorIs(t, repo.Delete(ctx, "dev-1"), alert.ErrStateNotFound)
}
