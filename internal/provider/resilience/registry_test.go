package resilience_test

import (
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywindow/skywindow/internal/provider/resilience"
)

func register(registry *resilience.Registry, names ...string) {
	for _, name := range names {
		cfg := resilience.DefaultClientConfig(name)
		cfg.Registry = registry
		_ = resilience.NewClient(cfg)
	}
}

func TestRegistry_RegisterAndUnregister(t *testing.T) {
	registry := resilience.NewRegistry()
	register(registry, "pirateweather")

	assert.Equal(t, 1, registry.ProviderCount())

	health := registry.GetHealth("pirateweather")
	require.NotNil(t, health)
	assert.Equal(t, "pirateweather", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.True(t, health.IsHealthy())

	registry.Unregister("pirateweather")
	assert.Equal(t, 0, registry.ProviderCount())
	assert.Nil(t, registry.GetHealth("pirateweather"))
}

func TestRegistry_RecordOutcomes(t *testing.T) {
	registry := resilience.NewRegistry()
	register(registry, "pirateweather")

	health := registry.GetHealth("pirateweather")
	require.NotNil(t, health)
	assert.Nil(t, health.LastSuccessAt)
	assert.Nil(t, health.LastFailureAt)

	registry.RecordSuccess("pirateweather")
	registry.RecordFailure("pirateweather", assert.AnError)

	health = registry.GetHealth("pirateweather")
	require.NotNil(t, health.LastSuccessAt)
	require.NotNil(t, health.LastFailureAt)
	assert.WithinDuration(t, time.Now(), *health.LastSuccessAt, time.Second)
	assert.WithinDuration(t, time.Now(), *health.LastFailureAt, time.Second)
	assert.Equal(t, assert.AnError.Error(), health.LastError)

	// Unknown providers are ignored.
	registry.RecordSuccess("nonexistent")
	registry.RecordFailure("nonexistent", assert.AnError)
	assert.Nil(t, registry.GetHealth("nonexistent"))
}

func TestRegistry_SortedListings(t *testing.T) {
	registry := resilience.NewRegistry()
	assert.Empty(t, registry.GetProviderNames())

	register(registry, "valkey", "pirateweather", "backup")

	assert.Equal(t, []string{"backup", "pirateweather", "valkey"}, registry.GetProviderNames())

	all := registry.GetAllHealth()
	require.Len(t, all, 3)
	assert.Equal(t, "backup", all[0].Name)
	assert.Equal(t, "valkey", all[2].Name)
}

func TestProviderHealth_States(t *testing.T) {
	tests := []struct {
		state      gobreaker.State
		isHealthy  bool
		isDegraded bool
		isUnhealth bool
	}{
		{gobreaker.StateClosed, true, false, false},
		{gobreaker.StateHalfOpen, false, true, false},
		{gobreaker.StateOpen, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			h := &resilience.ProviderHealth{CircuitState: tt.state}
			assert.Equal(t, tt.isHealthy, h.IsHealthy())
			assert.Equal(t, tt.isDegraded, h.IsDegraded())
			assert.Equal(t, tt.isUnhealth, h.IsUnhealthy())
		})
	}
}
