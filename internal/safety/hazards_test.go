package safety_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/weather"
)

func TestAssessTemperature(t *testing.T) {
	tests := []struct {
		name  string
		temp  float64
		feels float64
		level safety.Level
		label string
	}{
		{"frigid", 5, 0, safety.LevelUnsafe, "Dangerously Cold"},
		{"wind chill", 20, 4, safety.LevelUnsafe, "Dangerously Cold"},
		{"scorching", 102, 100, safety.LevelUnsafe, "Dangerously Hot"},
		{"muggy", 98, 106, safety.LevelUnsafe, "Dangerously Hot"},
		{"freezing", 28, 22, safety.LevelWarning, "Freezing Conditions"},
		{"hot", 93, 94, safety.LevelWarning, "Heat Advisory"},
		{"mild", 65, 65, safety.LevelSafe, "Safe Temp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := safety.AssessTemperature(&weather.NormalizedSample{TemperatureF: tt.temp, ApparentTemperatureF: tt.feels})
			require.NotNil(t, v)
			assert.Equal(t, tt.level, v.Level)
			assert.Equal(t, tt.label, v.Label)
			assert.Equal(t, tt.level.Color(), v.Color)
		})
	}

	assert.Nil(t, safety.AssessTemperature(nil))
}

func TestAssessDogWalk(t *testing.T) {
	tests := []struct {
		temp  float64
		level safety.Level
		label string
	}{
		{90, safety.LevelUnsafe, "Pavement Too Hot"},
		{85, safety.LevelSafe, "Safe for Paws"},
		{40, safety.LevelSafe, "Safe for Paws"},
		{10, safety.LevelWarning, "Too Cold for Paws"},
	}

	for _, tt := range tests {
		v := safety.AssessDogWalk(&weather.NormalizedSample{TemperatureF: tt.temp})
		require.NotNil(t, v)
		assert.Equal(t, tt.level, v.Level, "%v°F", tt.temp)
		assert.Equal(t, tt.label, v.Label, "%v°F", tt.temp)
	}

	assert.Nil(t, safety.AssessDogWalk(nil))
}

func TestSeverityOverride(t *testing.T) {
	tests := []struct {
		name   string
		temp   float64
		precip float64
		wind   float64
		want   string
	}{
		{"bitter cold light snow", 10, 0.02, 0, safety.SeverityHeavySnow},
		{"bitter cold blowing flurries", 10, 0.005, 12, safety.SeverityWinterStorm},
		{"heavy snow", 28, 0.06, 0, safety.SeverityHeavySnow},
		{"winter storm", 28, 0.01, 25, safety.SeverityWinterStorm},
		{"snow", 28, 0.003, 5, safety.SeveritySnow},
		{"trace snow", 28, 0.001, 5, ""},
		{"heavy rain", 60, 0.4, 5, safety.SeverityHeavyRain},
		{"moderate rain", 60, 0.2, 5, safety.SeverityModerateRain},
		{"light rain", 60, 0.05, 5, ""},
		{"damaging winds", 60, 0, 55, safety.SeverityDamagingWinds},
		{"calm", 60, 0, 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := safety.SeverityOverride(&weather.NormalizedSample{
				TemperatureF:    tt.temp,
				PrecipIntensity: tt.precip,
				WindMph:         tt.wind,
			})
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Empty(t, safety.SeverityOverride(nil))
}
