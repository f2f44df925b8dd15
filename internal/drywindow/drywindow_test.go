package drywindow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywindow/skywindow/internal/drywindow"
	"github.com/skywindow/skywindow/internal/weather"
)

const base = int64(1_700_000_000)

// series builds a one-minute series from precipitation probabilities.
func series(pops ...float64) []weather.MinuteSample {
	out := make([]weather.MinuteSample, len(pops))
	for i, p := range pops {
		out[i] = weather.MinuteSample{Time: base + int64(i)*60, PrecipProbability: p}
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestFind_Empty(t *testing.T) {
	w := drywindow.Find(nil, drywindow.DefaultThreshold, drywindow.DefaultMinDuration)
	assert.False(t, w.SafeNow)
	assert.Nil(t, w.Start)
	assert.Nil(t, w.End)
	assert.False(t, w.Found())
}

func TestFind_SafeNow(t *testing.T) {
	s := series(concat(repeat(0.1, 15), repeat(0.9, 45))...)

	w := drywindow.Find(s, 0.2, 15)
	assert.True(t, w.SafeNow)
	assert.False(t, w.Found())
}

func TestFind_ThresholdIsInclusive(t *testing.T) {
	w := drywindow.Find(series(repeat(0.2, 20)...), 0.2, 15)
	assert.True(t, w.SafeNow)
}

func TestFind_ShortSeriesAllDry(t *testing.T) {
	w := drywindow.Find(series(0, 0, 0), 0.2, 15)
	assert.True(t, w.SafeNow)
}

func TestFind_NextWindow(t *testing.T) {
	// Samples 0-9 wet, 10-29 dry, 30-59 wet.
	s := series(concat(repeat(0.5, 10), repeat(0.05, 20), repeat(0.5, 30))...)

	w := drywindow.Find(s, 0.2, 15)
	require.True(t, w.Found())
	assert.False(t, w.SafeNow)
	assert.Equal(t, s[10].At(), *w.Start)
	assert.Equal(t, s[24].At(), *w.End)
}

func TestFind_SkipsShortRuns(t *testing.T) {
	s := series(concat(
		repeat(0.5, 5),
		repeat(0.0, 10), // too short
		repeat(0.5, 5),
		repeat(0.0, 15),
		repeat(0.5, 5),
	)...)

	w := drywindow.Find(s, 0.2, 15)
	require.True(t, w.Found())
	assert.Equal(t, s[20].At(), *w.Start)
	assert.Equal(t, s[34].At(), *w.End)
}

func TestFind_RunReachingEndCounts(t *testing.T) {
	s := series(concat(repeat(0.8, 45), repeat(0.1, 15))...)

	w := drywindow.Find(s, 0.2, 15)
	require.True(t, w.Found())
	assert.Equal(t, s[45].At(), *w.Start)
	assert.Equal(t, s[59].At(), *w.End)
}

func TestFind_NoRelief(t *testing.T) {
	s := series(concat(repeat(0.8, 45), repeat(0.1, 14))...)

	w := drywindow.Find(s, 0.2, 15)
	assert.False(t, w.SafeNow)
	assert.False(t, w.Found())
}

func TestFind_Idempotent(t *testing.T) {
	s := series(concat(repeat(0.5, 10), repeat(0.05, 20), repeat(0.5, 30))...)
	snapshot := append([]weather.MinuteSample(nil), s...)

	first := drywindow.Find(s, 0.2, 15)
	second := drywindow.Find(s, 0.2, 15)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, s)
}

func TestFind_Minimality(t *testing.T) {
	pops := []float64{0.5, 0.1, 0.1, 0.5, 0.1, 0.1, 0.1, 0.1, 0.5, 0.1, 0.1, 0.1, 0.1, 0.1}
	s := series(pops...)

	w := drywindow.Find(s, 0.2, 4)
	require.True(t, w.Found())

	start := int((w.Start.Unix() - base) / 60)
	end := int((w.End.Unix() - base) / 60)
	assert.Equal(t, 4, start)
	assert.GreaterOrEqual(t, end-start+1, 4)
	for i := start; i <= end; i++ {
		assert.LessOrEqual(t, pops[i], 0.2)
	}
}

func TestTrend(t *testing.T) {
	minutes := func(pops, intensities []float64) []weather.MinuteSample {
		out := series(pops...)
		for i := range out {
			if i < len(intensities) {
				out[i].PrecipIntensity = intensities[i]
			}
		}
		return out
	}

	tests := []struct {
		name    string
		current weather.NormalizedSample
		series  []weather.MinuteSample
		want    string
	}{
		{
			name:    "empty series",
			current: weather.NormalizedSample{PrecipProbability: 0.9},
			want:    "",
		},
		{
			name:    "rain stopping",
			current: weather.NormalizedSample{PrecipProbability: 0.6, PrecipIntensity: 0.2},
			series:  minutes(concat(repeat(0.6, 12), repeat(0.1, 5)), nil),
			want:    "Rain stopping in ~12 min.",
		},
		{
			name:    "rain continuing",
			current: weather.NormalizedSample{PrecipProbability: 0.6, PrecipIntensity: 0.2},
			series:  minutes(repeat(0.6, 60), nil),
			want:    "Rain continuing for the next hour.",
		},
		{
			name:    "light rain turning heavy",
			current: weather.NormalizedSample{PrecipProbability: 0.6, PrecipIntensity: 0.05},
			series:  minutes(repeat(0.6, 60), concat(repeat(0.05, 7), []float64{0.4})),
			want:    "Rain continuing for the next hour. Heads up: Pouring rain in 7 min!",
		},
		{
			name:    "rain starting",
			current: weather.NormalizedSample{PrecipProbability: 0.1},
			series:  minutes(concat(repeat(0.1, 20), []float64{0.5}), nil),
			want:    "Rain starting in ~20 min.",
		},
		{
			name:    "rain starting heavy",
			current: weather.NormalizedSample{PrecipProbability: 0.1},
			series:  minutes(concat(repeat(0.1, 5), []float64{0.5}), concat(repeat(0, 5), []float64{0.5})),
			want:    "Rain starting in ~5 min. (Starting heavy!)",
		},
		{
			name:    "dry hour",
			current: weather.NormalizedSample{PrecipProbability: 0},
			series:  minutes(repeat(0.05, 60), nil),
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, drywindow.Trend(tt.current, tt.series))
		})
	}
}
