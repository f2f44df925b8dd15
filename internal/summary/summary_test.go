package summary_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/summary"
	"github.com/skywindow/skywindow/internal/weather"
)

var (
	start   = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	morning = time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC)
	evening = time.Date(2026, 6, 1, 17, 0, 0, 0, time.UTC)
)

type hour struct {
	temp float64
	wind float64
	pop  float64
	icon string
}

func series(hours ...hour) []weather.Sample {
	out := make([]weather.Sample, len(hours))
	for i, h := range hours {
		out[i] = weather.Sample{
			Time:              start.Add(time.Duration(i) * time.Hour).Unix(),
			Temperature:       weather.Float(h.temp),
			WindSpeed:         h.wind,
			PrecipProbability: h.pop,
			Icon:              h.icon,
		}
	}
	return out
}

func repeat(h hour, n int) []hour {
	out := make([]hour, n)
	for i := range out {
		out[i] = h
	}
	return out
}

var (
	ideal   = hour{temp: 55, wind: 4, icon: "clear-day"}
	rainy   = hour{temp: 55, wind: 4, pop: 0.5, icon: "rain"}
	frigid  = hour{temp: 10, wind: 4, icon: "clear-day"}
	chilly  = hour{temp: 25, wind: 4, icon: "clear-day"}
	showery = hour{temp: 30, wind: 4, pop: 0.2, icon: "cloudy"}
	brisk   = hour{temp: 30, wind: 4, icon: "cloudy"}
)

func newSummarizer() *summary.Summarizer {
	return summary.NewSummarizer(safety.NewScorer(nil, safety.ScoringConfig{}))
}

func TestSummarizeDay(t *testing.T) {
	tests := []struct {
		name  string
		hours []hour
		now   time.Time
		want  string
	}{
		{
			name:  "go anytime",
			hours: repeat(ideal, 18),
			now:   morning,
			want:  "Good morning. It's a perfect day for a run. Go anytime!",
		},
		{
			name:  "window ends with rain",
			hours: append(repeat(ideal, 5), repeat(rainy, 13)...),
			now:   morning,
			want:  "Good morning. Aim to run around 9 AM. Conditions degrade after 1 PM due to precipitation.",
		},
		{
			name:  "reason from advice keywords",
			hours: append(append(repeat(brisk, 2), repeat(ideal, 3)...), repeat(showery, 4)...),
			now:   evening,
			want:  "Good afternoon. Aim to run around 9 AM. Conditions degrade after 1 PM due to rain.",
		},
		{
			name:  "fair without perfect windows",
			hours: repeat(chilly, 18),
			now:   morning,
			want:  "Good morning. Conditions are fair today, but no perfect windows.",
		},
		{
			name:  "fair later in the day after a poor first hour",
			hours: append([]hour{frigid}, repeat(chilly, 3)...),
			now:   morning,
			want:  "Good morning. Conditions are fair today, but no perfect windows due to uncomfortable temperatures.",
		},
		{
			name:  "tough day",
			hours: repeat(frigid, 18),
			now:   morning,
			want:  "Good morning. Conditions are tough today due to uncomfortable temperatures. Maybe take a rest day or go indoors.",
		},
		{
			name:  "only the first eighteen hours count",
			hours: append(repeat(frigid, 18), repeat(ideal, 30)...),
			now:   morning,
			want:  "Good morning. Conditions are tough today due to uncomfortable temperatures. Maybe take a rest day or go indoors.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newSummarizer().SummarizeDay(series(tt.hours...), "run", weather.UnitsImperial, tt.now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummarizeDay_LastExcellentHourAtEnd(t *testing.T) {
	hours := append(repeat(rainy, 3), repeat(ideal, 2)...)

	got := newSummarizer().SummarizeDay(series(hours...), "run", weather.UnitsImperial, morning)
	assert.Equal(t, "Good morning. Aim to run around 12 PM. Conditions degrade after 1 PM.", got)
}

func TestSummarizeDay_UsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	hours := append(repeat(ideal, 5), repeat(frigid, 5)...)
	now := time.Date(2026, 6, 1, 4, 30, 0, 0, ny)

	got := newSummarizer().SummarizeDay(series(hours...), "run", weather.UnitsImperial, now)
	assert.Equal(t, "Good morning. Aim to run around 5 AM. Conditions degrade after 9 AM due to uncomfortable temperatures.", got)
}

func TestSummarizeDay_NoData(t *testing.T) {
	s := newSummarizer()

	assert.Empty(t, s.SummarizeDay(nil, "run", weather.UnitsImperial, morning))
	assert.Empty(t, s.SummarizeDay([]weather.Sample{{Time: start.Unix()}}, "run", weather.UnitsImperial, morning))
}

func TestFreeSummary(t *testing.T) {
	tests := []struct {
		name   string
		sample *weather.Sample
		units  weather.UnitSystem
		now    time.Time
		want   string
	}{
		{
			name:   "good",
			sample: &weather.Sample{Temperature: weather.Float(70), PrecipProbability: 0.1, Summary: "Clear"},
			units:  weather.UnitsImperial,
			now:    morning,
			want:   "Good morning! Currently 70° and clear. Conditions look favorable for a run today.",
		},
		{
			name:   "challenging",
			sample: &weather.Sample{Temperature: weather.Float(28), PrecipProbability: 0.2, Summary: "Light Snow"},
			units:  weather.UnitsImperial,
			now:    evening,
			want:   "Good afternoon. Currently 28° with light snow. Consider checking the forecast before heading out.",
		},
		{
			name:   "mixed with rain chance",
			sample: &weather.Sample{Temperature: weather.Float(88), PrecipProbability: 0.4, Summary: "Humid"},
			units:  weather.UnitsImperial,
			now:    morning,
			want:   "Good morning. It's 88° and humid. 40% chance of rain.",
		},
		{
			name:   "mixed without summary",
			sample: &weather.Sample{Temperature: weather.Float(40)},
			units:  weather.UnitsImperial,
			now:    morning,
			want:   "Good morning. It's 40° and conditions unclear.",
		},
		{
			name:   "metric temperatures shown as given",
			sample: &weather.Sample{Temperature: weather.Float(21), Summary: "Sunny"},
			units:  weather.UnitsMetric,
			now:    morning,
			want:   "Good morning! Currently 21° and sunny. Conditions look favorable for a run today.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summary.FreeSummary(tt.sample, "run", tt.units, tt.now))
		})
	}

	assert.Empty(t, summary.FreeSummary(nil, "run", weather.UnitsImperial, morning))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, summary.QualityGood, summary.Classify(&weather.NormalizedSample{TemperatureF: 60}))
	assert.Equal(t, summary.QualityChallenging, summary.Classify(&weather.NormalizedSample{TemperatureF: 60, PrecipProbability: 0.6}))
	assert.Equal(t, summary.QualityChallenging, summary.Classify(&weather.NormalizedSample{TemperatureF: 100}))
	assert.Equal(t, summary.QualityMixed, summary.Classify(&weather.NormalizedSample{TemperatureF: 60, PrecipProbability: 0.3}))
}
