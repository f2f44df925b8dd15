package safety_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/weather"
)

func TestDefaultTable_Activities(t *testing.T) {
	table := safety.DefaultTable()

	assert.Equal(t, []string{
		"camera", "cycle", "drive", "fishing", "golf", "hike", "moto",
		"pickleball", "picnic", "run", "stargaze", "tennis", "walk", "yoga",
	}, table.Activities())
}

func TestDefaultTable_WarningCoversIdeal(t *testing.T) {
	table := safety.DefaultTable()

	for _, id := range append(table.Activities(), "unknown") {
		for _, m := range table.Thresholds(id).Metrics {
			assert.True(t, m.Warning.Covers(m.Ideal), "%s.%s", id, m.Metric)
		}
	}
}

func TestDefaultTable_MetricOrder(t *testing.T) {
	table := safety.DefaultTable()

	tests := []struct {
		activity string
		metrics  []safety.Metric
	}{
		{"run", []safety.Metric{safety.MetricTemp, safety.MetricWind}},
		{"walk", []safety.Metric{safety.MetricTemp, safety.MetricUV}},
		{"stargaze", []safety.Metric{safety.MetricCloud, safety.MetricVis}},
		{"fishing", []safety.Metric{safety.MetricWind, safety.MetricTemp}},
		{"camera", []safety.Metric{safety.MetricVis, safety.MetricWind}},
		{"drive", []safety.Metric{safety.MetricVis}},
	}

	for _, tt := range tests {
		t.Run(tt.activity, func(t *testing.T) {
			var got []safety.Metric
			for _, m := range table.Thresholds(tt.activity).Metrics {
				got = append(got, m.Metric)
			}
			assert.Equal(t, tt.metrics, got)
		})
	}
}

func TestTable_Resolve(t *testing.T) {
	table := safety.DefaultTable()

	tests := []struct {
		input string
		id    string
		known bool
	}{
		{"run", "run", true},
		{"  RUN ", "run", true},
		{"running", "run", true},
		{"Stargazing", "stargaze", true},
		{"photography", "camera", true},
		{"bike", "cycle", true},
		{"curling", "curling", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, ok := table.Resolve(tt.input)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.known, ok)
		})
	}
}

func TestTable_Canonical(t *testing.T) {
	table := safety.DefaultTable()

	assert.Equal(t, "run", table.Canonical("Running"))
	assert.Equal(t, "moto", table.Canonical("motorcycle"))
	assert.Equal(t, safety.DefaultActivity, table.Canonical("curling"))
	assert.Equal(t, safety.DefaultActivity, table.Canonical(""))
}

func TestTable_ThresholdsFallback(t *testing.T) {
	table := safety.DefaultTable()

	th := table.Thresholds("curling")
	assert.Equal(t, safety.DefaultActivity, th.Activity)

	temp, ok := th.Lookup(safety.MetricTemp)
	require.True(t, ok)
	assert.Equal(t, safety.Range{Min: 50, Max: 80}, temp.Ideal)
	assert.Equal(t, safety.Range{Min: 35, Max: 90}, temp.Warning)

	_, ok = th.Lookup(safety.MetricUV)
	assert.False(t, ok)
}

func TestTable_ThresholdsReturnsCopy(t *testing.T) {
	table := safety.DefaultTable()
	before := safety.NewScorer(nil, safety.ScoringConfig{}).Score("run", &weather.NormalizedSample{
		TemperatureF: 55, ApparentTemperatureF: 55, WindMph: 5, VisibilityMiles: 10,
	})
	require.NotNil(t, before)

	th := table.Thresholds("run")
	require.NotEmpty(t, th.Metrics)
	th.Metrics[0].Ideal = safety.Range{Min: 200, Max: 210}
	th.Metrics[0].Warning = safety.Range{Min: 200, Max: 210}

	again := table.Thresholds("run")
	assert.NotEqual(t, safety.Range{Min: 200, Max: 210}, again.Metrics[0].Ideal)

	after := safety.NewScorer(nil, safety.ScoringConfig{}).Score("run", &weather.NormalizedSample{
		TemperatureF: 55, ApparentTemperatureF: 55, WindMph: 5, VisibilityMiles: 10,
	})
	require.NotNil(t, after)
	assert.Equal(t, before.Score, after.Score)
	assert.Equal(t, before.Metrics, after.Metrics)
}

func TestRange_Contains(t *testing.T) {
	r := safety.Range{Min: 10, Max: 20}

	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(20))
	assert.True(t, r.Contains(15))
	assert.False(t, r.Contains(9.99))
	assert.False(t, r.Contains(20.01))
}

func TestLoadTable(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		table, err := safety.LoadTable([]byte(`
default:
  temp: { ideal: [50, 80], warning: [35, 90] }
activities:
  kite:
    wind: { ideal: [8, 20], warning: [5, 30] }
aliases:
  kiting: kite
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"kite"}, table.Activities())

		id, ok := table.Resolve("kiting")
		assert.True(t, ok)
		assert.Equal(t, "kite", id)
	})

	tests := []struct {
		name string
		doc  string
	}{
		{"malformed yaml", "default: [unclosed"},
		{"missing default", "activities:\n  run:\n    temp: { ideal: [45, 65], warning: [20, 85] }\n"},
		{"ideal outside warning", `
default:
  temp: { ideal: [50, 80], warning: [55, 90] }
activities: {}
`},
		{"unknown metric", `
default:
  temp: { ideal: [50, 80], warning: [35, 90] }
activities:
  run:
    pollen: { ideal: [0, 1], warning: [0, 2] }
`},
		{"range with one value", `
default:
  temp: { ideal: [50], warning: [35, 90] }
activities: {}
`},
		{"inverted range", `
default:
  temp: { ideal: [80, 50], warning: [35, 90] }
activities: {}
`},
		{"dangling alias", `
default:
  temp: { ideal: [50, 80], warning: [35, 90] }
activities:
  run:
    temp: { ideal: [45, 65], warning: [20, 85] }
aliases:
  jog: jogging
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := safety.LoadTable([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, safety.ErrInvalidTable)
		})
	}
}

func TestLoadTable_UnknownMetricIsWrapped(t *testing.T) {
	_, err := safety.LoadTable([]byte(`
default:
  humidity: { ideal: [0, 1], warning: [0, 1] }
activities: {}
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, safety.ErrUnknownMetric)
}

func TestRules_FallbackChain(t *testing.T) {
	generic := safety.Rules("curling")
	require.NotEmpty(t, generic)
	assert.Equal(t, safety.Rules(safety.DefaultActivity)[0].Advice, generic[0].Advice)

	// Callers get a copy.
	generic[0].Advice = "changed"
	assert.NotEqual(t, "changed", safety.Rules("curling")[0].Advice)
}
