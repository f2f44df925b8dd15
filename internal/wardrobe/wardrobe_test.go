package wardrobe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/wardrobe"
	"github.com/skywindow/skywindow/internal/weather"
)

func conditions(feels float64) *weather.NormalizedSample {
	return &weather.NormalizedSample{
		TemperatureF:         feels,
		ApparentTemperatureF: feels,
		CloudCover:           0.8,
		Condition:            weather.ConditionCloudy,
	}
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name     string
		activity string
		sample   *weather.NormalizedSample
		want     []wardrobe.Item
	}{
		{
			name:     "warm walk",
			activity: "walk",
			sample:   conditions(80),
			want:     []wardrobe.Item{wardrobe.Tank, wardrobe.Shorts},
		},
		{
			name:     "runner in the cold",
			activity: "run",
			sample:   conditions(40),
			want:     []wardrobe.Item{wardrobe.LongSleeve, wardrobe.Shorts, wardrobe.LightGloves},
		},
		{
			name:     "cyclist gets a wind shell",
			activity: "cycle",
			sample:   conditions(60),
			want:     []wardrobe.Item{wardrobe.ThermalBase, wardrobe.WindShell, wardrobe.Pants},
		},
		{
			name:     "freezing picnic",
			activity: "picnic",
			sample:   conditions(20),
			want: []wardrobe.Item{
				wardrobe.ThermalBase, wardrobe.WinterCoat, wardrobe.ThermalTight,
				wardrobe.LightGloves, wardrobe.Beanie, wardrobe.NeckWarmer,
			},
		},
		{
			name:     "cool hike",
			activity: "hike",
			sample:   conditions(35),
			want:     []wardrobe.Item{wardrobe.ThermalBase, wardrobe.Hoodie, wardrobe.Tights, wardrobe.LightGloves},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wardrobe.Recommend(nil, tt.activity, tt.sample).Items)
		})
	}
}

func TestRecommend_RainAndSun(t *testing.T) {
	wet := conditions(68)
	wet.PrecipProbability = 0.6
	assert.True(t, wardrobe.Recommend(nil, "walk", wet).Has(wardrobe.RainJacket))

	labelled := conditions(68)
	labelled.Condition = weather.ConditionRain
	assert.True(t, wardrobe.Recommend(nil, "walk", labelled).Has(wardrobe.RainJacket))

	sunny := conditions(68)
	sunny.CloudCover = 0.1
	sunny.UVIndex = 7
	outfit := wardrobe.Recommend(nil, "golf", sunny)
	assert.True(t, outfit.Has(wardrobe.Sunglasses))
	assert.True(t, outfit.Has(wardrobe.Cap))
	assert.False(t, outfit.Has(wardrobe.RainJacket))
}

func TestRecommend_EffectiveTemperature(t *testing.T) {
	assert.Equal(t, 65.0, wardrobe.Recommend(nil, "run", conditions(50)).EffectiveTemperatureF)
	assert.Equal(t, 40.0, wardrobe.Recommend(nil, "moto", conditions(50)).EffectiveTemperatureF)
	assert.Equal(t, 50.0, wardrobe.Recommend(nil, "yoga", conditions(50)).EffectiveTemperatureF)
}

func TestRecommend_Nil(t *testing.T) {
	assert.Empty(t, wardrobe.Recommend(nil, "run", nil).Items)
}

func TestRecommend_ResolvesAliases(t *testing.T) {
	tests := []struct {
		activity string
		want     float64
	}{
		{"running", 65},
		{"Cycling", 40},
		{"bike", 40},
		{"motorcycle", 40},
		{"walking", 50},
	}

	for _, tt := range tests {
		t.Run(tt.activity, func(t *testing.T) {
			assert.Equal(t, tt.want, wardrobe.Recommend(nil, tt.activity, conditions(50)).EffectiveTemperatureF)
		})
	}

	t.Run("aliases come from the table", func(t *testing.T) {
		table, err := safety.LoadTable([]byte(`
default:
  temp: { ideal: [50, 80], warning: [35, 90] }
activities:
  run:
    temp: { ideal: [45, 65], warning: [20, 85] }
aliases:
  jog: run
`))
		require.NoError(t, err)

		assert.Equal(t, 65.0, wardrobe.Recommend(table, "jog", conditions(50)).EffectiveTemperatureF)
		assert.Equal(t, 50.0, wardrobe.Recommend(table, "running", conditions(50)).EffectiveTemperatureF)
	})
}
