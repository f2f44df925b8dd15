// Package weather provides weather samples, unit normalization, and a cached
// forecast service backed by a pluggable provider.
package weather

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Default values for optional sample fields.
const (
	DefaultVisibilityMiles = 10.0
	FreezingF              = 32.0
)

// UnitSystem determines how temperature and wind speed in a Sample are interpreted.
type UnitSystem string

const (
	// UnitsImperial is °F and mph. All scoring is done in this system.
	UnitsImperial UnitSystem = "us"
	// UnitsMetric is °C and km/h.
	UnitsMetric UnitSystem = "si"
	// UnitsUK is °C with wind in mph.
	UnitsUK UnitSystem = "uk2"
	// UnitsCanada is °C and km/h.
	UnitsCanada UnitSystem = "ca"
)

// ParseUnitSystem maps a unit flag to a UnitSystem. Unrecognized values are imperial.
func ParseUnitSystem(s string) UnitSystem {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "si", "metric":
		return UnitsMetric
	case "uk2", "uk":
		return UnitsUK
	case "ca":
		return UnitsCanada
	default:
		return UnitsImperial
	}
}

// CelsiusTemperatures reports whether temperatures are in °C.
func (u UnitSystem) CelsiusTemperatures() bool {
	return u == UnitsMetric || u == UnitsUK || u == UnitsCanada
}

// KilometreWind reports whether wind speed is in km/h.
func (u UnitSystem) KilometreWind() bool {
	return u == UnitsMetric || u == UnitsCanada
}

// KilometreDistances reports whether visibility is in kilometres.
func (u UnitSystem) KilometreDistances() bool {
	return u == UnitsMetric || u == UnitsCanada
}

// Condition is the closed set of sky conditions the scoring engine understands.
type Condition string

const (
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionSleet   Condition = "sleet"
	ConditionFog     Condition = "fog"
	ConditionWindy   Condition = "windy"
	ConditionUnknown Condition = "unknown"
)

// ParseCondition translates a free-text sky hint (provider icon or summary) into a Condition.
// This is the only place free text is inspected.
func ParseCondition(text string) Condition {
	t := strings.ToLower(text)
	switch {
	case t == "":
		return ConditionUnknown
	case strings.Contains(t, "sleet"), strings.Contains(t, "hail"), strings.Contains(t, "freezing"):
		return ConditionSleet
	case strings.Contains(t, "snow"), strings.Contains(t, "flurr"):
		return ConditionSnow
	case strings.Contains(t, "rain"), strings.Contains(t, "drizzle"), strings.Contains(t, "thunder"),
		strings.Contains(t, "shower"):
		return ConditionRain
	case strings.Contains(t, "fog"), strings.Contains(t, "mist"), strings.Contains(t, "haze"):
		return ConditionFog
	case strings.Contains(t, "wind"), strings.Contains(t, "breez"):
		return ConditionWindy
	case strings.Contains(t, "cloud"), strings.Contains(t, "overcast"):
		return ConditionCloudy
	case strings.Contains(t, "clear"), strings.Contains(t, "sun"):
		return ConditionClear
	default:
		return ConditionUnknown
	}
}

// IsRainLabeled reports whether the condition indicates liquid or mixed precipitation.
func (c Condition) IsRainLabeled() bool {
	return c == ConditionRain || c == ConditionSleet
}

// IsSnowLabeled reports whether the condition indicates snow.
func (c Condition) IsSnowLabeled() bool {
	return c == ConditionSnow
}

// Sample is one raw forecast reading as handed over by a provider.
// Optional fields are nil when the provider did not report them.
type Sample struct {
	Time                int64    `json:"time"`
	Temperature         *float64 `json:"temperature,omitempty"`
	ApparentTemperature *float64 `json:"apparentTemperature,omitempty"`
	WindSpeed           float64  `json:"windSpeed"`
	PrecipProbability   float64  `json:"precipProbability"`
	PrecipIntensity     *float64 `json:"precipIntensity,omitempty"` // in/h, or mm/h outside us
	UVIndex             float64  `json:"uvIndex"`
	Visibility          *float64 `json:"visibility,omitempty"` // miles, or km for si/ca
	Humidity            *float64 `json:"humidity,omitempty"`
	CloudCover          *float64 `json:"cloudCover,omitempty"`
	Icon                string   `json:"icon,omitempty"`
	Summary             string   `json:"summary,omitempty"`
}

// MinuteSample is one reading of a minute-resolution precipitation series.
type MinuteSample struct {
	Time              int64   `json:"time"`
	PrecipProbability float64 `json:"precipProbability"`
	PrecipIntensity   float64 `json:"precipIntensity"`
}

// At returns the sample timestamp.
func (m MinuteSample) At() time.Time {
	return time.Unix(m.Time, 0)
}

// NormalizedSample is a Sample converted to °F and mph with defaults applied.
type NormalizedSample struct {
	Time                 time.Time
	TemperatureF         float64
	ApparentTemperatureF float64
	WindMph              float64
	PrecipProbability    float64
	PrecipIntensity      float64 // in/h
	UVIndex              float64
	VisibilityMiles      float64
	Humidity             float64
	CloudCover           float64
	Condition            Condition
}

// Freezing reports whether the apparent temperature is at or below freezing.
func (n *NormalizedSample) Freezing() bool {
	return n.ApparentTemperatureF <= FreezingF
}

// Normalize converts a sample to the canonical °F / mph representation.
// It returns false when there is nothing to score: a nil sample or one without a temperature.
func Normalize(s *Sample, units UnitSystem) (NormalizedSample, bool) {
	if s == nil || s.Temperature == nil {
		return NormalizedSample{}, false
	}

	temp := *s.Temperature
	apparent := temp
	if s.ApparentTemperature != nil {
		apparent = *s.ApparentTemperature
	}
	wind := s.WindSpeed

	if units.CelsiusTemperatures() {
		temp = CelsiusToFahrenheit(temp)
		apparent = CelsiusToFahrenheit(apparent)
	}
	if units.KilometreWind() {
		wind = KphToMph(wind)
	}

	n := NormalizedSample{
		Time:                 time.Unix(s.Time, 0),
		TemperatureF:         temp,
		ApparentTemperatureF: apparent,
		WindMph:              wind,
		PrecipProbability:    s.PrecipProbability,
		UVIndex:              s.UVIndex,
		VisibilityMiles:      DefaultVisibilityMiles,
		Condition:            ParseCondition(s.Icon),
	}
	if n.Condition == ConditionUnknown {
		n.Condition = ParseCondition(s.Summary)
	}
	if s.PrecipIntensity != nil {
		n.PrecipIntensity = *s.PrecipIntensity
		if units.CelsiusTemperatures() {
			n.PrecipIntensity = MillimetresToInches(n.PrecipIntensity)
		}
	}
	if s.Visibility != nil {
		vis := *s.Visibility
		if units.KilometreDistances() {
			vis = KmToMiles(vis)
		}
		// Providers report visibility up to about 10 miles; anything beyond is unlimited.
		n.VisibilityMiles = math.Min(vis, DefaultVisibilityMiles)
	}
	if s.Humidity != nil {
		n.Humidity = *s.Humidity
	}
	if s.CloudCover != nil {
		n.CloudCover = *s.CloudCover
	}

	return n, true
}

// CelsiusToFahrenheit converts °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// KphToMph converts km/h to mph.
func KphToMph(kph float64) float64 {
	return kph * 0.621371
}

// NormalizeMinutes returns a copy of a minute series with intensities in inches per hour.
func NormalizeMinutes(series []MinuteSample, units UnitSystem) []MinuteSample {
	out := make([]MinuteSample, len(series))
	copy(out, series)
	if units.CelsiusTemperatures() {
		for i := range out {
			out[i].PrecipIntensity = MillimetresToInches(out[i].PrecipIntensity)
		}
	}
	return out
}

// MillimetresToInches converts mm (or mm/h) to inches (or in/h).
func MillimetresToInches(mm float64) float64 {
	return mm / 25.4
}

// KmToMiles converts kilometres to miles.
func KmToMiles(km float64) float64 {
	return km * 0.621371
}

// Forecast is the provider payload for a location: hourly and minutely series
// plus the unit system the values are expressed in.
type Forecast struct {
	Lat       float64        `json:"lat"`
	Lon       float64        `json:"lon"`
	Timezone  string         `json:"timezone,omitempty"`
	Units     UnitSystem     `json:"units"`
	Currently *Sample        `json:"currently,omitempty"`
	Hourly    []Sample       `json:"hourly"`
	Minutely  []MinuteSample `json:"minutely,omitempty"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// Location returns the forecast's IANA time zone, falling back to UTC.
func (f *Forecast) Location() *time.Location {
	if f.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Float returns a pointer to v. Handy for building samples.
func Float(v float64) *float64 {
	return &v
}
