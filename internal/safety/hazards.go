package safety

import "github.com/skywindow/skywindow/internal/weather"

// Level is a three-way safety verdict.
type Level string

const (
	LevelSafe    Level = "safe"
	LevelWarning Level = "warning"
	LevelUnsafe  Level = "unsafe"
)

// Color returns the advisory display color for the level.
func (l Level) Color() string {
	switch l {
	case LevelSafe:
		return "#22c55e"
	case LevelWarning:
		return "#f59e0b"
	default:
		return "#ef4444"
	}
}

// Verdict is a labelled safety level.
type Verdict struct {
	Level Level  `json:"level"`
	Label string `json:"label"`
	Color string `json:"color"`
}

func verdict(level Level, label string) *Verdict {
	return &Verdict{Level: level, Label: label, Color: level.Color()}
}

// AssessTemperature grades exposure to cold and heat regardless of activity.
func AssessTemperature(n *weather.NormalizedSample) *Verdict {
	if n == nil {
		return nil
	}
	temp, feels := n.TemperatureF, n.ApparentTemperatureF

	switch {
	case temp < 10 || feels < 5:
		return verdict(LevelUnsafe, "Dangerously Cold")
	case temp > 100 || feels > 105:
		return verdict(LevelUnsafe, "Dangerously Hot")
	case temp < 32 || feels < 25:
		return verdict(LevelWarning, "Freezing Conditions")
	case temp > 90 || feels > 95:
		return verdict(LevelWarning, "Heat Advisory")
	default:
		return verdict(LevelSafe, "Safe Temp")
	}
}

// AssessDogWalk grades pavement and paw safety.
func AssessDogWalk(n *weather.NormalizedSample) *Verdict {
	if n == nil {
		return nil
	}
	switch {
	case n.TemperatureF > 85:
		return verdict(LevelUnsafe, "Pavement Too Hot")
	case n.TemperatureF < 15:
		return verdict(LevelWarning, "Too Cold for Paws")
	default:
		return verdict(LevelSafe, "Safe for Paws")
	}
}

// Severity headlines driven by precipitation intensity and wind.
const (
	SeverityHeavySnow     = "Heavy Snow"
	SeverityWinterStorm   = "Winter Storm"
	SeveritySnow          = "Snow"
	SeverityHeavyRain     = "Heavy Rain"
	SeverityModerateRain  = "Moderate Rain"
	SeverityDamagingWinds = "Damaging Winds"
)

// SeverityOverride returns a headline that should replace the provider's summary
// when precipitation intensity (in/h) or wind make it more severe than stated.
// It returns "" when no override applies.
func SeverityOverride(n *weather.NormalizedSample) string {
	if n == nil {
		return ""
	}
	temp, precip, wind := n.TemperatureF, n.PrecipIntensity, n.WindMph

	if temp < 34 {
		if temp < 15 {
			// Below 15°F much lower rates already count as heavy.
			if precip > 0.01 {
				return SeverityHeavySnow
			}
			if wind > 10 && precip > 0.001 {
				return SeverityWinterStorm
			}
		}
		switch {
		case precip > 0.05:
			return SeverityHeavySnow
		case wind > 20 && precip > 0.005:
			return SeverityWinterStorm
		case precip > 0.002:
			return SeveritySnow
		}
	} else {
		switch {
		case precip > 0.3:
			return SeverityHeavyRain
		case precip > 0.1:
			return SeverityModerateRain
		}
	}

	if wind > 50 {
		return SeverityDamagingWinds
	}
	return ""
}
