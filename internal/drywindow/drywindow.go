// Package drywindow finds dry stretches in minute-resolution precipitation series.
package drywindow

import (
	"fmt"
	"time"

	"github.com/skywindow/skywindow/internal/weather"
)

// Defaults used when callers have no preference.
const (
	DefaultThreshold   = 0.2
	DefaultMinDuration = 15
)

// Window describes whether it is dry enough to start now and, if not,
// the first upcoming dry stretch long enough to be useful.
type Window struct {
	SafeNow bool       `json:"isSafeNow"`
	Start   *time.Time `json:"nextWindowStart"`
	End     *time.Time `json:"nextWindowEnd"`
}

// Found reports whether an upcoming window was located.
func (w Window) Found() bool {
	return w.Start != nil && w.End != nil
}

// Find scans a minute series, earliest first, for samples whose precipitation
// probability is at or below threshold. The first minDuration samples decide
// SafeNow; otherwise the first run of at least minDuration dry samples is
// returned. A run that reaches the end of the series counts. The input is not
// modified.
func Find(series []weather.MinuteSample, threshold float64, minDuration int) Window {
	if len(series) == 0 {
		return Window{}
	}
	if minDuration < 1 {
		minDuration = 1
	}

	dry := func(i int) bool { return series[i].PrecipProbability <= threshold }

	safeNow := true
	for i := 0; i < minDuration && i < len(series); i++ {
		if !dry(i) {
			safeNow = false
			break
		}
	}
	if safeNow {
		return Window{SafeNow: true}
	}

	runStart := -1
	for i := range series {
		if dry(i) {
			if runStart < 0 {
				runStart = i
			}
			if i-runStart+1 >= minDuration {
				return window(series[runStart], series[i])
			}
			continue
		}
		runStart = -1
	}

	return Window{}
}

func window(first, last weather.MinuteSample) Window {
	start, end := first.At(), last.At()
	return Window{Start: &start, End: &end}
}

// Thresholds for the minute trend message. Intensities are in/h.
const (
	trendRainingNow = 0.2
	trendRainStarts = 0.3
	trendLightNow   = 0.1
	trendPouring    = 0.3
)

// Trend describes how precipitation evolves over the minute series, starting
// from the current reading. Each sample is one minute. Returns "" when nothing
// noteworthy is ahead.
func Trend(current weather.NormalizedSample, series []weather.MinuteSample) string {
	if len(series) == 0 {
		return ""
	}

	if current.PrecipProbability > trendRainingNow {
		msg := "Rain continuing for the next hour."
		for i, m := range series {
			if m.PrecipProbability < trendRainingNow {
				msg = fmt.Sprintf("Rain stopping in ~%d min.", i)
				break
			}
		}
		if current.PrecipIntensity < trendLightNow {
			for i, m := range series {
				if m.PrecipIntensity > trendPouring {
					msg += fmt.Sprintf(" Heads up: Pouring rain in %d min!", i)
					break
				}
			}
		}
		return msg
	}

	for i, m := range series {
		if m.PrecipProbability > trendRainStarts {
			msg := fmt.Sprintf("Rain starting in ~%d min.", i)
			if m.PrecipIntensity > trendPouring {
				msg += " (Starting heavy!)"
			}
			return msg
		}
	}
	return ""
}
