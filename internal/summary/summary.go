// Package summary turns scored hourly forecasts into one or two sentences of guidance.
package summary

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/weather"
)

// Narrative constants.
const (
	MaxHours        = 18
	ExcellentScore  = 80
	PoorScore       = 50
	FairFloor       = 60
	GoAnytimeAbove  = 12
	defaultActivity = "activity"
)

var reasons = map[string]string{
	"Temp":  "uncomfortable temperatures",
	"Wind":  "strong winds",
	"UV":    "high UV levels",
	"Vis":   "poor visibility",
	"Road":  "hazardous road conditions",
	"Cond":  "precipitation",
	"Cloud": "cloud cover",
	"Risk":  "weather risks",
	"Lens":  "wet conditions",
}

// Scorer scores one raw hourly sample. *safety.Scorer satisfies it.
type Scorer interface {
	ScoreSample(activityID string, sample *weather.Sample, units weather.UnitSystem) *safety.Analysis
}

// Summarizer writes daily narratives.
type Summarizer struct {
	scorer Scorer
}

// NewSummarizer creates a summarizer backed by scorer.
func NewSummarizer(scorer Scorer) *Summarizer {
	return &Summarizer{scorer: scorer}
}

type scoredHour struct {
	index    int
	at       time.Time
	analysis *safety.Analysis
}

// SummarizeDay describes the best time to go out over the first MaxHours of
// hourly. Clock times and the greeting use now and its location. It returns ""
// when no hour could be scored.
func (s *Summarizer) SummarizeDay(hourly []weather.Sample, activityID string, units weather.UnitSystem, now time.Time) string {
	if len(hourly) > MaxHours {
		hourly = hourly[:MaxHours]
	}
	activity := strings.ToLower(strings.TrimSpace(activityID))
	if activity == "" {
		activity = defaultActivity
	}

	var scored, excellent []scoredHour
	for i := range hourly {
		a := s.scorer.ScoreSample(activityID, &hourly[i], units)
		if a == nil {
			continue
		}
		h := scoredHour{index: i, at: time.Unix(hourly[i].Time, 0).In(now.Location()), analysis: a}
		scored = append(scored, h)
		if a.Score >= ExcellentScore {
			excellent = append(excellent, h)
		}
	}
	if len(scored) == 0 {
		return ""
	}

	greeting := fmt.Sprintf("Good %s.", partOfDay(now))

	if len(excellent) > GoAnytimeAbove {
		return fmt.Sprintf("%s It's a perfect day for a %s. Go anytime!", greeting, activity)
	}

	if len(excellent) == 0 {
		first := scored[0].analysis
		best := first.Score
		for _, h := range scored[1:] {
			best = max(best, h.analysis.Score)
		}
		if best >= FairFloor {
			return fmt.Sprintf("%s Conditions are fair today, but no perfect windows%s.", greeting, reason(first))
		}
		return fmt.Sprintf("%s Conditions are tough today%s. Maybe take a rest day or go indoors.", greeting, reason(first))
	}

	firstGood := excellent[0]
	lastGood := excellent[len(excellent)-1]

	var after *safety.Analysis
	for _, h := range scored {
		if h.index > lastGood.index {
			after = h.analysis
			break
		}
	}

	return fmt.Sprintf("%s Aim to %s around %s. Conditions degrade after %s%s.",
		greeting, activity, clock(firstGood.at), clock(lastGood.at), reason(after))
}

// reason explains why an hour is worse, from its first poor metric or,
// failing that, its advice text.
func reason(a *safety.Analysis) string {
	if a == nil {
		return ""
	}
	if name := a.FirstPoorMetric(); name != "" {
		phrase, ok := reasons[name]
		if !ok {
			phrase = "conditions"
		}
		return " due to " + phrase
	}

	advice := strings.ToLower(a.Advice)
	for _, keyword := range []string{"rain", "snow", "wind", "cold"} {
		if strings.Contains(advice, keyword) {
			return " due to " + keyword
		}
	}
	return ""
}

func partOfDay(now time.Time) string {
	if now.Hour() < 12 {
		return "morning"
	}
	return "afternoon"
}

// clock formats the hour on a 12-hour clock, e.g. "3 PM".
func clock(t time.Time) string {
	return t.Format("3 PM")
}

// Quality is the coarse outlook used by FreeSummary.
type Quality string

const (
	QualityGood        Quality = "good"
	QualityMixed       Quality = "mixed"
	QualityChallenging Quality = "challenging"
)

// Classify rates current conditions without regard to activity.
func Classify(n *weather.NormalizedSample) Quality {
	precip := n.PrecipProbability * 100
	temp := n.TemperatureF

	switch {
	case precip > 50 || temp < 32 || temp > 95:
		return QualityChallenging
	case precip < 20 && temp > 45 && temp < 85:
		return QualityGood
	default:
		return QualityMixed
	}
}

// FreeSummary is a short overview of current conditions without a
// recommended time. Temperatures are shown in the caller's units.
func FreeSummary(current *weather.Sample, activityID string, units weather.UnitSystem, now time.Time) string {
	n, ok := weather.Normalize(current, units)
	if !ok {
		return ""
	}

	temp := int(math.Round(*current.Temperature))
	precip := int(math.Round(current.PrecipProbability * 100))
	conditions := strings.ToLower(current.Summary)
	if conditions == "" {
		conditions = "conditions unclear"
	}
	activity := strings.ToLower(strings.TrimSpace(activityID))
	if activity == "" {
		activity = defaultActivity
	}
	pod := partOfDay(now)

	switch Classify(&n) {
	case QualityGood:
		return fmt.Sprintf("Good %s! Currently %d° and %s. Conditions look favorable for a %s today.", pod, temp, conditions, activity)
	case QualityChallenging:
		return fmt.Sprintf("Good %s. Currently %d° with %s. Consider checking the forecast before heading out.", pod, temp, conditions)
	default:
		msg := fmt.Sprintf("Good %s. It's %d° and %s.", pod, temp, conditions)
		if precip > 30 {
			msg += fmt.Sprintf(" %d%% chance of rain.", precip)
		}
		return msg
	}
}
