// Package schedule finds the best time windows for an activity in an hourly forecast.
package schedule

import (
	"math"
	"sort"
	"time"

	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/weather"
)

// Scorer scores one raw hourly sample. *safety.Scorer satisfies it.
type Scorer interface {
	ScoreSample(activityID string, sample *weather.Sample, units weather.UnitSystem) *safety.Analysis
}

// Config holds the slot search constants.
type Config struct {
	// SlotFloor is the minimum score for an hour to seed a slot. Default: 60
	SlotFloor int

	// ExpandAbove is the score a neighbor must exceed to join a slot. Default: 70
	ExpandAbove int

	// MaxSpanHours caps the length of a slot. Default: 4
	MaxSpanHours int

	// MaxSlots caps the number of slots returned. Default: 3
	MaxSlots int
}

// DefaultConfig returns the reference slot search constants.
func DefaultConfig() Config {
	return Config{
		SlotFloor:    60,
		ExpandAbove:  70,
		MaxSpanHours: 4,
		MaxSlots:     3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SlotFloor == 0 {
		c.SlotFloor = d.SlotFloor
	}
	if c.ExpandAbove == 0 {
		c.ExpandAbove = d.ExpandAbove
	}
	if c.MaxSpanHours <= 0 {
		c.MaxSpanHours = d.MaxSpanHours
	}
	if c.MaxSlots <= 0 {
		c.MaxSlots = d.MaxSlots
	}
	return c
}

// Slot is a contiguous block of hours judged suitable for an activity.
type Slot struct {
	Start         time.Time `json:"startTime"`
	End           time.Time `json:"endTime"`
	DurationHours int       `json:"durationHours"`
	AverageScore  int       `json:"averageScore"`
	PeakScore     int       `json:"peakScore"`
	Advice        string    `json:"advice"`
}

// Contains reports whether t falls inside the slot.
func (s Slot) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Scheduler extracts ranked, non-overlapping slots from hourly forecasts.
type Scheduler struct {
	scorer Scorer
	cfg    Config
}

// NewScheduler creates a scheduler. Zero config values use defaults.
func NewScheduler(scorer Scorer, cfg Config) *Scheduler {
	return &Scheduler{
		scorer: scorer,
		cfg:    cfg.withDefaults(),
	}
}

// Config returns the effective constants.
func (s *Scheduler) Config() Config {
	return s.cfg
}

type scoredHour struct {
	at      time.Time
	score   int
	advice  string
	claimed bool
}

// FindBestSlots scores every hour and returns up to MaxSlots slots, best first.
// When day is non-nil only hours on day's calendar date in day's location are
// considered, and slot times are expressed in that location. Hours without
// data are skipped. An empty result means no good window was found.
func (s *Scheduler) FindBestSlots(hourly []weather.Sample, activityID string, units weather.UnitSystem, day *time.Time) []Slot {
	loc := time.UTC
	if day != nil {
		loc = day.Location()
	}

	hours := s.scoreHours(hourly, activityID, units, loc, day)
	if len(hours) == 0 {
		return []Slot{}
	}

	order := make([]int, len(hours))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ha, hb := hours[order[a]], hours[order[b]]
		if ha.score != hb.score {
			return ha.score > hb.score
		}
		return ha.at.Before(hb.at)
	})

	slots := make([]Slot, 0, s.cfg.MaxSlots)
	for _, peak := range order {
		if len(slots) == s.cfg.MaxSlots {
			break
		}
		if hours[peak].claimed {
			continue
		}
		if hours[peak].score < s.cfg.SlotFloor {
			break
		}
		lo, hi := s.expand(hours, peak)
		slots = append(slots, buildSlot(hours, lo, hi, peak))
	}

	sort.SliceStable(slots, func(a, b int) bool {
		if slots[a].AverageScore != slots[b].AverageScore {
			return slots[a].AverageScore > slots[b].AverageScore
		}
		if slots[a].PeakScore != slots[b].PeakScore {
			return slots[a].PeakScore > slots[b].PeakScore
		}
		return slots[a].Start.Before(slots[b].Start)
	})

	return slots
}

func (s *Scheduler) scoreHours(hourly []weather.Sample, activityID string, units weather.UnitSystem, loc *time.Location, day *time.Time) []scoredHour {
	var wantY int
	var wantM time.Month
	var wantD int
	if day != nil {
		wantY, wantM, wantD = day.Date()
	}

	hours := make([]scoredHour, 0, len(hourly))
	for i := range hourly {
		at := time.Unix(hourly[i].Time, 0).In(loc)
		if day != nil {
			y, m, d := at.Date()
			if y != wantY || m != wantM || d != wantD {
				continue
			}
		}

		analysis := s.scorer.ScoreSample(activityID, &hourly[i], units)
		if analysis == nil {
			continue
		}
		hours = append(hours, scoredHour{at: at, score: analysis.Score, advice: analysis.Advice})
	}

	sort.SliceStable(hours, func(a, b int) bool { return hours[a].at.Before(hours[b].at) })
	return hours
}

// expand grows a window around peak one neighbor at a time, preferring the
// higher-scoring side, and claims every hour it covers.
func (s *Scheduler) expand(hours []scoredHour, peak int) (lo, hi int) {
	lo, hi = peak, peak
	hours[peak].claimed = true

	for hi-lo+1 < s.cfg.MaxSpanHours {
		before, after := -1, -1
		if lo > 0 && s.joins(hours[lo-1], hours[lo]) {
			before = lo - 1
		}
		if hi+1 < len(hours) && s.joins(hours[hi+1], hours[hi]) {
			after = hi + 1
		}

		switch {
		case before >= 0 && (after < 0 || hours[before].score >= hours[after].score):
			lo = before
			hours[lo].claimed = true
		case after >= 0:
			hi = after
			hours[hi].claimed = true
		default:
			return lo, hi
		}
	}
	return lo, hi
}

func (s *Scheduler) joins(candidate, edge scoredHour) bool {
	if candidate.claimed || candidate.score <= s.cfg.ExpandAbove {
		return false
	}
	gap := candidate.at.Sub(edge.at)
	return gap == time.Hour || gap == -time.Hour
}

func buildSlot(hours []scoredHour, lo, hi, peak int) Slot {
	total := 0
	for i := lo; i <= hi; i++ {
		total += hours[i].score
	}
	count := hi - lo + 1

	return Slot{
		Start:         hours[lo].at,
		End:           hours[hi].at.Add(time.Hour),
		DurationHours: count,
		AverageScore:  int(math.Round(float64(total) / float64(count))),
		PeakScore:     hours[peak].score,
		Advice:        hours[peak].advice,
	}
}
