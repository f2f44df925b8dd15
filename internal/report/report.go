// Package report assembles the per-location guidance returned by the API:
// current conditions scored for an activity, the next dry window, the best
// slots of the day and a narrative summary.
package report

import (
	"time"

	"github.com/skywindow/skywindow/internal/drywindow"
	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/schedule"
	"github.com/skywindow/skywindow/internal/summary"
	"github.com/skywindow/skywindow/internal/wardrobe"
	"github.com/skywindow/skywindow/internal/weather"
)

// Config holds the dry-window parameters used by Build.
type Config struct {
	// DryThreshold is the precipitation probability still counted as dry (default: 0.2).
	DryThreshold float64

	// DryMinutes is the minimum dry stretch in minutes (default: 15).
	DryMinutes int
}

// Current is the assessment of a single sample.
type Current struct {
	Analysis    *safety.Analysis `json:"analysis"`
	Temperature *safety.Verdict  `json:"temperatureSafety"`
	DogWalk     *safety.Verdict  `json:"dogWalk"`
	Severity    string           `json:"severityOverride,omitempty"`
	Wardrobe    wardrobe.Outfit  `json:"wardrobe"`
}

// DryWindow is a dry-window result with the minute trend message.
type DryWindow struct {
	drywindow.Window
	Trend string `json:"trend,omitempty"`
}

// Report is the full guidance for one location and activity.
type Report struct {
	Activity    string             `json:"activity"`
	Units       weather.UnitSystem `json:"units"`
	TimeZone    string             `json:"timeZone"`
	GeneratedAt time.Time          `json:"generatedAt"`
	FetchedAt   time.Time          `json:"fetchedAt"`
	Current     *Current           `json:"current,omitempty"`
	DryWindow   *DryWindow         `json:"dryWindow,omitempty"`
	Slots       []schedule.Slot    `json:"slots"`
	Narrative   string             `json:"narrative,omitempty"`
	Summary     string             `json:"summary,omitempty"`
}

// Builder produces reports. It is safe for concurrent use.
type Builder struct {
	scorer     *safety.Scorer
	scheduler  *schedule.Scheduler
	summarizer *summary.Summarizer
	cfg        Config
}

// NewBuilder creates a report builder.
func NewBuilder(scorer *safety.Scorer, scheduler *schedule.Scheduler, summarizer *summary.Summarizer, cfg Config) *Builder {
	if cfg.DryThreshold <= 0 {
		cfg.DryThreshold = drywindow.DefaultThreshold
	}
	if cfg.DryMinutes <= 0 {
		cfg.DryMinutes = drywindow.DefaultMinDuration
	}
	return &Builder{
		scorer:     scorer,
		scheduler:  scheduler,
		summarizer: summarizer,
		cfg:        cfg,
	}
}

// Table returns the activity threshold table reports are scored against.
func (b *Builder) Table() *safety.Table {
	return b.scorer.Table()
}

// Assess scores one sample for an activity. The second result is false when
// the sample carries no temperature.
func (b *Builder) Assess(activityID string, sample *weather.Sample, units weather.UnitSystem) (*Current, bool) {
	n, ok := weather.Normalize(sample, units)
	if !ok {
		return nil, false
	}
	return &Current{
		Analysis:    b.scorer.Score(activityID, &n),
		Temperature: safety.AssessTemperature(&n),
		DogWalk:     safety.AssessDogWalk(&n),
		Severity:    safety.SeverityOverride(&n),
		Wardrobe:    wardrobe.Recommend(b.scorer.Table(), activityID, &n),
	}, true
}

// DryWindow runs the dry-window search over a minute series. current, when
// present, drives the trend message.
func (b *Builder) DryWindow(series []weather.MinuteSample, current *weather.Sample, units weather.UnitSystem, threshold float64, minDuration int) DryWindow {
	if threshold <= 0 {
		threshold = b.cfg.DryThreshold
	}
	if minDuration <= 0 {
		minDuration = b.cfg.DryMinutes
	}

	minutes := weather.NormalizeMinutes(series, units)
	out := DryWindow{Window: drywindow.Find(minutes, threshold, minDuration)}
	if n, ok := weather.Normalize(current, units); ok {
		out.Trend = drywindow.Trend(n, minutes)
	}
	return out
}

// Slots returns the best slots on now's calendar date in now's location.
func (b *Builder) Slots(hourly []weather.Sample, activityID string, units weather.UnitSystem, now time.Time) []schedule.Slot {
	return b.scheduler.FindBestSlots(hourly, activityID, units, &now)
}

// Narrative returns the day narrative and the short free summary.
func (b *Builder) Narrative(hourly []weather.Sample, current *weather.Sample, activityID string, units weather.UnitSystem, now time.Time) (string, string) {
	return b.summarizer.SummarizeDay(hourly, activityID, units, now),
		summary.FreeSummary(current, activityID, units, now)
}

// Build assembles a report from a fetched forecast. now carries the time
// zone the report is expressed in.
func (b *Builder) Build(f *weather.Forecast, activityID string, now time.Time) *Report {
	r := &Report{
		Activity:    activityID,
		Units:       f.Units,
		TimeZone:    now.Location().String(),
		GeneratedAt: now,
		FetchedAt:   f.FetchedAt,
		Slots:       b.Slots(f.Hourly, activityID, f.Units, now),
	}

	if current, ok := b.Assess(activityID, f.Currently, f.Units); ok {
		r.Current = current
	}
	if len(f.Minutely) > 0 {
		dw := b.DryWindow(f.Minutely, f.Currently, f.Units, 0, 0)
		r.DryWindow = &dw
	}
	r.Narrative, r.Summary = b.Narrative(f.Hourly, f.Currently, activityID, f.Units, now)

	return r
}
