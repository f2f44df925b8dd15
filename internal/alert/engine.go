package alert

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skywindow/skywindow/internal/drywindow"
	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/schedule"
	"github.com/skywindow/skywindow/internal/weather"
)

// Scorer scores one raw hourly sample.
type Scorer interface {
	ScoreSample(activityID string, sample *weather.Sample, units weather.UnitSystem) *safety.Analysis
}

// SlotFinder finds the best slots of a day.
type SlotFinder interface {
	FindBestSlots(hourly []weather.Sample, activityID string, units weather.UnitSystem, day *time.Time) []schedule.Slot
}

// Config holds the alerting constants.
type Config struct {
	// Morning report window, local hours inclusive. Defaults: 6 and 10
	MorningStartHour int
	MorningEndHour   int

	// ReportHours is how far ahead the morning report looks. Default: 12
	ReportHours int

	// ReportScore is the score an hour needs to count towards the report window. Default: 70
	ReportScore int

	// RainAbove is the precipitation probability treated as raining. Default: 0.3
	RainAbove float64

	// Dangerous cold thresholds in °F. Defaults: 10 and 5
	ColdTemperatureF float64
	ColdApparentF    float64

	// WindowLead is how early a starting best window is announced. Default: 30m
	WindowLead time.Duration

	// HistoryLimit caps the stored history. Default: 20
	HistoryLimit int

	// NewID generates notification ids. Default: uuid.NewString
	NewID func() string
}

// DefaultConfig returns the reference alerting constants.
func DefaultConfig() Config {
	return Config{
		MorningStartHour: 6,
		MorningEndHour:   10,
		ReportHours:      12,
		ReportScore:      70,
		RainAbove:        0.3,
		ColdTemperatureF: 10,
		ColdApparentF:    5,
		WindowLead:       30 * time.Minute,
		HistoryLimit:     20,
		NewID:            uuid.NewString,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MorningStartHour == 0 && c.MorningEndHour == 0 {
		c.MorningStartHour = d.MorningStartHour
		c.MorningEndHour = d.MorningEndHour
	}
	if c.ReportHours <= 0 {
		c.ReportHours = d.ReportHours
	}
	if c.ReportScore == 0 {
		c.ReportScore = d.ReportScore
	}
	if c.RainAbove == 0 {
		c.RainAbove = d.RainAbove
	}
	if c.ColdTemperatureF == 0 {
		c.ColdTemperatureF = d.ColdTemperatureF
	}
	if c.ColdApparentF == 0 {
		c.ColdApparentF = d.ColdApparentF
	}
	if c.WindowLead <= 0 {
		c.WindowLead = d.WindowLead
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.NewID == nil {
		c.NewID = d.NewID
	}
	return c
}

// Input is one evaluation request. Now carries the device's time zone.
type Input struct {
	Now        time.Time
	ActivityID string
	Units      weather.UnitSystem
	Current    *weather.Sample
	Hourly     []weather.Sample
	Minutely   []weather.MinuteSample
	State      State
}

// Decision is the outcome of an evaluation: an optional notification and the
// state to persist.
type Decision struct {
	Notification *Notification
	State        State
}

// Engine evaluates forecasts against a device's previous state. It holds no
// mutable state of its own.
type Engine struct {
	scorer Scorer
	slots  SlotFinder
	cfg    Config
}

// NewEngine creates an alert engine.
func NewEngine(scorer Scorer, slots SlotFinder, cfg Config) *Engine {
	return &Engine{
		scorer: scorer,
		slots:  slots,
		cfg:    cfg.withDefaults(),
	}
}

// Evaluate decides whether to notify. A morning report takes precedence over
// condition alerts, which take precedence over the best-window notice. Without
// a current reading nothing is sent and the state is returned unchanged.
func (e *Engine) Evaluate(in Input) Decision {
	state := in.State.Clone()

	current, ok := weather.Normalize(in.Current, in.Units)
	if !ok {
		return Decision{State: state}
	}

	note := e.morningReport(in, &state)
	if note == nil {
		note = e.conditionAlert(in, current, state.LastReading)
	}
	if note == nil {
		note = e.windowSoon(in, &state)
	}

	state.LastReading = &Reading{
		PrecipProbability: current.PrecipProbability,
		TemperatureF:      current.TemperatureF,
		Summary:           in.Current.Summary,
		ObservedAt:        in.Now,
	}
	state.UpdatedAt = in.Now

	if note != nil {
		note.ID = e.cfg.NewID()
		note.Title = note.Kind.Title()
		note.CreatedAt = in.Now
		state.Record(*note, e.cfg.HistoryLimit)
	}

	return Decision{Notification: note, State: state}
}

func (e *Engine) morningReport(in Input, state *State) *Notification {
	hour := in.Now.Hour()
	if hour < e.cfg.MorningStartHour || hour > e.cfg.MorningEndHour {
		return nil
	}
	today := in.Now.Format(time.DateOnly)
	if state.LastMorningReport == today {
		return nil
	}

	var upcoming []weather.Sample
	for _, s := range in.Hourly {
		if len(upcoming) == e.cfg.ReportHours {
			break
		}
		if time.Unix(s.Time, 0).Add(time.Hour).After(in.Now) {
			upcoming = append(upcoming, s)
		}
	}

	bestStart, bestLen := -1, 0
	runStart, runLen := -1, 0
	for i := range upcoming {
		a := e.scorer.ScoreSample(in.ActivityID, &upcoming[i], in.Units)
		if a != nil && a.Score >= e.cfg.ReportScore {
			if runLen == 0 {
				runStart = i
			}
			runLen++
			if runLen > bestLen {
				bestStart, bestLen = runStart, runLen
			}
			continue
		}
		runLen = 0
	}

	loc := in.Now.Location()
	at := func(i int) string {
		return time.Unix(upcoming[i].Time, 0).In(loc).Format("3 PM")
	}
	activity := strings.ToLower(in.ActivityID)

	var body string
	switch {
	case bestLen >= 2:
		body = fmt.Sprintf("Morning %s Report: Best window is %s - %s. Go for it!", activity, at(bestStart), at(bestStart+bestLen-1))
	case bestLen == 1:
		body = fmt.Sprintf("Morning %s Report: Short window around %s.", activity, at(bestStart))
	default:
		body = fmt.Sprintf("Morning %s Report: Conditions look tough today. Check the app for details.", activity)
	}

	state.LastMorningReport = today
	return &Notification{Kind: KindMorningReport, Body: body}
}

func (e *Engine) conditionAlert(in Input, current weather.NormalizedSample, last *Reading) *Notification {
	wasRaining := last != nil && last.PrecipProbability > e.cfg.RainAbove
	isRaining := current.PrecipProbability > e.cfg.RainAbove
	cold := current.TemperatureF < e.cfg.ColdTemperatureF || current.ApparentTemperatureF < e.cfg.ColdApparentF

	trend := func() string {
		return drywindow.Trend(current, weather.NormalizeMinutes(in.Minutely, in.Units))
	}

	switch {
	case !wasRaining && isRaining:
		summary := in.Current.Summary
		if summary == "" {
			summary = "Cloudy"
		}
		body := strings.TrimSpace(fmt.Sprintf("Rain starting locally (%s). %s", summary, trend()))
		return &Notification{Kind: KindRainStarting, Body: body}
	case cold:
		if last != nil && last.TemperatureF < e.cfg.ColdTemperatureF {
			return nil
		}
		temp := int(math.Round(*in.Current.Temperature))
		return &Notification{Kind: KindDangerousCold, Body: fmt.Sprintf("Dangerously Cold: %d°. Stay safe!", temp)}
	case wasRaining && !isRaining:
		body := strings.TrimSpace("The rain has stopped! " + trend())
		return &Notification{Kind: KindRainStopped, Body: body}
	}
	return nil
}

func (e *Engine) windowSoon(in Input, state *State) *Notification {
	if e.slots == nil {
		return nil
	}
	slots := e.slots.FindBestSlots(in.Hourly, in.ActivityID, in.Units, &in.Now)
	if len(slots) == 0 {
		return nil
	}

	best := slots[0]
	lead := best.Start.Sub(in.Now)
	if lead <= 0 || lead > e.cfg.WindowLead {
		return nil
	}
	if state.LastWindowStart != nil && state.LastWindowStart.Equal(best.Start) {
		return nil
	}

	start := best.Start
	state.LastWindowStart = &start

	minutes := int(math.Round(lead.Minutes()))
	body := fmt.Sprintf("Your best %s window starts in %d min (%s, score %d). %s",
		strings.ToLower(in.ActivityID), minutes, best.Start.In(in.Now.Location()).Format("3 PM"), best.AverageScore, best.Advice)
	return &Notification{Kind: KindWindowSoon, Body: strings.TrimSpace(body)}
}
