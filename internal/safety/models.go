// Package safety scores weather conditions for outdoor activities.
//
// Scoring is pure: a Scorer holds only immutable configuration, so it can be
// shared across goroutines and its results memoized by callers.
package safety

// Status is the coarse suitability tier derived from a score.
type Status string

const (
	StatusIdeal     Status = "Ideal"
	StatusGood      Status = "Good"
	StatusFair      Status = "Fair"
	StatusPoor      Status = "Poor"
	StatusHazardous Status = "Hazardous"
)

// Color returns the advisory display color for the tier.
func (s Status) Color() string {
	switch s {
	case StatusIdeal:
		return "#22c55e"
	case StatusGood:
		return "#84cc16"
	case StatusFair:
		return "#f59e0b"
	case StatusPoor:
		return "#f97316"
	default:
		return "#ef4444"
	}
}

// MetricStatus grades a single metric.
type MetricStatus string

const (
	MetricGood MetricStatus = "good"
	MetricFair MetricStatus = "fair"
	MetricPoor MetricStatus = "poor"
)

// MetricEvaluation is one row of the per-metric breakdown.
type MetricEvaluation struct {
	Name   string       `json:"name"`
	Value  string       `json:"value"`
	Status MetricStatus `json:"status"`
}

// Analysis is the result of scoring one weather sample for one activity.
type Analysis struct {
	Activity string             `json:"activity"`
	Score    int                `json:"score"`
	Status   Status             `json:"status"`
	Color    string             `json:"color"`
	Advice   string             `json:"advice"`
	Metrics  []MetricEvaluation `json:"metrics"`
}

// FirstPoorMetric returns the name of the first metric graded poor, or "".
func (a *Analysis) FirstPoorMetric() string {
	for _, m := range a.Metrics {
		if m.Status == MetricPoor {
			return m.Name
		}
	}
	return ""
}

// ScoringConfig holds the tunable constants of the scorer.
type ScoringConfig struct {
	// FairPenalty is deducted when a metric is outside its ideal band. Default: 20
	FairPenalty int

	// PoorPenalty is deducted when a metric is outside its warning band. Default: 60
	PoorPenalty int

	// BorderlinePenalty is the extra temperature deduction near a warning bound. Default: 15
	BorderlinePenalty int

	// BorderlineMargin is the distance to a warning bound that counts as borderline. Default: 5
	BorderlineMargin float64

	// Tier breakpoints, inclusive lower bounds. Defaults: 90, 70, 50, 30
	IdealAt int
	GoodAt  int
	FairAt  int
	PoorAt  int

	// Precipitation probability cut-offs. Defaults: 0.4, 0.15, 0.5
	PrecipLikely float64
	PrecipRisk   float64
	PrecipHeavy  float64
}

// DefaultScoringConfig returns the reference scoring constants.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		FairPenalty:       20,
		PoorPenalty:       60,
		BorderlinePenalty: 15,
		BorderlineMargin:  5,
		IdealAt:           90,
		GoodAt:            70,
		FairAt:            50,
		PoorAt:            30,
		PrecipLikely:      0.4,
		PrecipRisk:        0.15,
		PrecipHeavy:       0.5,
	}
}

// withDefaults fills zero values from DefaultScoringConfig.
func (c ScoringConfig) withDefaults() ScoringConfig {
	d := DefaultScoringConfig()
	if c.FairPenalty == 0 {
		c.FairPenalty = d.FairPenalty
	}
	if c.PoorPenalty == 0 {
		c.PoorPenalty = d.PoorPenalty
	}
	if c.BorderlinePenalty == 0 {
		c.BorderlinePenalty = d.BorderlinePenalty
	}
	if c.BorderlineMargin == 0 {
		c.BorderlineMargin = d.BorderlineMargin
	}
	if c.IdealAt == 0 {
		c.IdealAt = d.IdealAt
	}
	if c.GoodAt == 0 {
		c.GoodAt = d.GoodAt
	}
	if c.FairAt == 0 {
		c.FairAt = d.FairAt
	}
	if c.PoorAt == 0 {
		c.PoorAt = d.PoorAt
	}
	if c.PrecipLikely == 0 {
		c.PrecipLikely = d.PrecipLikely
	}
	if c.PrecipRisk == 0 {
		c.PrecipRisk = d.PrecipRisk
	}
	if c.PrecipHeavy == 0 {
		c.PrecipHeavy = d.PrecipHeavy
	}
	return c
}

// StatusFor maps a score to its tier.
func (c ScoringConfig) StatusFor(score int) Status {
	switch {
	case score >= c.IdealAt:
		return StatusIdeal
	case score >= c.GoodAt:
		return StatusGood
	case score >= c.FairAt:
		return StatusFair
	case score >= c.PoorAt:
		return StatusPoor
	default:
		return StatusHazardous
	}
}
