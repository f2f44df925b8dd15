package safety

import (
	"fmt"
	"math"

	"github.com/skywindow/skywindow/internal/weather"
)

// Scorer grades normalized weather samples for activities.
type Scorer struct {
	table *Table
	cfg   ScoringConfig
}

// NewScorer creates a scorer. A nil table uses DefaultTable; zero config values use defaults.
func NewScorer(table *Table, cfg ScoringConfig) *Scorer {
	if table == nil {
		table = DefaultTable()
	}
	return &Scorer{
		table: table,
		cfg:   cfg.withDefaults(),
	}
}

// Table returns the threshold table the scorer uses.
func (s *Scorer) Table() *Table {
	return s.table
}

// Config returns the effective scoring constants.
func (s *Scorer) Config() ScoringConfig {
	return s.cfg
}

// Score grades a normalized sample. It returns nil only when n is nil.
func (s *Scorer) Score(activityID string, n *weather.NormalizedSample) *Analysis {
	if n == nil {
		return nil
	}

	id := s.table.Canonical(activityID)
	thresholds := s.table.lookup(id)

	score := 100
	metrics := make([]MetricEvaluation, 0, len(thresholds.Metrics)+1)
	for _, t := range thresholds.Metrics {
		eval, penalty := s.evaluate(t, metricValue(t.Metric, n))
		score -= penalty
		metrics = append(metrics, eval)
	}

	conds := s.classify(n, score)
	advice := DefaultAdvice
	for _, rule := range Rules(id) {
		if !rule.When(conds) {
			continue
		}
		score -= rule.Deduct
		advice = rule.Advice
		if rule.Metric != nil {
			metrics = append(metrics, *rule.Metric)
		}
		break
	}

	score = max(0, min(100, score))
	status := s.cfg.StatusFor(score)

	return &Analysis{
		Activity: id,
		Score:    score,
		Status:   status,
		Color:    status.Color(),
		Advice:   advice,
		Metrics:  metrics,
	}
}

// ScoreSample normalizes a raw sample and scores it. It returns nil when the
// sample carries no data.
func (s *Scorer) ScoreSample(activityID string, sample *weather.Sample, units weather.UnitSystem) *Analysis {
	n, ok := weather.Normalize(sample, units)
	if !ok {
		return nil
	}
	return s.Score(activityID, &n)
}

// Classify exposes the precipitation classification used by the rules.
func (s *Scorer) Classify(n *weather.NormalizedSample) Conditions {
	return s.classify(n, 100)
}

func (s *Scorer) classify(n *weather.NormalizedSample, score int) Conditions {
	freezing := n.Freezing()
	likely := n.PrecipProbability > s.cfg.PrecipLikely

	c := Conditions{Sample: n, Score: score}
	c.Snowing = freezing && (n.Condition.IsSnowLabeled() || likely)
	c.Raining = !freezing && (n.Condition.IsRainLabeled() || likely)
	c.RainRisk = !c.Raining && !c.Snowing && n.PrecipProbability > s.cfg.PrecipRisk
	c.HeavyRain = n.PrecipProbability > s.cfg.PrecipHeavy
	return c
}

// evaluate grades one metric value and returns the deduction it costs.
func (s *Scorer) evaluate(t MetricThreshold, value float64) (MetricEvaluation, int) {
	eval := MetricEvaluation{
		Name:   t.Metric.Label(),
		Value:  fmt.Sprintf("%d%s", int(math.Round(value)), t.Metric.Unit()),
		Status: MetricGood,
	}

	switch {
	case !t.Warning.Contains(value):
		eval.Status = MetricPoor
		return eval, s.cfg.PoorPenalty
	case !t.Ideal.Contains(value):
		eval.Status = MetricFair
		penalty := s.cfg.FairPenalty
		if t.Metric == MetricTemp && s.nearWarningBound(t.Warning, value) {
			penalty += s.cfg.BorderlinePenalty
		}
		return eval, penalty
	default:
		return eval, 0
	}
}

func (s *Scorer) nearWarningBound(warning Range, value float64) bool {
	return value-warning.Min <= s.cfg.BorderlineMargin || warning.Max-value <= s.cfg.BorderlineMargin
}

func metricValue(m Metric, n *weather.NormalizedSample) float64 {
	switch m {
	case MetricTemp:
		return n.TemperatureF
	case MetricWind:
		return n.WindMph
	case MetricUV:
		return n.UVIndex
	case MetricCloud:
		return n.CloudCover * 100
	case MetricVis:
		return n.VisibilityMiles
	default:
		return 0
	}
}
