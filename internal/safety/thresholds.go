package safety

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Threshold table errors.
var (
	ErrInvalidTable  = errors.New("invalid threshold table")
	ErrUnknownMetric = errors.New("unknown metric")
)

//go:embed thresholds.yaml
var defaultTableYAML []byte

// DefaultActivity is the id reported for activities that are not in the table.
const DefaultActivity = "default"

// Metric identifies a numeric weather metric that an activity can be scored on.
type Metric string

const (
	MetricTemp  Metric = "temp"
	MetricWind  Metric = "wind"
	MetricUV    Metric = "uv"
	MetricCloud Metric = "cloud"
	MetricVis   Metric = "vis"
)

// Label is the short display name used in metric evaluations.
func (m Metric) Label() string {
	switch m {
	case MetricTemp:
		return "Temp"
	case MetricWind:
		return "Wind"
	case MetricUV:
		return "UV"
	case MetricCloud:
		return "Cloud"
	case MetricVis:
		return "Vis"
	default:
		return string(m)
	}
}

// Unit is the suffix appended to formatted values.
func (m Metric) Unit() string {
	switch m {
	case MetricTemp:
		return "°F"
	case MetricWind:
		return "mph"
	case MetricCloud:
		return "%"
	case MetricVis:
		return "mi"
	default:
		return ""
	}
}

func (m Metric) valid() bool {
	switch m {
	case MetricTemp, MetricWind, MetricUV, MetricCloud, MetricVis:
		return true
	}
	return false
}

// Range is an inclusive numeric interval. In YAML it is written as [min, max].
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Covers reports whether r fully contains other.
func (r Range) Covers(other Range) bool {
	return r.Min <= other.Min && r.Max >= other.Max
}

// UnmarshalYAML decodes a two-element sequence.
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	var pair []float64
	if err := node.Decode(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("line %d: range needs exactly two values, got %d", node.Line, len(pair))
	}
	if pair[0] > pair[1] {
		return fmt.Errorf("line %d: range min %v is above max %v", node.Line, pair[0], pair[1])
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

// MetricThreshold holds the ideal and warning bands for one metric.
type MetricThreshold struct {
	Metric  Metric `json:"metric"`
	Ideal   Range  `json:"ideal"`
	Warning Range  `json:"warning"`
}

// ActivityThresholds is the ordered set of metric thresholds for an activity.
type ActivityThresholds struct {
	Activity string            `json:"activity"`
	Metrics  []MetricThreshold `json:"metrics"`
}

// Lookup returns the threshold for a metric, if the activity defines one.
func (a ActivityThresholds) Lookup(m Metric) (MetricThreshold, bool) {
	for _, t := range a.Metrics {
		if t.Metric == m {
			return t, true
		}
	}
	return MetricThreshold{}, false
}

// Table is an immutable registry of activity thresholds.
type Table struct {
	activities map[string]ActivityThresholds
	aliases    map[string]string
	fallback   ActivityThresholds
}

type tableDocument struct {
	Default    yaml.Node         `yaml:"default"`
	Activities yaml.Node         `yaml:"activities"`
	Aliases    map[string]string `yaml:"aliases"`
}

type bands struct {
	Ideal   Range `yaml:"ideal"`
	Warning Range `yaml:"warning"`
}

var (
	defaultTableOnce sync.Once
	defaultTable     *Table
)

// DefaultTable returns the built-in threshold table. It is parsed once per process.
func DefaultTable() *Table {
	defaultTableOnce.Do(func() {
		t, err := LoadTable(defaultTableYAML)
		if err != nil {
			panic(fmt.Sprintf("safety: built-in thresholds: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// LoadTable parses a thresholds document. Every warning band must contain its ideal band.
func LoadTable(data []byte) (*Table, error) {
	var doc tableDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	fallback, err := decodeMetrics(DefaultActivity, &doc.Default)
	if err != nil {
		return nil, err
	}
	if len(fallback.Metrics) == 0 {
		return nil, fmt.Errorf("%w: missing default thresholds", ErrInvalidTable)
	}

	if doc.Activities.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: activities must be a mapping", ErrInvalidTable)
	}

	t := &Table{
		activities: make(map[string]ActivityThresholds),
		aliases:    make(map[string]string),
		fallback:   fallback,
	}

	content := doc.Activities.Content
	for i := 0; i+1 < len(content); i += 2 {
		id := strings.ToLower(content[i].Value)
		at, err := decodeMetrics(id, content[i+1])
		if err != nil {
			return nil, err
		}
		t.activities[id] = at
	}

	for alias, target := range doc.Aliases {
		target = strings.ToLower(target)
		if _, ok := t.activities[target]; !ok {
			return nil, fmt.Errorf("%w: alias %q points to unknown activity %q", ErrInvalidTable, alias, target)
		}
		t.aliases[strings.ToLower(alias)] = target
	}

	return t, nil
}

func decodeMetrics(activity string, node *yaml.Node) (ActivityThresholds, error) {
	at := ActivityThresholds{Activity: activity}
	if node.Kind == 0 {
		return at, nil
	}
	if node.Kind != yaml.MappingNode {
		return at, fmt.Errorf("%w: %s: expected a mapping of metrics", ErrInvalidTable, activity)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		metric := Metric(strings.ToLower(node.Content[i].Value))
		if !metric.valid() {
			return at, fmt.Errorf("%w: %s: %w %q", ErrInvalidTable, activity, ErrUnknownMetric, metric)
		}

		var b bands
		if err := node.Content[i+1].Decode(&b); err != nil {
			return at, fmt.Errorf("%w: %s.%s: %w", ErrInvalidTable, activity, metric, err)
		}
		if !b.Warning.Covers(b.Ideal) {
			return at, fmt.Errorf("%w: %s.%s: warning band must contain the ideal band", ErrInvalidTable, activity, metric)
		}

		at.Metrics = append(at.Metrics, MetricThreshold{Metric: metric, Ideal: b.Ideal, Warning: b.Warning})
	}

	return at, nil
}

// Resolve maps an activity id or alias to its canonical id. ok is false for unknown ids.
func (t *Table) Resolve(activityID string) (string, bool) {
	id := strings.ToLower(strings.TrimSpace(activityID))
	if target, ok := t.aliases[id]; ok {
		id = target
	}
	_, ok := t.activities[id]
	return id, ok
}

// Canonical resolves an activity id or alias, mapping unknown ids to
// DefaultActivity.
func (t *Table) Canonical(activityID string) string {
	id, ok := t.Resolve(activityID)
	if !ok {
		return DefaultActivity
	}
	return id
}

// Thresholds returns a copy of the thresholds for an activity, or the generic
// default for unknown ids.
func (t *Table) Thresholds(activityID string) ActivityThresholds {
	at := t.lookup(activityID)
	at.Metrics = slices.Clone(at.Metrics)
	return at
}

// lookup returns the stored thresholds. Callers must not modify Metrics.
func (t *Table) lookup(activityID string) ActivityThresholds {
	id, ok := t.Resolve(activityID)
	if !ok {
		return t.fallback
	}
	return t.activities[id]
}

// Activities returns the known canonical activity ids, sorted.
func (t *Table) Activities() []string {
	ids := make([]string, 0, len(t.activities))
	for id := range t.activities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
