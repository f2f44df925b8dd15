package safety

import "github.com/skywindow/skywindow/internal/weather"

// DefaultAdvice is returned when no rule of an activity matches.
const DefaultAdvice = "Enjoy your activity!"

// Conditions is the view of a sample that rule predicates evaluate.
type Conditions struct {
	Sample *weather.NormalizedSample

	// Score is the running score after metric deductions, before any rule applies.
	Score int

	Snowing   bool
	Raining   bool
	RainRisk  bool
	HeavyRain bool
}

// Rule is one categorical override. Rules of an activity are evaluated in order
// and the first matching rule supplies the deduction, the advice, and an optional
// extra metric row.
type Rule struct {
	When   func(Conditions) bool
	Deduct int
	Advice string
	Metric *MetricEvaluation
}

func snowing(c Conditions) bool       { return c.Snowing }
func raining(c Conditions) bool       { return c.Raining }
func rainRisk(c Conditions) bool      { return c.RainRisk }
func heavyRain(c Conditions) bool     { return c.HeavyRain }
func precipitating(c Conditions) bool { return c.Raining || c.Snowing }
func always(Conditions) bool          { return true }

func scoreAtLeast(n int) func(Conditions) bool {
	return func(c Conditions) bool { return c.Score >= n }
}

func windAbove(mph float64) func(Conditions) bool {
	return func(c Conditions) bool { return c.Sample.WindMph > mph }
}

func visibilityBelow(miles float64) func(Conditions) bool {
	return func(c Conditions) bool { return c.Sample.VisibilityMiles < miles }
}

func temperatureBelow(f float64) func(Conditions) bool {
	return func(c Conditions) bool { return c.Sample.TemperatureF < f }
}

func cloudAbove(fraction float64) func(Conditions) bool {
	return func(c Conditions) bool { return c.Sample.CloudCover > fraction }
}

func flag(name, value string, status MetricStatus) *MetricEvaluation {
	return &MetricEvaluation{Name: name, Value: value, Status: status}
}

var (
	walkRules = []Rule{
		{When: snowing, Deduct: 60, Advice: "Snow/Ice risk. Trails slippery.", Metric: flag("Cond", "Snow", MetricPoor)},
		{When: raining, Deduct: 40, Advice: "It's raining. Wear waterproof gear."},
		{When: rainRisk, Deduct: 15, Advice: "Rain possible. Pack an umbrella."},
		{When: scoreAtLeast(90), Advice: "Beautiful day to be outside."},
		{When: always, Advice: "Decent conditions."},
	}

	courtRules = []Rule{
		{When: raining, Deduct: 100, Advice: "Courts are wet. Unplayable."},
		{When: rainRisk, Deduct: 40, Advice: "Rain might stop play."},
		{When: windAbove(15), Deduct: 30, Advice: "Wind will affect ball flight."},
		{When: scoreAtLeast(90), Advice: "Perfect serving weather."},
		{When: always, Advice: "Court conditions are okay."},
	}
)

var rulebook = map[string][]Rule{
	"run": {
		{When: snowing, Deduct: 50, Advice: "Slippery footing. Spiked shoes recommended.", Metric: flag("Cond", "Ice", MetricPoor)},
		{When: raining, Deduct: 30, Advice: "Wet run. Watch your step.", Metric: flag("Cond", "Rain", MetricPoor)},
		{When: rainRisk, Deduct: 10, Advice: "Chance of rain. Bring a shell.", Metric: flag("Risk", "Rainy", MetricFair)},
		{When: scoreAtLeast(90), Advice: "Perfect running conditions. Go for a PR!"},
		{When: windAbove(20), Advice: "Strong headwinds. It's gonna be a workout."},
		{When: func(c Conditions) bool { return c.Score < 70 }, Advice: "Conditions are challenging."},
		{When: always, Advice: "Good conditions, stay hydrated."},
	},
	"walk": walkRules,
	"hike": walkRules,
	"cycle": {
		{When: snowing, Deduct: 80, Advice: "Too dangerous. Ice on roads.", Metric: flag("Road", "Icy", MetricPoor)},
		{When: raining, Deduct: 50, Advice: "Slippery turns & poor braking.", Metric: flag("Road", "Wet", MetricPoor)},
		{When: rainRisk, Deduct: 20, Advice: "Roads might be slick."},
		{When: windAbove(20), Deduct: 30, Advice: "Dangerous crosswinds."},
		{When: scoreAtLeast(90), Advice: "The road is calling. Perfect ride day."},
		{When: always, Advice: "Okay for a ride, check the wind."},
	},
	"moto": {
		{When: snowing, Deduct: 100, Advice: "DO NOT RIDE. Ice hazard.", Metric: flag("Risk", "High", MetricPoor)},
		{When: raining, Deduct: 60, Advice: "Traction loss likely. Stay home."},
		{When: rainRisk, Deduct: 30, Advice: "Rain possible. Grip reduced."},
		{When: visibilityBelow(3), Deduct: 40, Advice: "Low visibility. Dangerous."},
		{When: scoreAtLeast(90), Advice: "Carve those canyons. Perfect grip."},
		{When: always, Advice: "Wear full gear, watch for slick spots."},
	},
	"drive": {
		{When: snowing, Deduct: 50, Advice: "Ice/Snow. Drive slow."},
		{When: heavyRain, Deduct: 40, Advice: "Hydroplaning risk. Slow down."},
		{When: rainRisk, Advice: "Roads might be damp."},
		{When: visibilityBelow(2), Deduct: 50, Advice: "Foggy. Use low beams."},
	},
	"tennis":     courtRules,
	"pickleball": courtRules,
	"golf": {
		{When: snowing, Deduct: 100, Advice: "Course covered in snow."},
		{When: raining, Deduct: 50, Advice: "Cart path only. Bring rain gear."},
		{When: rainRisk, Deduct: 20, Advice: "Chance of showers."},
		{When: scoreAtLeast(90), Advice: "Hit the links. Conditions are prime."},
		{When: always, Advice: "Playable, but maybe windy/cold."},
	},
	"yoga": {
		{When: raining, Deduct: 100, Advice: "Go to the studio. Grass is wet."},
		{When: rainRisk, Deduct: 40, Advice: "Keep a mat towel handy (rain chance)."},
		{When: temperatureBelow(60), Deduct: 40, Advice: "Too cold for outdoor flow."},
		{When: scoreAtLeast(90), Advice: "Namaste outside. Perfect zen."},
		{When: always, Advice: "A bit chilly/breezy for outdoor flow."},
	},
	"picnic": {
		{When: raining, Deduct: 100, Advice: "Rain will ruin the sandwiches."},
		{When: rainRisk, Deduct: 40, Advice: "Maybe find a shelter."},
		{When: temperatureBelow(55), Deduct: 40, Advice: "Too cold to sit still."},
		{When: scoreAtLeast(90), Advice: "Pack the basket! Ideal picnic weather."},
		{When: always, Advice: "Conditions are fair."},
	},
	"stargaze": {
		{When: cloudAbove(0.5), Deduct: 80, Advice: "Too cloudy. Stars info hidden."},
		{When: precipitating, Deduct: 100, Advice: "No view tonight."},
		{When: scoreAtLeast(80), Advice: "Look up! Clear skies tonight."},
		{When: always, Advice: "Some viewing possible between clouds."},
	},
	"fishing": {
		{When: snowing, Advice: "Freezing lines. Hard day."},
		{When: heavyRain, Advice: "Fish bite in rain, but it's miserable."},
		{When: temperatureBelow(40), Advice: "Fish are sluggish / deep."},
		{When: always, Advice: "Tight lines! Conditions are fair."},
	},
	"camera": {
		{When: raining, Deduct: 40, Advice: "Water hazard for gear.", Metric: flag("Lens", "Wet", MetricPoor)},
		{When: rainRisk, Deduct: 10, Advice: "Rain risk. Protect the gear."},
		{When: scoreAtLeast(90), Advice: "Crisp visibility. Great for landscapes."},
		{When: always, Advice: "Check your gear, conditions vary."},
	},
	DefaultActivity: {
		{When: snowing, Deduct: 50, Advice: "Snow and ice about. Dress warm and step carefully.", Metric: flag("Cond", "Snow", MetricPoor)},
		{When: raining, Deduct: 30, Advice: "It's raining. Consider an indoor option.", Metric: flag("Cond", "Rain", MetricPoor)},
		{When: rainRisk, Deduct: 10, Advice: "Chance of rain. Keep a layer handy."},
		{When: scoreAtLeast(70), Advice: "Looks like a good day to be outside."},
		{When: always, Advice: "Conditions are less than ideal."},
	},
}

// Rules returns the ordered rule chain for a canonical activity id.
// Unknown ids get the generic chain.
func Rules(activityID string) []Rule {
	rules, ok := rulebook[activityID]
	if !ok {
		rules = rulebook[DefaultActivity]
	}
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
