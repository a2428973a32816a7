package stress

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Dimension is the closed set of signals feeding the model.
type Dimension string

const (
	DimSleep       Dimension = "sleep"
	DimActivity    Dimension = "activity"
	DimMood        Dimension = "mood"
	DimConsistency Dimension = "consistency"
	DimHistorical  Dimension = "historical"
)

// Dimensions lists every scoring dimension in weight order.
var Dimensions = []Dimension{DimSleep, DimActivity, DimMood, DimConsistency, DimHistorical}

type Weights struct {
	Sleep       float64 `yaml:"sleep"`
	Activity    float64 `yaml:"activity"`
	Mood        float64 `yaml:"mood"`
	Consistency float64 `yaml:"consistency"`
	Historical  float64 `yaml:"historical"`
}

func (w Weights) For(d Dimension) float64 {
	switch d {
	case DimSleep:
		return w.Sleep
	case DimActivity:
		return w.Activity
	case DimMood:
		return w.Mood
	case DimConsistency:
		return w.Consistency
	case DimHistorical:
		return w.Historical
	}
	return 0
}

func (w Weights) Sum() float64 {
	return w.Sleep + w.Activity + w.Mood + w.Consistency + w.Historical
}

// Defaults are the sub-scores substituted when a signal is absent or invalid.
type Defaults struct {
	Sleep       int `yaml:"sleep"`
	Activity    int `yaml:"activity"`
	Mood        int `yaml:"mood"`
	Consistency int `yaml:"consistency"`
	Historical  int `yaml:"historical"`
}

type SleepThresholds struct {
	OptimalMin   float64 `yaml:"optimal_min"`
	OptimalMax   float64 `yaml:"optimal_max"`
	GoodMin      float64 `yaml:"good_min"`
	LowMin       float64 `yaml:"low_min"`
	OptimalScore int     `yaml:"optimal_score"`
	GoodScore    int     `yaml:"good_score"`
	LongScore    int     `yaml:"long_score"`
	LowScore     int     `yaml:"low_score"`
	VeryLowScore int     `yaml:"very_low_score"`
}

type ActivityThresholds struct {
	HighSteps      int `yaml:"high_steps"`
	ModerateSteps  int `yaml:"moderate_steps"`
	LowSteps       int `yaml:"low_steps"`
	HighScore      int `yaml:"high_score"`
	ModerateScore  int `yaml:"moderate_score"`
	LowScore       int `yaml:"low_score"`
	SedentaryScore int `yaml:"sedentary_score"`
}

type MoodThresholds struct {
	Window       int `yaml:"window"`
	GreatMin     int `yaml:"great_min"`
	GoodMin      int `yaml:"good_min"`
	NeutralMin   int `yaml:"neutral_min"`
	LowMin       int `yaml:"low_min"`
	GreatScore   int `yaml:"great_score"`
	GoodScore    int `yaml:"good_score"`
	NeutralScore int `yaml:"neutral_score"`
	LowScore     int `yaml:"low_score"`
	VeryLowScore int `yaml:"very_low_score"`
}

type ConsistencyThresholds struct {
	MinHistory int `yaml:"min_history"`
	Window     int `yaml:"window"`
}

type HistoricalThresholds struct {
	Window int `yaml:"window"`
}

// TierThresholds partitions [0,100]; each bound is the inclusive maximum of
// its tier, everything above HighMax is critical.
type TierThresholds struct {
	LowMax    int `yaml:"low_max"`
	MediumMax int `yaml:"medium_max"`
	HighMax   int `yaml:"high_max"`
}

type FactorRules struct {
	ImpactThreshold int `yaml:"impact_threshold"`
	MaxImpact       int `yaml:"max_impact"`
	FallbackImpact  int `yaml:"fallback_impact"`
	Max             int `yaml:"max"`
}

type ConfidenceRules struct {
	Base           float64 `yaml:"base"`
	Sleep          float64 `yaml:"sleep"`
	Steps          float64 `yaml:"steps"`
	Mood           float64 `yaml:"mood"`
	History        float64 `yaml:"history"`
	DeepHistory    float64 `yaml:"deep_history"`
	HistoryMin     int     `yaml:"history_min"`
	DeepHistoryMin int     `yaml:"deep_history_min"`
	Min            float64 `yaml:"min"`
	Max            float64 `yaml:"max"`
}

// ModelConfig consolidates every numeric constant of the scoring heuristic.
// It is passed by value; behavior changes must bump Version so persisted
// predictions stay auditable.
type ModelConfig struct {
	Version      string                `yaml:"version"`
	Weights      Weights               `yaml:"weights"`
	Defaults     Defaults              `yaml:"defaults"`
	NeutralScore int                   `yaml:"neutral_score"`
	Sleep        SleepThresholds       `yaml:"sleep"`
	Activity     ActivityThresholds    `yaml:"activity"`
	Mood         MoodThresholds        `yaml:"mood"`
	Consistency  ConsistencyThresholds `yaml:"consistency"`
	Historical   HistoricalThresholds  `yaml:"historical"`
	Tiers        TierThresholds        `yaml:"tiers"`
	Factors      FactorRules           `yaml:"factors"`
	Confidence   ConfidenceRules       `yaml:"confidence"`
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Version: "1.2",
		Weights: Weights{
			Sleep:       0.25,
			Activity:    0.20,
			Mood:        0.30,
			Consistency: 0.15,
			Historical:  0.10,
		},
		Defaults: Defaults{
			Sleep:       70,
			Activity:    60,
			Mood:        50,
			Consistency: 50,
			Historical:  50,
		},
		NeutralScore: 50,
		Sleep: SleepThresholds{
			OptimalMin:   7,
			OptimalMax:   9,
			GoodMin:      6,
			LowMin:       5,
			OptimalScore: 20,
			GoodScore:    40,
			LongScore:    50,
			LowScore:     60,
			VeryLowScore: 80,
		},
		Activity: ActivityThresholds{
			HighSteps:      8000,
			ModerateSteps:  5000,
			LowSteps:       3000,
			HighScore:      20,
			ModerateScore:  40,
			LowScore:       60,
			SedentaryScore: 80,
		},
		Mood: MoodThresholds{
			Window:       3,
			GreatMin:     80,
			GoodMin:      60,
			NeutralMin:   40,
			LowMin:       20,
			GreatScore:   20,
			GoodScore:    40,
			NeutralScore: 60,
			LowScore:     80,
			VeryLowScore: 90,
		},
		Consistency: ConsistencyThresholds{MinHistory: 3, Window: 7},
		Historical:  HistoricalThresholds{Window: 5},
		Tiers:       TierThresholds{LowMax: 30, MediumMax: 50, HighMax: 70},
		Factors: FactorRules{
			ImpactThreshold: 10,
			MaxImpact:       30,
			FallbackImpact:  15,
			Max:             3,
		},
		Confidence: ConfidenceRules{
			Base:           0.5,
			Sleep:          0.2,
			Steps:          0.15,
			Mood:           0.15,
			History:        0.1,
			DeepHistory:    0.1,
			HistoryMin:     3,
			DeepHistoryMin: 7,
			Min:            0.3,
			Max:            0.95,
		},
	}
}

// LoadModelConfig overlays a YAML file on top of the defaults. An empty path
// returns the defaults unchanged.
func LoadModelConfig(path string) (ModelConfig, error) {
	cfg := DefaultModelConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read model config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse model config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate model config: %w", err)
	}
	return cfg, nil
}

func (c ModelConfig) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("model version must not be empty")
	}
	if math.Abs(c.Weights.Sum()-1.0) > 0.001 {
		return fmt.Errorf("dimension weights must sum to 1.0, got %.3f", c.Weights.Sum())
	}
	if !(c.Tiers.LowMax < c.Tiers.MediumMax && c.Tiers.MediumMax < c.Tiers.HighMax) {
		return fmt.Errorf("tier thresholds must be strictly increasing")
	}
	if c.Confidence.Min <= 0 || c.Confidence.Max > 1 || c.Confidence.Min >= c.Confidence.Max {
		return fmt.Errorf("confidence bounds out of range")
	}
	if c.Factors.Max < 1 {
		return fmt.Errorf("factor cap must be at least 1")
	}
	return nil
}
