package stress

import (
	"math"
	"sort"
	"time"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

// Input carries one day's signals plus prior records, most recent first.
// The engine never mutates any of it.
type Input struct {
	SleepHours  *float64
	Steps       *int
	MoodEntries []types.MoodEntry
	History     []*types.DailyRecord
}

// Engine turns an Input into a StressPrediction. It cannot fail: every scorer
// is total, and an unexpected panic inside Predict is converted into the
// canned default prediction at this boundary.
type Engine struct {
	cfg ModelConfig
	log *logger.Logger
	now func() time.Time
}

func NewEngine(cfg ModelConfig, log *logger.Logger) *Engine {
	return &Engine{
		cfg: cfg,
		log: log.With("component", "StressEngine"),
		now: time.Now,
	}
}

func (e *Engine) Config() ModelConfig { return e.cfg }

func (e *Engine) Predict(in Input) (pred types.StressPrediction) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("stress engine panic, substituting default prediction", "panic", r)
			pred = e.DefaultPrediction()
		}
	}()

	scores := map[Dimension]int{
		DimSleep:       e.cfg.SleepScore(in.SleepHours),
		DimActivity:    e.cfg.ActivityScore(in.Steps),
		DimMood:        e.cfg.MoodScore(in.MoodEntries),
		DimConsistency: e.cfg.ConsistencyScore(in.History),
		DimHistorical:  e.cfg.HistoricalScore(in.History),
	}

	total := e.cfg.TotalScore(scores)
	pred = types.StressPrediction{
		Score:        total,
		Level:        e.cfg.Level(total),
		Factors:      e.cfg.KeyFactors(scores, total),
		Confidence:   e.cfg.ConfidenceFor(in),
		ModelVersion: e.cfg.Version,
		Breakdown: types.StressBreakdown{
			Sleep:       scores[DimSleep],
			Activity:    scores[DimActivity],
			Mood:        scores[DimMood],
			Consistency: scores[DimConsistency],
			Historical:  scores[DimHistorical],
		},
		GeneratedAt: e.now().UTC(),
	}
	return pred
}

// DefaultPrediction is the fixed always-valid result substituted whenever
// normal computation fails anywhere in the pipeline.
func (e *Engine) DefaultPrediction() types.StressPrediction {
	n := e.cfg.NeutralScore
	return types.StressPrediction{
		Score:      n,
		Level:      types.StressMedium,
		Confidence: e.cfg.Confidence.Min,
		Factors: []types.StressFactor{{
			Factor:      types.FactorSystemRecovery,
			Impact:      10,
			Description: "System recovering, basic analysis in use",
		}},
		ModelVersion: e.cfg.Version,
		Breakdown: types.StressBreakdown{
			Sleep:       n,
			Activity:    n,
			Mood:        n,
			Consistency: n,
			Historical:  n,
		},
		GeneratedAt: e.now().UTC(),
	}
}

// TotalScore renormalizes the weighted average over whichever dimensions are
// present in scores, clamped to [0,100]. No dimensions at all yields the
// neutral score.
func (c ModelConfig) TotalScore(scores map[Dimension]int) int {
	var total, weight float64
	for _, dim := range Dimensions {
		score, ok := scores[dim]
		if !ok {
			continue
		}
		w := c.Weights.For(dim)
		total += float64(score) * w
		weight += w
	}
	if weight == 0 {
		return c.NeutralScore
	}
	out := int(math.Round(total / weight))
	if out < 0 {
		return 0
	}
	if out > 100 {
		return 100
	}
	return out
}

// Level classifies a total score into the ordered severity tiers.
func (c ModelConfig) Level(score int) types.StressLevel {
	switch {
	case score <= c.Tiers.LowMax:
		return types.StressLow
	case score <= c.Tiers.MediumMax:
		return types.StressMedium
	case score <= c.Tiers.HighMax:
		return types.StressHigh
	default:
		return types.StressCritical
	}
}

// KeyFactors picks the dimensions that diverge most from the total, capped to
// the configured maximum. When nothing crosses the threshold the single worst
// dimension is reported with a fixed fallback impact.
func (c ModelConfig) KeyFactors(scores map[Dimension]int, total int) []types.StressFactor {
	factors := make([]types.StressFactor, 0, c.Factors.Max)
	for _, dim := range Dimensions {
		score, ok := scores[dim]
		if !ok {
			continue
		}
		diff := score - total
		if diff < 0 {
			diff = -diff
		}
		if diff <= c.Factors.ImpactThreshold {
			continue
		}
		impact := diff
		if impact > c.Factors.MaxImpact {
			impact = c.Factors.MaxImpact
		}
		factors = append(factors, types.StressFactor{
			Factor:      factorName(dim),
			Impact:      impact,
			Description: c.FactorDescription(dim, score),
		})
	}

	if len(factors) == 0 {
		main := c.mainDimension(scores)
		factors = append(factors, types.StressFactor{
			Factor:      factorName(main),
			Impact:      c.Factors.FallbackImpact,
			Description: c.FactorDescription(main, scores[main]),
		})
	}

	sort.SliceStable(factors, func(i, j int) bool { return factors[i].Impact > factors[j].Impact })
	if len(factors) > c.Factors.Max {
		factors = factors[:c.Factors.Max]
	}
	return factors
}

func (c ModelConfig) mainDimension(scores map[Dimension]int) Dimension {
	main := DimMood
	highest := -1
	for _, dim := range Dimensions {
		if score, ok := scores[dim]; ok && score > highest {
			highest = score
			main = dim
		}
	}
	return main
}

// ConfidenceFor grows with the amount of data backing the prediction, bounded
// to the configured [min, max] and rounded to 2 decimals.
func (c ModelConfig) ConfidenceFor(in Input) float64 {
	conf := c.Confidence.Base
	if in.SleepHours != nil && !math.IsNaN(*in.SleepHours) {
		conf += c.Confidence.Sleep
	}
	if in.Steps != nil {
		conf += c.Confidence.Steps
	}
	if len(in.MoodEntries) > 0 {
		conf += c.Confidence.Mood
	}
	if len(in.History) >= c.Confidence.HistoryMin {
		conf += c.Confidence.History
	}
	if len(in.History) >= c.Confidence.DeepHistoryMin {
		conf += c.Confidence.DeepHistory
	}
	if conf < c.Confidence.Min {
		conf = c.Confidence.Min
	}
	if conf > c.Confidence.Max {
		conf = c.Confidence.Max
	}
	return math.Round(conf*100) / 100
}

func factorName(d Dimension) types.StressFactorName {
	switch d {
	case DimSleep:
		return types.FactorSleep
	case DimActivity:
		return types.FactorActivity
	case DimMood:
		return types.FactorMood
	case DimConsistency:
		return types.FactorConsistency
	case DimHistorical:
		return types.FactorHistorical
	}
	return types.FactorSystemRecovery
}
