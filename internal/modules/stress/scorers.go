package stress

import (
	"math"

	"github.com/harmonia-app/harmonia-backend/internal/types"
)

// Signal scorers map one input dimension each onto [0,100], higher meaning
// more stress-indicative. All of them are total: missing or invalid input
// resolves to the configured default instead of an error.

// SleepScore buckets last night's sleep. Zero and NaN count as "no data",
// which is itself treated as concerning.
func (c ModelConfig) SleepScore(sleepHours *float64) int {
	if sleepHours == nil || *sleepHours == 0 || math.IsNaN(*sleepHours) {
		return c.Defaults.Sleep
	}
	h := *sleepHours
	switch {
	case h >= c.Sleep.OptimalMin && h <= c.Sleep.OptimalMax:
		return c.Sleep.OptimalScore
	case h >= c.Sleep.GoodMin && h < c.Sleep.OptimalMin:
		return c.Sleep.GoodScore
	case h > c.Sleep.OptimalMax:
		return c.Sleep.LongScore
	case h >= c.Sleep.LowMin && h < c.Sleep.GoodMin:
		return c.Sleep.LowScore
	default:
		return c.Sleep.VeryLowScore
	}
}

// ActivityScore buckets the day's step count.
func (c ModelConfig) ActivityScore(steps *int) int {
	if steps == nil || *steps == 0 {
		return c.Defaults.Activity
	}
	s := *steps
	switch {
	case s >= c.Activity.HighSteps:
		return c.Activity.HighScore
	case s >= c.Activity.ModerateSteps:
		return c.Activity.ModerateScore
	case s >= c.Activity.LowSteps:
		return c.Activity.LowScore
	default:
		return c.Activity.SedentaryScore
	}
}

// MoodScore averages the newest mood entries (up to the configured window)
// and maps the average inversely onto a stress sub-score: good reported mood
// means low stress.
func (c ModelConfig) MoodScore(entries []types.MoodEntry) int {
	if len(entries) == 0 {
		return c.Defaults.Mood
	}
	start := len(entries) - c.Mood.Window
	if start < 0 {
		start = 0
	}
	var sum, n int
	for _, e := range entries[start:] {
		if e.MoodScore == nil || *e.MoodScore < 0 || *e.MoodScore > 100 {
			continue
		}
		sum += *e.MoodScore
		n++
	}
	if n == 0 {
		return c.Defaults.Mood
	}
	avg := float64(sum) / float64(n)
	switch {
	case avg >= float64(c.Mood.GreatMin):
		return c.Mood.GreatScore
	case avg >= float64(c.Mood.GoodMin):
		return c.Mood.GoodScore
	case avg >= float64(c.Mood.NeutralMin):
		return c.Mood.NeutralScore
	case avg >= float64(c.Mood.LowMin):
		return c.Mood.LowScore
	default:
		return c.Mood.VeryLowScore
	}
}

// ConsistencyScore measures how complete the recent tracking routine was:
// the fewer days with any data, the higher the sub-score. History must be
// ordered most-recent-first.
func (c ModelConfig) ConsistencyScore(history []*types.DailyRecord) int {
	if len(history) < c.Consistency.MinHistory {
		return c.Defaults.Consistency
	}
	window := history
	if len(window) > c.Consistency.Window {
		window = window[:c.Consistency.Window]
	}
	var withData int
	for _, rec := range window {
		if rec != nil && rec.HasWellbeingData() {
			withData++
		}
	}
	completeness := float64(withData) / float64(len(window))
	return int(math.Round(100 * (1 - completeness)))
}

// HistoricalScore averages the most recent persisted stress scores. History
// must be ordered most-recent-first; records without a prediction are skipped.
func (c ModelConfig) HistoricalScore(history []*types.DailyRecord) int {
	if len(history) == 0 {
		return c.Defaults.Historical
	}
	window := history
	if len(window) > c.Historical.Window {
		window = window[:c.Historical.Window]
	}
	var sum, n int
	for _, rec := range window {
		if rec == nil || rec.StressPrediction == nil {
			continue
		}
		sum += rec.StressPrediction.Score
		n++
	}
	if n == 0 {
		return c.Defaults.Historical
	}
	return int(math.Round(float64(sum) / float64(n)))
}
