package stress

import (
	"math"
	"testing"
	"time"

	"github.com/harmonia-app/harmonia-backend/internal/types"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func histRecord(score int, withData bool) *types.DailyRecord {
	rec := &types.DailyRecord{Day: time.Now()}
	if withData {
		rec.Wellbeing = &types.Wellbeing{SleepHours: fptr(7.5)}
	}
	if score >= 0 {
		rec.StressPrediction = &types.StressPrediction{Score: score, Level: DefaultModelConfig().Level(score)}
	}
	return rec
}

func TestSleepScore_OptimalRange(t *testing.T) {
	cfg := DefaultModelConfig()
	for _, h := range []float64{7, 7.5, 8, 8.9, 9} {
		if got := cfg.SleepScore(&h); got != 20 {
			t.Fatalf("SleepScore(%v) = %d, want 20", h, got)
		}
	}
}

func TestSleepScore_Buckets(t *testing.T) {
	cfg := DefaultModelConfig()
	cases := []struct {
		hours float64
		want  int
	}{
		{6, 40}, {6.9, 40},
		{9.5, 50}, {12, 50},
		{5, 60}, {5.9, 60},
		{4.9, 80}, {1, 80},
	}
	for _, tc := range cases {
		if got := cfg.SleepScore(&tc.hours); got != tc.want {
			t.Fatalf("SleepScore(%v) = %d, want %d", tc.hours, got, tc.want)
		}
	}
}

func TestSleepScore_MissingOrInvalid(t *testing.T) {
	cfg := DefaultModelConfig()
	if got := cfg.SleepScore(nil); got != 70 {
		t.Fatalf("SleepScore(nil) = %d, want 70", got)
	}
	if got := cfg.SleepScore(fptr(0)); got != 70 {
		t.Fatalf("SleepScore(0) = %d, want 70", got)
	}
	if got := cfg.SleepScore(fptr(math.NaN())); got != 70 {
		t.Fatalf("SleepScore(NaN) = %d, want 70", got)
	}
}

func TestSleepScore_AlwaysInRange(t *testing.T) {
	cfg := DefaultModelConfig()
	for h := -5.0; h <= 30; h += 0.25 {
		v := h
		got := cfg.SleepScore(&v)
		if got < 0 || got > 100 {
			t.Fatalf("SleepScore(%v) = %d, out of [0,100]", h, got)
		}
	}
}

func TestActivityScore_Buckets(t *testing.T) {
	cfg := DefaultModelConfig()
	cases := []struct {
		steps int
		want  int
	}{
		{8000, 20}, {15000, 20},
		{5000, 40}, {7999, 40},
		{3000, 60}, {4999, 60},
		{2999, 80}, {100, 80},
	}
	for _, tc := range cases {
		if got := cfg.ActivityScore(&tc.steps); got != tc.want {
			t.Fatalf("ActivityScore(%d) = %d, want %d", tc.steps, got, tc.want)
		}
	}
	if got := cfg.ActivityScore(nil); got != 60 {
		t.Fatalf("ActivityScore(nil) = %d, want 60", got)
	}
	if got := cfg.ActivityScore(iptr(0)); got != 60 {
		t.Fatalf("ActivityScore(0) = %d, want 60", got)
	}
}

func TestMoodScore_UsesNewestThreeEntries(t *testing.T) {
	cfg := DefaultModelConfig()
	entries := []types.MoodEntry{
		{MoodScore: iptr(10)}, // outside window
		{MoodScore: iptr(85)},
		{MoodScore: iptr(90)},
		{MoodScore: iptr(80)},
	}
	// avg of last three = 85 -> great bucket
	if got := cfg.MoodScore(entries); got != 20 {
		t.Fatalf("MoodScore = %d, want 20", got)
	}
}

func TestMoodScore_InvertsPolarity(t *testing.T) {
	cfg := DefaultModelConfig()
	cases := []struct {
		score int
		want  int
	}{
		{85, 20}, {65, 40}, {45, 60}, {25, 80}, {10, 90},
	}
	for _, tc := range cases {
		got := cfg.MoodScore([]types.MoodEntry{{MoodScore: iptr(tc.score)}})
		if got != tc.want {
			t.Fatalf("MoodScore([%d]) = %d, want %d", tc.score, got, tc.want)
		}
	}
}

func TestMoodScore_EmptyAndInvalid(t *testing.T) {
	cfg := DefaultModelConfig()
	if got := cfg.MoodScore(nil); got != 50 {
		t.Fatalf("MoodScore(nil) = %d, want 50", got)
	}
	invalid := []types.MoodEntry{
		{MoodScore: nil},
		{MoodScore: iptr(-4)},
		{MoodScore: iptr(250)},
	}
	if got := cfg.MoodScore(invalid); got != 50 {
		t.Fatalf("MoodScore(all invalid) = %d, want 50", got)
	}
}

func TestConsistencyScore_ShortHistoryIsNeutral(t *testing.T) {
	cfg := DefaultModelConfig()
	if got := cfg.ConsistencyScore(nil); got != 50 {
		t.Fatalf("ConsistencyScore(nil) = %d, want 50", got)
	}
	short := []*types.DailyRecord{histRecord(-1, true), histRecord(-1, true)}
	if got := cfg.ConsistencyScore(short); got != 50 {
		t.Fatalf("ConsistencyScore(2 records) = %d, want 50", got)
	}
}

func TestConsistencyScore_MissingDataRaisesScore(t *testing.T) {
	cfg := DefaultModelConfig()
	full := []*types.DailyRecord{
		histRecord(-1, true), histRecord(-1, true), histRecord(-1, true), histRecord(-1, true),
	}
	if got := cfg.ConsistencyScore(full); got != 0 {
		t.Fatalf("ConsistencyScore(all complete) = %d, want 0", got)
	}
	half := []*types.DailyRecord{
		histRecord(-1, true), histRecord(-1, false), histRecord(-1, true), histRecord(-1, false),
	}
	if got := cfg.ConsistencyScore(half); got != 50 {
		t.Fatalf("ConsistencyScore(half complete) = %d, want 50", got)
	}
}

func TestHistoricalScore_AveragesRecentPredictions(t *testing.T) {
	cfg := DefaultModelConfig()
	if got := cfg.HistoricalScore(nil); got != 50 {
		t.Fatalf("HistoricalScore(nil) = %d, want 50", got)
	}
	history := []*types.DailyRecord{
		histRecord(60, true),
		histRecord(40, true),
		histRecord(-1, true), // no prediction, skipped
		histRecord(80, true),
	}
	if got := cfg.HistoricalScore(history); got != 60 {
		t.Fatalf("HistoricalScore = %d, want 60", got)
	}
	noPredictions := []*types.DailyRecord{histRecord(-1, true), histRecord(-1, false)}
	if got := cfg.HistoricalScore(noPredictions); got != 50 {
		t.Fatalf("HistoricalScore(no predictions) = %d, want 50", got)
	}
}

func TestHistoricalScore_WindowIsFiveMostRecent(t *testing.T) {
	cfg := DefaultModelConfig()
	history := []*types.DailyRecord{
		histRecord(50, true), histRecord(50, true), histRecord(50, true),
		histRecord(50, true), histRecord(50, true),
		histRecord(100, true), // sixth entry must not count
	}
	if got := cfg.HistoricalScore(history); got != 50 {
		t.Fatalf("HistoricalScore = %d, want 50 (sixth entry leaked in)", got)
	}
}
