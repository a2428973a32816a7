package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/repos"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Trend thresholds: the minimum half-over-half movement that counts as a
// real change per metric.
const (
	stressTrendDelta = 5.0
	sleepTrendDelta  = 0.5
	stepsTrendDelta  = 1000.0
)

// WeeklySummary aggregates one Monday-to-Sunday week.
type WeeklySummary struct {
	WeekStart             time.Time `json:"week_start"`
	WeekEnd               time.Time `json:"week_end"`
	TotalDays             int       `json:"total_days"`
	DaysWithData          int       `json:"days_with_data"`
	AverageStress         int       `json:"average_stress"`
	AverageSleep          float64   `json:"average_sleep"`
	AverageSteps          int       `json:"average_steps"`
	TotalExerciseSessions int       `json:"total_exercise_sessions"`
	TotalMoodEntries      int       `json:"total_mood_entries"`
	StressTrend           Trend     `json:"stress_trend"`
	SleepTrend            Trend     `json:"sleep_trend"`
	ActivityTrend         Trend     `json:"activity_trend"`
	Days                  []DayBrief `json:"days"`
}

// DayBrief is the per-day row inside a weekly summary.
type DayBrief struct {
	Day              time.Time         `json:"day"`
	StressScore      *int              `json:"stress_score,omitempty"`
	StressLevel      types.StressLevel `json:"stress_level,omitempty"`
	SleepHours       *float64          `json:"sleep_hours,omitempty"`
	Steps            *int              `json:"steps,omitempty"`
	ExerciseSessions int               `json:"exercise_sessions"`
	MoodEntries      int               `json:"mood_entries"`
}

// Insights summarizes a free-length window of records.
type Insights struct {
	TotalDays         int     `json:"total_days"`
	AverageStress     int     `json:"average_stress"`
	AverageSleep      float64 `json:"average_sleep"`
	AverageSteps      int     `json:"average_steps"`
	ExerciseFrequency float64 `json:"exercise_frequency"`
	StressTrend       Trend   `json:"stress_trend"`
}

// StressHistoryPoint is one predicted day in the stress history.
type StressHistoryPoint struct {
	Day         time.Time         `json:"day"`
	StressScore int               `json:"stress_score"`
	StressLevel types.StressLevel `json:"stress_level"`
	SleepHours  *float64          `json:"sleep_hours,omitempty"`
	Steps       *int              `json:"steps,omitempty"`
}

// StressStats is computed over the points of a stress history, newest first.
type StressStats struct {
	AverageStress   int   `json:"average_stress"`
	Trend           Trend `json:"trend"`
	HighStressDays  int   `json:"high_stress_days"`
	ImprovementDays int   `json:"improvement_days"`
	TotalDays       int   `json:"total_days"`
}

// AnalyticsService derives read-only summaries from stored daily records.
type AnalyticsService interface {
	WeeklySummary(ctx context.Context, userID uuid.UUID, weekStart *time.Time) (*WeeklySummary, error)
	Insights(ctx context.Context, userID uuid.UUID, days int) (*Insights, error)
	StressHistory(ctx context.Context, userID uuid.UUID, days int) ([]StressHistoryPoint, *StressStats, error)
}

type analyticsService struct {
	log        *logger.Logger
	recordRepo repos.DailyRecordRepo
	now        func() time.Time
}

func NewAnalyticsService(log *logger.Logger, recordRepo repos.DailyRecordRepo) AnalyticsService {
	return &analyticsService{
		log:        log.With("service", "AnalyticsService"),
		recordRepo: recordRepo,
		now:        time.Now,
	}
}

func (s *analyticsService) WeeklySummary(ctx context.Context, userID uuid.UUID, weekStart *time.Time) (*WeeklySummary, error) {
	start := mondayOf(s.now())
	if weekStart != nil {
		start = mondayOf(*weekStart)
	}
	end := start.AddDate(0, 0, 7)

	records, err := s.recordRepo.History(ctx, nil, userID, start, end)
	if err != nil {
		return nil, err
	}

	summary := &WeeklySummary{
		WeekStart: start,
		WeekEnd:   end.AddDate(0, 0, -1),
		TotalDays: len(records),
		Days:      make([]DayBrief, 0, len(records)),
	}

	var stressSum, stepsSum, stressN, stepsN int
	var sleepSum float64
	var sleepN int

	// Records arrive newest first; the summary rows read better oldest first.
	for i := len(records) - 1; i >= 0; i-- {
		record := records[i]
		brief := DayBrief{
			Day:              record.Day,
			ExerciseSessions: len(record.Sessions),
			MoodEntries:      len(record.MoodEntries),
		}
		if record.HasWellbeingData() || record.StressPrediction != nil || len(record.Sessions) > 0 {
			summary.DaysWithData++
		}
		if record.StressPrediction != nil {
			brief.StressScore = iptr(record.StressPrediction.Score)
			brief.StressLevel = record.StressPrediction.Level
			stressSum += record.StressPrediction.Score
			stressN++
		}
		if record.Wellbeing != nil {
			if record.Wellbeing.SleepHours != nil {
				brief.SleepHours = record.Wellbeing.SleepHours
				sleepSum += *record.Wellbeing.SleepHours
				sleepN++
			}
			if record.Wellbeing.Steps != nil {
				brief.Steps = record.Wellbeing.Steps
				stepsSum += *record.Wellbeing.Steps
				stepsN++
			}
		}
		summary.TotalExerciseSessions += len(record.Sessions)
		summary.TotalMoodEntries += len(record.MoodEntries)
		summary.Days = append(summary.Days, brief)
	}

	if stressN > 0 {
		summary.AverageStress = int(math.Round(float64(stressSum) / float64(stressN)))
	}
	if sleepN > 0 {
		summary.AverageSleep = math.Round(sleepSum/float64(sleepN)*10) / 10
	}
	if stepsN > 0 {
		summary.AverageSteps = int(math.Round(float64(stepsSum) / float64(stepsN)))
	}

	summary.StressTrend = halfTrend(records, stressOf, stressTrendDelta, true)
	summary.SleepTrend = halfTrend(records, sleepOf, sleepTrendDelta, false)
	summary.ActivityTrend = halfTrend(records, activityOf, stepsTrendDelta, false)
	return summary, nil
}

func (s *analyticsService) Insights(ctx context.Context, userID uuid.UUID, days int) (*Insights, error) {
	today := repos.DayOf(s.now())
	records, err := s.recordRepo.History(ctx, nil, userID, today.AddDate(0, 0, -days), today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	out := &Insights{TotalDays: len(records), StressTrend: TrendStable}

	var stressSum, stepsSum, stressN, stepsN, sessions int
	var sleepSum float64
	var sleepN int
	for _, record := range records {
		if record.StressPrediction != nil {
			stressSum += record.StressPrediction.Score
			stressN++
		}
		if record.Wellbeing != nil {
			if record.Wellbeing.SleepHours != nil {
				sleepSum += *record.Wellbeing.SleepHours
				sleepN++
			}
			if record.Wellbeing.Steps != nil {
				stepsSum += *record.Wellbeing.Steps
				stepsN++
			}
		}
		sessions += len(record.Sessions)
	}

	if stressN > 0 {
		out.AverageStress = int(math.Round(float64(stressSum) / float64(stressN)))
	}
	if sleepN > 0 {
		out.AverageSleep = math.Round(sleepSum/float64(sleepN)*10) / 10
	}
	if stepsN > 0 {
		out.AverageSteps = int(math.Round(float64(stepsSum) / float64(stepsN)))
	}
	if len(records) > 0 {
		out.ExerciseFrequency = float64(sessions) / float64(len(records))
	}
	out.StressTrend = weekOverWeekStressTrend(records)
	return out, nil
}

func (s *analyticsService) StressHistory(ctx context.Context, userID uuid.UUID, days int) ([]StressHistoryPoint, *StressStats, error) {
	today := repos.DayOf(s.now())
	records, err := s.recordRepo.History(ctx, nil, userID, today.AddDate(0, 0, -days), today.AddDate(0, 0, 1))
	if err != nil {
		return nil, nil, err
	}

	points := make([]StressHistoryPoint, 0, len(records))
	for _, record := range records {
		if record.StressPrediction == nil {
			continue
		}
		point := StressHistoryPoint{
			Day:         record.Day,
			StressScore: record.StressPrediction.Score,
			StressLevel: record.StressPrediction.Level,
		}
		if record.Wellbeing != nil {
			point.SleepHours = record.Wellbeing.SleepHours
			point.Steps = record.Wellbeing.Steps
		}
		points = append(points, point)
	}
	return points, stressStatsOf(points), nil
}

// stressStatsOf expects points newest first.
func stressStatsOf(points []StressHistoryPoint) *StressStats {
	stats := &StressStats{Trend: TrendStable, TotalDays: len(points)}
	if len(points) == 0 {
		return stats
	}

	var sum int
	for _, p := range points {
		sum += p.StressScore
		if p.StressLevel == types.StressHigh || p.StressLevel == types.StressCritical {
			stats.HighStressDays++
		}
	}
	stats.AverageStress = int(math.Round(float64(sum) / float64(len(points))))

	// Trend compares the 3 newest predictions against the 3 before them.
	if len(points) > 3 {
		recent := meanScore(points[:min(3, len(points))])
		previous := meanScore(points[3:min(6, len(points))])
		if recent < previous-stressTrendDelta {
			stats.Trend = TrendImproving
		} else if recent > previous+stressTrendDelta {
			stats.Trend = TrendDeclining
		}
	}

	// An improvement day is one whose score dropped from the day before it,
	// within the 5 newest predictions.
	for i := 1; i < min(5, len(points)); i++ {
		if points[i-1].StressScore < points[i].StressScore {
			stats.ImprovementDays++
		}
	}
	return stats
}

func meanScore(points []StressHistoryPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum int
	for _, p := range points {
		sum += p.StressScore
	}
	return float64(sum) / float64(len(points))
}

// weekOverWeekStressTrend compares the newest 7 predictions to the 7 before
// them, treating missing predictions as neutral.
func weekOverWeekStressTrend(records []*types.DailyRecord) Trend {
	if len(records) < 14 {
		return TrendStable
	}
	recent := meanStressOrNeutral(records[:7])
	previous := meanStressOrNeutral(records[7:14])
	if recent < previous-stressTrendDelta {
		return TrendImproving
	}
	if recent > previous+stressTrendDelta {
		return TrendDeclining
	}
	return TrendStable
}

func meanStressOrNeutral(records []*types.DailyRecord) float64 {
	var sum float64
	for _, record := range records {
		if record.StressPrediction != nil {
			sum += float64(record.StressPrediction.Score)
		} else {
			sum += 50
		}
	}
	return sum / float64(len(records))
}

// halfTrend splits the window in two halves (records newest first) and
// compares per-metric averages. lowerIsBetter flips direction for stress.
func halfTrend(records []*types.DailyRecord, metric func(*types.DailyRecord) *float64, delta float64, lowerIsBetter bool) Trend {
	if len(records) < 3 {
		return TrendStable
	}
	mid := (len(records) + 1) / 2
	newer := meanMetric(records[:mid], metric)
	older := meanMetric(records[mid:], metric)
	if newer == 0 || older == 0 {
		return TrendStable
	}
	diff := newer - older
	if lowerIsBetter {
		diff = -diff
	}
	if diff > delta {
		return TrendImproving
	}
	if diff < -delta {
		return TrendDeclining
	}
	return TrendStable
}

func meanMetric(records []*types.DailyRecord, metric func(*types.DailyRecord) *float64) float64 {
	var sum float64
	var n int
	for _, record := range records {
		if v := metric(record); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func stressOf(record *types.DailyRecord) *float64 {
	if record.StressPrediction == nil {
		return nil
	}
	v := float64(record.StressPrediction.Score)
	return &v
}

func sleepOf(record *types.DailyRecord) *float64 {
	if record.Wellbeing == nil {
		return nil
	}
	return record.Wellbeing.SleepHours
}

func activityOf(record *types.DailyRecord) *float64 {
	if record.Wellbeing == nil || record.Wellbeing.Steps == nil {
		return nil
	}
	v := float64(*record.Wellbeing.Steps)
	return &v
}

// mondayOf normalizes t to the UTC midnight of its ISO week's Monday.
func mondayOf(t time.Time) time.Time {
	day := repos.DayOf(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
