package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

// RecommendationService turns an aggregated prediction plus recent history
// into a ranked action list. Generate is total: any internal failure degrades
// to the single generic fallback recommendation.
type RecommendationService interface {
	Generate(ctx context.Context, pred types.StressPrediction, history []*types.DailyRecord) []types.Recommendation
	Fallback() []types.Recommendation
}

type recommendationService struct {
	log            *logger.Logger
	catalog        CatalogService
	catalogTimeout time.Duration
	// preventive rule knobs
	minHistory    int
	lookback      int
	highDaysForPattern int
	maxRecommendations int
}

func NewRecommendationService(log *logger.Logger, catalog CatalogService, catalogTimeout time.Duration) RecommendationService {
	return &recommendationService{
		log:                log.With("service", "RecommendationService"),
		catalog:            catalog,
		catalogTimeout:     catalogTimeout,
		minHistory:         3,
		lookback:           5,
		highDaysForPattern: 2,
		maxRecommendations: 5,
	}
}

func (s *recommendationService) Generate(ctx context.Context, pred types.StressPrediction, history []*types.DailyRecord) (out []types.Recommendation) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("recommendation generation panic, using fallback", "panic", r)
			out = s.Fallback()
		}
	}()

	recs := s.levelRecommendations(pred.Level)
	recs = append(recs, s.factorRecommendations(pred.Factors)...)
	recs = append(recs, s.preventiveRecommendations(history)...)

	s.enrichFromCatalog(ctx, pred.Level, recs)

	return dedupeAndRank(recs, s.maxRecommendations)
}

func (s *recommendationService) Fallback() []types.Recommendation {
	return []types.Recommendation{newRecommendation(
		types.RecBreathing,
		"Mindful breathing",
		"Take five minutes to focus on your breath.",
		3,
		iptr(5),
	)}
}

func newRecommendation(t types.RecommendationType, title, desc string, priority int, durationMinutes *int) types.Recommendation {
	return types.Recommendation{
		ID:              uuid.New(),
		Type:            t,
		Title:           title,
		Description:     desc,
		Priority:        priority,
		DurationMinutes: durationMinutes,
	}
}

func iptr(v int) *int { return &v }

func (s *recommendationService) levelRecommendations(level types.StressLevel) []types.Recommendation {
	switch level {
	case types.StressLow:
		return []types.Recommendation{newRecommendation(
			types.RecMindfulness,
			"Keep the balance",
			"Keep up your mindfulness practice to maintain your current wellbeing.",
			2, iptr(10),
		)}
	case types.StressMedium:
		return []types.Recommendation{newRecommendation(
			types.RecBreathing,
			"Breathing for balance",
			"Practice conscious breathing to manage moderate stress.",
			3, iptr(5),
		)}
	case types.StressHigh:
		return []types.Recommendation{
			newRecommendation(
				types.RecExercise,
				"Urgent relaxation exercise",
				"Do this exercise now to bring elevated stress levels down.",
				4, iptr(15),
			),
			newRecommendation(
				types.RecLifestyle,
				"Active rest",
				"Consider taking short breaks every hour during your day.",
				3, nil,
			),
		}
	case types.StressCritical:
		return []types.Recommendation{
			newRecommendation(
				types.RecUrgent,
				"Immediate attention needed",
				"Critical stress levels detected. Practice grounding techniques right away.",
				5, iptr(20),
			),
			newRecommendation(
				types.RecBreathing,
				"Emergency breathing",
				"Use the 4-7-8 technique to calm the nervous system quickly.",
				5, iptr(5),
			),
		}
	}
	return nil
}

func (s *recommendationService) factorRecommendations(factors []types.StressFactor) []types.Recommendation {
	var recs []types.Recommendation
	for _, f := range factors {
		switch f.Factor {
		case types.FactorSleep:
			recs = append(recs, newRecommendation(
				types.RecLifestyle,
				"Sleep hygiene",
				"Improve your sleep routine with a fixed bedtime and a screen-free wind-down.",
				3, nil,
			))
		case types.FactorActivity:
			recs = append(recs, newRecommendation(
				types.RecExercise,
				"Moderate physical activity",
				"Add short walks through the day to raise your activity level.",
				3, iptr(10),
			))
		case types.FactorMood:
			recs = append(recs, newRecommendation(
				types.RecMindfulness,
				"Emotional regulation",
				"Practice observing your emotions without judging them.",
				4, iptr(8),
			))
		}
	}
	return recs
}

// preventiveRecommendations fires when the recent tier history shows a
// sustained high-stress pattern. History must be most-recent-first.
func (s *recommendationService) preventiveRecommendations(history []*types.DailyRecord) []types.Recommendation {
	if len(history) < s.minHistory {
		return nil
	}
	window := history
	if len(window) > s.lookback {
		window = window[:s.lookback]
	}
	var highDays int
	for _, rec := range window {
		if rec == nil || rec.StressPrediction == nil {
			continue
		}
		switch rec.StressPrediction.Level {
		case types.StressHigh, types.StressCritical:
			highDays++
		}
	}
	if highDays < s.highDaysForPattern {
		return nil
	}
	return []types.Recommendation{newRecommendation(
		types.RecLifestyle,
		"Stress pattern detected",
		"You have had several high-stress days. Consider adjusting your weekly routine.",
		4, nil,
	)}
}

// enrichFromCatalog attaches one matching catalog item to the first exercise
// or breathing recommendation, overriding its title and duration. Strictly
// best-effort: errors and timeouts leave the recommendations untouched.
func (s *recommendationService) enrichFromCatalog(ctx context.Context, level types.StressLevel, recs []types.Recommendation) {
	if s.catalog == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.catalogTimeout)
	defer cancel()

	item, err := s.catalog.PickForLevel(ctx, level)
	if err != nil {
		s.log.Debug("catalog enrichment skipped", "level", level, "error", err)
		return
	}
	for i := range recs {
		if recs[i].Type != types.RecExercise && recs[i].Type != types.RecBreathing {
			continue
		}
		id := item.ID
		recs[i].ExerciseID = &id
		recs[i].Title = item.Title
		minutes := (item.DurationSeconds + 59) / 60
		recs[i].DurationMinutes = &minutes
		return
	}
}

// dedupeAndRank removes (type, title) duplicates, orders by priority
// descending and caps the list.
func dedupeAndRank(recs []types.Recommendation, max int) []types.Recommendation {
	seen := make(map[string]struct{}, len(recs))
	unique := recs[:0]
	for _, rec := range recs {
		key := string(rec.Type) + "|" + rec.Title
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, rec)
	}
	sort.SliceStable(unique, func(i, j int) bool { return unique[i].Priority > unique[j].Priority })
	if len(unique) > max {
		unique = unique[:max]
	}
	return unique
}
