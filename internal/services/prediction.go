package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/harmonia-app/harmonia-backend/internal/modules/stress"
	apperrors "github.com/harmonia-app/harmonia-backend/internal/pkg/errors"
	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/repos"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

// DegradedWarning is attached to responses that fell back to the default
// prediction.
const DegradedWarning = "prediction degraded: using fallback model output"

// PredictionResult is what callers of the orchestrator always receive: a
// valid prediction and recommendation list, at worst the canned defaults with
// a warning.
type PredictionResult struct {
	Prediction      types.StressPrediction `json:"prediction"`
	Recommendations []types.Recommendation `json:"recommendations"`
	Warning         string                 `json:"warning,omitempty"`
	Cached          bool                   `json:"cached"`
}

// StressEngine is the aggregation boundary the orchestrator depends on.
type StressEngine interface {
	Predict(in stress.Input) types.StressPrediction
	DefaultPrediction() types.StressPrediction
}

// PredictionService is the per-(user, day) entry point of the pipeline.
// ComputePrediction is total: it degrades internally but never fails.
type PredictionService interface {
	ComputePrediction(ctx context.Context, userID uuid.UUID, day time.Time, forceRefresh bool) *PredictionResult
	Today(ctx context.Context, userID uuid.UUID) (*PredictionResult, error)
}

type predictionService struct {
	db              *gorm.DB
	log             *logger.Logger
	recordRepo      repos.DailyRecordRepo
	engine          StressEngine
	recommendations RecommendationService
	alerts          AlertService
	group           singleflight.Group

	stalenessWindow time.Duration
	historyDays     int
	now             func() time.Time
}

func NewPredictionService(
	db *gorm.DB,
	log *logger.Logger,
	recordRepo repos.DailyRecordRepo,
	engine StressEngine,
	recommendations RecommendationService,
	alerts AlertService,
	stalenessWindow time.Duration,
	historyDays int,
) PredictionService {
	return &predictionService{
		db:              db,
		log:             log.With("service", "PredictionService"),
		recordRepo:      recordRepo,
		engine:          engine,
		recommendations: recommendations,
		alerts:          alerts,
		stalenessWindow: stalenessWindow,
		historyDays:     historyDays,
		now:             time.Now,
	}
}

func (s *predictionService) ComputePrediction(ctx context.Context, userID uuid.UUID, day time.Time, forceRefresh bool) *PredictionResult {
	// Concurrent requests for the same (user, day) collapse onto one
	// computation; races that slip through resolve last-writer-wins on the
	// persisted prediction, which is acceptable for heuristic scores.
	key := userID.String() + "|" + repos.DayOf(day).Format("2006-01-02")
	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		return s.compute(ctx, userID, day, forceRefresh), nil
	})
	return v.(*PredictionResult)
}

func (s *predictionService) compute(ctx context.Context, userID uuid.UUID, day time.Time, forceRefresh bool) *PredictionResult {
	log := s.log.With("user_id", userID)
	log.Debug("starting stress prediction", "force_refresh", forceRefresh)

	record, err := s.recordRepo.FindOrCreate(ctx, nil, userID, day)
	if err != nil {
		// Even record access failure must not surface: fall all the way back.
		log.Error("daily record unavailable, returning default prediction", "error", err)
		return &PredictionResult{
			Prediction:      s.engine.DefaultPrediction(),
			Recommendations: s.recommendations.Fallback(),
			Warning:         DegradedWarning,
		}
	}

	// Freshness gate: reuse a recent prediction untouched. This is also the
	// loop guard for downstream re-prediction triggers.
	if !forceRefresh && record.StressPrediction != nil {
		if age := s.now().Sub(record.StressPrediction.GeneratedAt); age < s.stalenessWindow {
			log.Debug("using cached prediction", "age", age)
			return &PredictionResult{
				Prediction:      *record.StressPrediction,
				Recommendations: record.Recommendations,
				Cached:          true,
			}
		}
	}

	history := s.loadHistory(ctx, userID, record.Day)

	pred := s.safePredict(stress.Input{
		SleepHours:  sleepHoursOf(record),
		Steps:       stepsOf(record),
		MoodEntries: record.MoodEntries,
		History:     history,
	})

	recommendations := s.safeRecommend(ctx, pred, history)

	record.StressPrediction = &pred
	record.Recommendations = recommendations
	if err := s.recordRepo.Save(ctx, nil, record); err != nil {
		// The computed prediction is still returned; only durability suffered.
		log.Warn("failed to persist prediction", "error", err)
	} else {
		s.alerts.EvaluateAfterPrediction(ctx, record.ID, userID, record.Day, pred)
	}

	result := &PredictionResult{Prediction: pred, Recommendations: recommendations}
	if pred.IsFallback() {
		result.Warning = DegradedWarning
	}
	log.Info("stress prediction generated", "score", pred.Score, "level", pred.Level, "recommendations", len(recommendations))
	return result
}

// loadHistory fetches the prior records feeding the scorers, newest first.
// Fetch failure means an empty history, never a failed prediction.
func (s *predictionService) loadHistory(ctx context.Context, userID uuid.UUID, day time.Time) []*types.DailyRecord {
	since := repos.DayOf(day).AddDate(0, 0, -s.historyDays)
	history, err := s.recordRepo.History(ctx, nil, userID, since, repos.DayOf(day))
	if err != nil {
		s.log.Warn("history fetch failed, predicting without history", "user_id", userID, "error", err)
		return nil
	}
	return history
}

// safePredict contains any failure of the aggregation stage, substituting
// the default prediction.
func (s *predictionService) safePredict(in stress.Input) (pred types.StressPrediction) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("aggregation stage panic, substituting default prediction", "panic", r)
			pred = s.engine.DefaultPrediction()
		}
	}()
	return s.engine.Predict(in)
}

// safeRecommend contains any failure of the selection stage, substituting
// the generic fallback recommendation.
func (s *predictionService) safeRecommend(ctx context.Context, pred types.StressPrediction, history []*types.DailyRecord) (recs []types.Recommendation) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("recommendation stage panic, substituting fallback", "panic", r)
			recs = s.recommendations.Fallback()
		}
	}()
	return s.recommendations.Generate(ctx, pred, history)
}

func (s *predictionService) Today(ctx context.Context, userID uuid.UUID) (*PredictionResult, error) {
	record, err := s.recordRepo.FindOrCreate(ctx, nil, userID, s.now())
	if err != nil {
		return nil, err
	}
	if record.StressPrediction == nil {
		return nil, apperrors.ErrNotFound
	}
	return &PredictionResult{
		Prediction:      *record.StressPrediction,
		Recommendations: record.Recommendations,
		Cached:          true,
	}, nil
}

func sleepHoursOf(record *types.DailyRecord) *float64 {
	if record.Wellbeing == nil {
		return nil
	}
	return record.Wellbeing.SleepHours
}

func stepsOf(record *types.DailyRecord) *int {
	if record.Wellbeing == nil {
		return nil
	}
	return record.Wellbeing.Steps
}
