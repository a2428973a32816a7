package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/repos"
)

// TriggerService debounces re-prediction after data writes. Scheduling is
// fire-and-forget: a trigger that cannot run is dropped, never retried, and
// never surfaces to the caller that wrote the data.
type TriggerService interface {
	SchedulePrediction(userID uuid.UUID)
}

type triggerService struct {
	log        *logger.Logger
	recordRepo repos.DailyRecordRepo
	prediction PredictionService
	rdb        *redis.Client

	delay          time.Duration
	rateLimitTTL   time.Duration
	minPredictionAge   time.Duration
	computeTimeout time.Duration
	now            func() time.Time
}

// NewTriggerService wires the debounced trigger. rdb may be nil; the redis
// gate is then skipped and only the record-age check applies.
func NewTriggerService(
	log *logger.Logger,
	recordRepo repos.DailyRecordRepo,
	prediction PredictionService,
	rdb *redis.Client,
	delay time.Duration,
	rateLimitTTL time.Duration,
	minPredictionAge time.Duration,
) TriggerService {
	return &triggerService{
		log:            log.With("service", "TriggerService"),
		recordRepo:     recordRepo,
		prediction:     prediction,
		rdb:            rdb,
		delay:          delay,
		rateLimitTTL:   rateLimitTTL,
		minPredictionAge:   minPredictionAge,
		computeTimeout: 30 * time.Second,
		now:            time.Now,
	}
}

func (s *triggerService) SchedulePrediction(userID uuid.UUID) {
	go s.run(userID)
}

func (s *triggerService) run(userID uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("prediction trigger panic", "user_id", userID, "panic", r)
		}
	}()

	// Short delay so a burst of writes settles before we recompute once.
	time.Sleep(s.delay)

	ctx, cancel := context.WithTimeout(context.Background(), s.computeTimeout)
	defer cancel()

	if !s.acquireSlot(ctx, userID) {
		s.log.Debug("prediction trigger rate limited", "user_id", userID)
		return
	}
	if !s.predictionOldEnough(ctx, userID) {
		s.log.Debug("prediction trigger skipped, current prediction still fresh", "user_id", userID)
		return
	}

	result := s.prediction.ComputePrediction(ctx, userID, s.now(), true)
	s.log.Debug("triggered prediction completed",
		"user_id", userID, "score", result.Prediction.Score, "degraded", result.Warning != "")
}

// acquireSlot takes the per-user rate-limit slot via SETNX. Redis being down
// or absent fails open; the record-age check below still bounds churn.
func (s *triggerService) acquireSlot(ctx context.Context, userID uuid.UUID) bool {
	if s.rdb == nil {
		return true
	}
	key := "harmonia:trigger:" + userID.String()
	ok, err := s.rdb.SetNX(ctx, key, s.now().Unix(), s.rateLimitTTL).Result()
	if err != nil {
		s.log.Warn("trigger rate limit check failed, proceeding", "user_id", userID, "error", err)
		return true
	}
	return ok
}

// predictionOldEnough skips recomputation while today's prediction is younger
// than the minimum age window. A day with no prediction yet always qualifies.
func (s *triggerService) predictionOldEnough(ctx context.Context, userID uuid.UUID) bool {
	record, err := s.recordRepo.FindOrCreate(ctx, nil, userID, s.now())
	if err != nil {
		s.log.Warn("trigger precondition check failed, proceeding", "user_id", userID, "error", err)
		return true
	}
	if record.StressPrediction == nil {
		return true
	}
	return s.now().Sub(record.StressPrediction.GeneratedAt) >= s.minPredictionAge
}
