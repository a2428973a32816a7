package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/harmonia-app/harmonia-backend/internal/pkg/errors"
	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/repos"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

// WellbeingInput is one day's worth of synced or manually entered signals.
// Nil fields leave the stored value untouched.
type WellbeingInput struct {
	SleepHours *float64         `json:"sleep_hours"`
	Steps      *int             `json:"steps"`
	Source     types.DataSource `json:"source"`
}

// SessionInput records one completed or started exercise session.
type SessionInput struct {
	ExerciseID   uuid.UUID `json:"exercise_id"`
	DurationMin  *int      `json:"duration_minutes"`
	StressBefore *int      `json:"stress_before"`
	StressAfter  *int      `json:"stress_after"`
}

// DailyService owns reads and data-entry writes on the per-day record. Every
// qualifying write schedules a debounced re-prediction.
type DailyService interface {
	SyncWellbeing(ctx context.Context, userID uuid.UUID, day time.Time, in WellbeingInput) (*types.DailyRecord, error)
	Today(ctx context.Context, userID uuid.UUID) (*types.DailyRecord, error)
	Range(ctx context.Context, userID uuid.UUID, from, to *time.Time, limit int) ([]*types.DailyRecord, error)
	AddMoodEntry(ctx context.Context, userID uuid.UUID, score int, note string) (*types.DailyRecord, error)
	RecordSession(ctx context.Context, userID uuid.UUID, in SessionInput) (*types.DailyRecord, error)
	ListSessions(ctx context.Context, userID uuid.UUID, days int) ([]types.ExerciseSession, error)
	ActiveRecommendations(ctx context.Context, userID uuid.UUID) ([]types.Recommendation, error)
	CompleteRecommendation(ctx context.Context, userID uuid.UUID, recID uuid.UUID) (*types.Recommendation, error)
}

type dailyService struct {
	db         *gorm.DB
	log        *logger.Logger
	recordRepo repos.DailyRecordRepo
	trigger    TriggerService
	now        func() time.Time
}

func NewDailyService(db *gorm.DB, log *logger.Logger, recordRepo repos.DailyRecordRepo, trigger TriggerService) DailyService {
	return &dailyService{
		db:         db,
		log:        log.With("service", "DailyService"),
		recordRepo: recordRepo,
		trigger:    trigger,
		now:        time.Now,
	}
}

// SyncWellbeing merges the incoming snapshot into the day's record. Merge is
// field-wise so a steps-only sync never erases previously synced sleep data.
func (s *dailyService) SyncWellbeing(ctx context.Context, userID uuid.UUID, day time.Time, in WellbeingInput) (*types.DailyRecord, error) {
	if in.SleepHours != nil && (*in.SleepHours < 0 || *in.SleepHours > 24) {
		return nil, apperrors.ErrInvalidArgument
	}
	if in.Steps != nil && *in.Steps < 0 {
		return nil, apperrors.ErrInvalidArgument
	}

	record, err := s.recordRepo.FindOrCreate(ctx, nil, userID, day)
	if err != nil {
		return nil, err
	}
	if record.Wellbeing == nil {
		record.Wellbeing = &types.Wellbeing{}
	}
	if in.SleepHours != nil {
		record.Wellbeing.SleepHours = in.SleepHours
	}
	if in.Steps != nil {
		record.Wellbeing.Steps = in.Steps
	}
	if in.Source != "" {
		record.Wellbeing.Source = in.Source
	}
	syncedAt := s.now().UTC()
	record.Wellbeing.LastSyncAt = &syncedAt

	if err := s.recordRepo.Save(ctx, nil, record); err != nil {
		return nil, err
	}
	s.log.Debug("wellbeing saved", "user_id", userID, "source", in.Source)
	s.trigger.SchedulePrediction(userID)
	return record, nil
}

func (s *dailyService) Today(ctx context.Context, userID uuid.UUID) (*types.DailyRecord, error) {
	return s.recordRepo.FindOrCreate(ctx, nil, userID, s.now())
}

func (s *dailyService) Range(ctx context.Context, userID uuid.UUID, from, to *time.Time, limit int) ([]*types.DailyRecord, error) {
	return s.recordRepo.ListRange(ctx, nil, userID, from, to, limit)
}

func (s *dailyService) AddMoodEntry(ctx context.Context, userID uuid.UUID, score int, note string) (*types.DailyRecord, error) {
	if score < 0 || score > 100 {
		return nil, apperrors.ErrInvalidArgument
	}
	record, err := s.recordRepo.FindOrCreate(ctx, nil, userID, s.now())
	if err != nil {
		return nil, err
	}
	record.MoodEntries = append(record.MoodEntries, types.MoodEntry{
		MoodScore:  iptr(score),
		Note:       note,
		RecordedAt: s.now().UTC(),
	})
	if err := s.recordRepo.Save(ctx, nil, record); err != nil {
		return nil, err
	}
	s.log.Debug("mood entry added", "user_id", userID, "entries", len(record.MoodEntries))
	s.trigger.SchedulePrediction(userID)
	return record, nil
}

func (s *dailyService) RecordSession(ctx context.Context, userID uuid.UUID, in SessionInput) (*types.DailyRecord, error) {
	if in.ExerciseID == uuid.Nil {
		return nil, apperrors.ErrInvalidArgument
	}
	record, err := s.recordRepo.FindOrCreate(ctx, nil, userID, s.now())
	if err != nil {
		return nil, err
	}
	started := s.now().UTC()
	session := types.ExerciseSession{
		ExerciseID:   in.ExerciseID,
		StartedAt:    started,
		StressBefore: in.StressBefore,
		StressAfter:  in.StressAfter,
	}
	if in.DurationMin != nil {
		completed := started.Add(time.Duration(*in.DurationMin) * time.Minute)
		session.CompletedAt = &completed
	}
	record.Sessions = append(record.Sessions, session)
	if err := s.recordRepo.Save(ctx, nil, record); err != nil {
		return nil, err
	}
	s.log.Debug("exercise session recorded", "user_id", userID, "exercise_id", in.ExerciseID)
	return record, nil
}

func (s *dailyService) ListSessions(ctx context.Context, userID uuid.UUID, days int) ([]types.ExerciseSession, error) {
	today := repos.DayOf(s.now())
	since := today.AddDate(0, 0, -days)
	before := today.AddDate(0, 0, 1)
	records, err := s.recordRepo.History(ctx, nil, userID, since, before)
	if err != nil {
		return nil, err
	}
	sessions := make([]types.ExerciseSession, 0)
	for _, record := range records {
		sessions = append(sessions, record.Sessions...)
	}
	return sessions, nil
}

// ActiveRecommendations returns today's uncompleted recommendations.
func (s *dailyService) ActiveRecommendations(ctx context.Context, userID uuid.UUID) ([]types.Recommendation, error) {
	record, err := s.recordRepo.FindOrCreate(ctx, nil, userID, s.now())
	if err != nil {
		return nil, err
	}
	active := make([]types.Recommendation, 0, len(record.Recommendations))
	for _, rec := range record.Recommendations {
		if !rec.Completed {
			active = append(active, rec)
		}
	}
	return active, nil
}

func (s *dailyService) CompleteRecommendation(ctx context.Context, userID uuid.UUID, recID uuid.UUID) (*types.Recommendation, error) {
	record, err := s.recordRepo.FindOrCreate(ctx, nil, userID, s.now())
	if err != nil {
		return nil, err
	}
	for i := range record.Recommendations {
		if record.Recommendations[i].ID != recID {
			continue
		}
		if record.Recommendations[i].Completed {
			return &record.Recommendations[i], nil
		}
		completedAt := s.now().UTC()
		record.Recommendations[i].Completed = true
		record.Recommendations[i].CompletedAt = &completedAt
		if err := s.recordRepo.Save(ctx, nil, record); err != nil {
			return nil, err
		}
		s.log.Debug("recommendation completed", "user_id", userID, "recommendation_id", recID)
		return &record.Recommendations[i], nil
	}
	return nil, apperrors.ErrNotFound
}
