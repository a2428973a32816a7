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

// AlertService decides whether a freshly computed prediction warrants a
// user-facing alert. EvaluateAfterPrediction never returns an error: every
// failure inside it is logged and swallowed so it can never break the
// prediction request that triggered it.
type AlertService interface {
	EvaluateAfterPrediction(ctx context.Context, recordID, userID uuid.UUID, day time.Time, pred types.StressPrediction)
	ActiveAlerts(ctx context.Context, userID uuid.UUID, day time.Time) ([]types.Alert, error)
	Acknowledge(ctx context.Context, userID uuid.UUID, day time.Time, alertID uuid.UUID) (*types.Alert, error)
}

type alertService struct {
	db         *gorm.DB
	log        *logger.Logger
	recordRepo repos.DailyRecordRepo
	// maximum alerts retained per record
	cap int
	// lookback parameters for the persistent-high rule
	lookbackDays    int
	lookbackLimit   int
	persistHighDays int
	now             func() time.Time
}

func NewAlertService(db *gorm.DB, log *logger.Logger, recordRepo repos.DailyRecordRepo, alertCap int) AlertService {
	return &alertService{
		db:              db,
		log:             log.With("service", "AlertService"),
		recordRepo:      recordRepo,
		cap:             alertCap,
		lookbackDays:    3,
		lookbackLimit:   5,
		persistHighDays: 2,
		now:             time.Now,
	}
}

func (s *alertService) EvaluateAfterPrediction(ctx context.Context, recordID, userID uuid.UUID, day time.Time, pred types.StressPrediction) {
	// Always act on the latest persisted copy, not the in-memory record the
	// orchestrator holds; concurrent requests may have saved since.
	fresh, err := s.recordRepo.GetByID(ctx, nil, recordID)
	if err != nil {
		s.log.Warn("alert evaluation skipped, record unavailable", "record_id", recordID, "error", err)
		return
	}

	var alerts []types.Alert
	switch pred.Level {
	case types.StressCritical:
		alerts = append(alerts, types.Alert{
			ID:          uuid.New(),
			Type:        types.AlertStress,
			Title:       "Critical stress level",
			Message:     "We detected very high stress levels. We recommend a relaxation exercise now.",
			StressLevel: types.StressCritical,
			DeliveredAt: s.now().UTC(),
		})
	case types.StressHigh:
		if s.hasPersistentHighStress(ctx, userID, day) {
			alerts = append(alerts, types.Alert{
				ID:          uuid.New(),
				Type:        types.AlertStress,
				Title:       "Persistent elevated stress",
				Message:     "You have had several days of elevated stress. Consider adjusting your routine.",
				StressLevel: types.StressHigh,
				DeliveredAt: s.now().UTC(),
			})
		}
	}
	if len(alerts) == 0 {
		return
	}

	// Additive only, bounded: drop silently once the record is at cap.
	appended := 0
	for _, alert := range alerts {
		if len(fresh.Alerts) >= s.cap {
			break
		}
		fresh.Alerts = append(fresh.Alerts, alert)
		appended++
	}
	if appended == 0 {
		s.log.Debug("alert cap reached, dropping alerts", "record_id", recordID)
		return
	}

	if err := s.recordRepo.Save(ctx, nil, fresh); err != nil {
		// No retry: retrying under write contention would amplify load.
		s.log.Warn("alert save conflict, skipping", "record_id", recordID, "error", err)
		return
	}
	s.log.Info("alerts created", "user_id", userID, "count", appended, "level", pred.Level)
}

// hasPersistentHighStress looks back a few days (bounded fetch) and reports
// whether enough of them were high-tier.
func (s *alertService) hasPersistentHighStress(ctx context.Context, userID uuid.UUID, day time.Time) bool {
	since := repos.DayOf(day).AddDate(0, 0, -s.lookbackDays)
	records, err := s.recordRepo.HistoryBounded(ctx, nil, userID, since, repos.DayOf(day), s.lookbackLimit)
	if err != nil {
		s.log.Warn("high-stress lookback failed", "user_id", userID, "error", err)
		return false
	}
	var highDays int
	for _, rec := range records {
		if rec != nil && rec.StressPrediction != nil && rec.StressPrediction.Level == types.StressHigh {
			highDays++
		}
	}
	return highDays >= s.persistHighDays
}

func (s *alertService) ActiveAlerts(ctx context.Context, userID uuid.UUID, day time.Time) ([]types.Alert, error) {
	rec, err := s.recordRepo.FindOrCreate(ctx, nil, userID, day)
	if err != nil {
		return nil, err
	}
	active := make([]types.Alert, 0, len(rec.Alerts))
	for _, alert := range rec.Alerts {
		if !alert.Acknowledged {
			active = append(active, alert)
		}
	}
	// newest first
	for i, j := 0, len(active)-1; i < j; i, j = i+1, j-1 {
		active[i], active[j] = active[j], active[i]
	}
	return active, nil
}

func (s *alertService) Acknowledge(ctx context.Context, userID uuid.UUID, day time.Time, alertID uuid.UUID) (*types.Alert, error) {
	rec, err := s.recordRepo.FindOrCreate(ctx, nil, userID, day)
	if err != nil {
		return nil, err
	}
	for i := range rec.Alerts {
		if rec.Alerts[i].ID != alertID {
			continue
		}
		now := s.now().UTC()
		rec.Alerts[i].Acknowledged = true
		rec.Alerts[i].AcknowledgedAt = &now
		if err := s.recordRepo.Save(ctx, nil, rec); err != nil {
			return nil, err
		}
		alert := rec.Alerts[i]
		return &alert, nil
	}
	return nil, apperrors.ErrNotFound
}
