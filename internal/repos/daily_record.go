package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/harmonia-app/harmonia-backend/internal/pkg/errors"
	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

type DailyRecordRepo interface {
	FindOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (*types.DailyRecord, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.DailyRecord, error)
	// History returns records with since <= day < before, newest first.
	History(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since, before time.Time) ([]*types.DailyRecord, error)
	// HistoryBounded is History with a row cap, for cheap lookback queries.
	HistoryBounded(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since, before time.Time, limit int) ([]*types.DailyRecord, error)
	// ListRange returns up to limit records in [from, to], newest first. Nil
	// bounds are open.
	ListRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to *time.Time, limit int) ([]*types.DailyRecord, error)
	Save(ctx context.Context, tx *gorm.DB, rec *types.DailyRecord) error
	// RecentActiveUserIDs lists users whose records were touched since the
	// given time; used by the scheduled prediction worker.
	RecentActiveUserIDs(ctx context.Context, tx *gorm.DB, since time.Time) ([]uuid.UUID, error)
}

type dailyRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDailyRecordRepo(db *gorm.DB, baseLog *logger.Logger) DailyRecordRepo {
	return &dailyRecordRepo{db: db, log: baseLog.With("repo", "DailyRecordRepo")}
}

// DayOf truncates a timestamp to its UTC calendar day, the canonical key for
// daily records.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *dailyRecordRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *dailyRecordRepo) FindOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (*types.DailyRecord, error) {
	day = DayOf(day)
	conn := r.conn(tx).WithContext(ctx)

	var rec types.DailyRecord
	err := conn.Where("user_id = ? AND day = ?", userID, day).First(&rec).Error
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rec = types.DailyRecord{UserID: userID, Day: day}
	if createErr := conn.Create(&rec).Error; createErr != nil {
		// A concurrent request may have created the row first; fall back to
		// reading whatever won.
		var existing types.DailyRecord
		if readErr := conn.Where("user_id = ? AND day = ?", userID, day).First(&existing).Error; readErr == nil {
			return &existing, nil
		}
		return nil, createErr
	}
	return &rec, nil
}

func (r *dailyRecordRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.DailyRecord, error) {
	var rec types.DailyRecord
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *dailyRecordRepo) History(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since, before time.Time) ([]*types.DailyRecord, error) {
	return r.HistoryBounded(ctx, tx, userID, since, before, 0)
}

func (r *dailyRecordRepo) HistoryBounded(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since, before time.Time, limit int) ([]*types.DailyRecord, error) {
	var records []*types.DailyRecord
	q := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND day >= ? AND day < ?", userID, DayOf(since), DayOf(before)).
		Order("day DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *dailyRecordRepo) ListRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to *time.Time, limit int) ([]*types.DailyRecord, error) {
	var records []*types.DailyRecord
	q := r.conn(tx).WithContext(ctx).Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("day >= ?", DayOf(*from))
	}
	if to != nil {
		q = q.Where("day <= ?", DayOf(*to))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("day DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *dailyRecordRepo) Save(ctx context.Context, tx *gorm.DB, rec *types.DailyRecord) error {
	if rec == nil {
		return apperrors.ErrInvalidArgument
	}
	return r.conn(tx).WithContext(ctx).Save(rec).Error
}

func (r *dailyRecordRepo) RecentActiveUserIDs(ctx context.Context, tx *gorm.DB, since time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.conn(tx).WithContext(ctx).
		Model(&types.DailyRecord{}).
		Where("updated_at >= ?", since).
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
