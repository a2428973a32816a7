package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/harmonia-app/harmonia-backend/internal/pkg/errors"
	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/repos"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// fakeRecordRepo is an in-memory DailyRecordRepo keyed by (user, day).
type fakeRecordRepo struct {
	records map[string]*types.DailyRecord

	findErr error
	saveErr error
	histErr error
	saves   int
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string]*types.DailyRecord)}
}

func recordKey(userID uuid.UUID, day time.Time) string {
	return userID.String() + "|" + repos.DayOf(day).Format("2006-01-02")
}

func (f *fakeRecordRepo) put(rec *types.DailyRecord) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	f.records[recordKey(rec.UserID, rec.Day)] = rec
}

func (f *fakeRecordRepo) FindOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (*types.DailyRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	key := recordKey(userID, day)
	if rec, ok := f.records[key]; ok {
		return rec, nil
	}
	rec := &types.DailyRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Day:       repos.DayOf(day),
		CreatedAt: time.Now().UTC(),
	}
	f.records[key] = rec
	return rec, nil
}

func (f *fakeRecordRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.DailyRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeRecordRepo) History(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since, before time.Time) ([]*types.DailyRecord, error) {
	return f.HistoryBounded(ctx, tx, userID, since, before, 0)
}

func (f *fakeRecordRepo) HistoryBounded(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since, before time.Time, limit int) ([]*types.DailyRecord, error) {
	if f.histErr != nil {
		return nil, f.histErr
	}
	var out []*types.DailyRecord
	for _, rec := range f.records {
		if rec.UserID != userID {
			continue
		}
		if rec.Day.Before(since) || !rec.Day.Before(before) {
			continue
		}
		out = append(out, rec)
	}
	// newest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Day.After(out[i].Day) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRecordRepo) ListRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to *time.Time, limit int) ([]*types.DailyRecord, error) {
	start := time.Time{}
	end := time.Now().AddDate(1, 0, 0)
	if from != nil {
		start = repos.DayOf(*from)
	}
	if to != nil {
		end = repos.DayOf(*to).AddDate(0, 0, 1)
	}
	return f.HistoryBounded(ctx, tx, userID, start, end, limit)
}

func (f *fakeRecordRepo) Save(ctx context.Context, tx *gorm.DB, rec *types.DailyRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.put(rec)
	return nil
}

func (f *fakeRecordRepo) RecentActiveUserIDs(ctx context.Context, tx *gorm.DB, since time.Time) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	for _, rec := range f.records {
		if _, dup := seen[rec.UserID]; dup {
			continue
		}
		seen[rec.UserID] = struct{}{}
		out = append(out, rec.UserID)
	}
	return out, nil
}

// fakeCatalog returns a fixed exercise or an error.
type fakeCatalog struct {
	item *types.Exercise
	err  error
}

func (f *fakeCatalog) PickForLevel(ctx context.Context, level types.StressLevel) (*types.Exercise, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

func (f *fakeCatalog) List(ctx context.Context, category types.ExerciseCategory, limit int) ([]*types.Exercise, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*types.Exercise{f.item}, nil
}

func (f *fakeCatalog) Get(ctx context.Context, id uuid.UUID) (*types.Exercise, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

func (f *fakeCatalog) EnsureSeeded(ctx context.Context) error { return nil }

var errUnavailable = errors.New("unavailable")

func predictedRecord(userID uuid.UUID, day time.Time, score int, level types.StressLevel) *types.DailyRecord {
	return &types.DailyRecord{
		ID:     uuid.New(),
		UserID: userID,
		Day:    repos.DayOf(day),
		StressPrediction: &types.StressPrediction{
			Score:       score,
			Level:       level,
			GeneratedAt: day,
		},
	}
}
