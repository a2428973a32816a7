package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/harmonia-app/harmonia-backend/internal/pkg/errors"
	"github.com/harmonia-app/harmonia-backend/internal/pkg/logger"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

type ExerciseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, exercises []*types.Exercise) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Exercise, error)
	// ListActiveByCategory returns active catalog items for a category,
	// oldest first, bounded by limit.
	ListActiveByCategory(ctx context.Context, tx *gorm.DB, category types.ExerciseCategory, limit int) ([]*types.Exercise, error)
	List(ctx context.Context, tx *gorm.DB, activeOnly bool, limit int) ([]*types.Exercise, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type exerciseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExerciseRepo(db *gorm.DB, baseLog *logger.Logger) ExerciseRepo {
	return &exerciseRepo{db: db, log: baseLog.With("repo", "ExerciseRepo")}
}

func (r *exerciseRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *exerciseRepo) Create(ctx context.Context, tx *gorm.DB, exercises []*types.Exercise) error {
	if len(exercises) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&exercises).Error
}

func (r *exerciseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Exercise, error) {
	var ex types.Exercise
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&ex).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

func (r *exerciseRepo) ListActiveByCategory(ctx context.Context, tx *gorm.DB, category types.ExerciseCategory, limit int) ([]*types.Exercise, error) {
	var exercises []*types.Exercise
	q := r.conn(tx).WithContext(ctx).
		Where("category = ? AND active = ?", category, true).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepo) List(ctx context.Context, tx *gorm.DB, activeOnly bool, limit int) ([]*types.Exercise, error) {
	var exercises []*types.Exercise
	q := r.conn(tx).WithContext(ctx).Order("created_at ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).Model(&types.Exercise{}).Count(&count).Error
	return count, err
}
