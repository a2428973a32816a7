package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/harmonia-app/harmonia-backend/internal/pkg/errors"
	"github.com/harmonia-app/harmonia-backend/internal/types"
)

// fakeExerciseRepo holds exercises in memory.
type fakeExerciseRepo struct {
	exercises []*types.Exercise
	creates   int
}

func (f *fakeExerciseRepo) Create(ctx context.Context, tx *gorm.DB, exercises []*types.Exercise) error {
	for _, ex := range exercises {
		if ex.ID == uuid.Nil {
			ex.ID = uuid.New()
		}
	}
	f.exercises = append(f.exercises, exercises...)
	f.creates++
	return nil
}

func (f *fakeExerciseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Exercise, error) {
	for _, ex := range f.exercises {
		if ex.ID == id {
			return ex, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeExerciseRepo) ListActiveByCategory(ctx context.Context, tx *gorm.DB, category types.ExerciseCategory, limit int) ([]*types.Exercise, error) {
	var out []*types.Exercise
	for _, ex := range f.exercises {
		if ex.Active && ex.Category == category {
			out = append(out, ex)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeExerciseRepo) List(ctx context.Context, tx *gorm.DB, activeOnly bool, limit int) ([]*types.Exercise, error) {
	var out []*types.Exercise
	for _, ex := range f.exercises {
		if activeOnly && !ex.Active {
			continue
		}
		out = append(out, ex)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeExerciseRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return int64(len(f.exercises)), nil
}

func testCatalog(t *testing.T, repo *fakeExerciseRepo) CatalogService {
	t.Helper()
	return NewCatalogService(nil, testLogger(t), repo)
}

func TestCategoryForLevel(t *testing.T) {
	cases := map[types.StressLevel]types.ExerciseCategory{
		types.StressLow:      types.CategoryMindfulness,
		types.StressMedium:   types.CategoryBreathing,
		types.StressHigh:     types.CategoryMovement,
		types.StressCritical: types.CategoryBreathing,
	}
	for level, want := range cases {
		if got := categoryForLevel(level); got != want {
			t.Fatalf("categoryForLevel(%q) = %q, want %q", level, got, want)
		}
	}
}

func TestPickForLevel(t *testing.T) {
	repo := &fakeExerciseRepo{}
	svc := testCatalog(t, repo)

	if _, err := svc.PickForLevel(context.Background(), types.StressMedium); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("empty catalog: err = %v, want ErrNotFound", err)
	}

	breathing := &types.Exercise{ID: uuid.New(), Title: "Box breathing", Category: types.CategoryBreathing, Active: true}
	movement := &types.Exercise{ID: uuid.New(), Title: "Stretching", Category: types.CategoryMovement, Active: true}
	repo.exercises = []*types.Exercise{breathing, movement}

	got, err := svc.PickForLevel(context.Background(), types.StressMedium)
	if err != nil {
		t.Fatalf("PickForLevel: %v", err)
	}
	if got.ID != breathing.ID {
		t.Fatalf("picked %q, want breathing item", got.Title)
	}
}

func TestEnsureSeeded(t *testing.T) {
	repo := &fakeExerciseRepo{}
	svc := testCatalog(t, repo)

	if err := svc.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	if len(repo.exercises) == 0 {
		t.Fatalf("catalog not seeded")
	}

	// A populated table is left untouched.
	before := len(repo.exercises)
	if err := svc.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("second EnsureSeeded: %v", err)
	}
	if repo.creates != 1 || len(repo.exercises) != before {
		t.Fatalf("seeding ran twice")
	}
}
